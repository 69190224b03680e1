// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package imagegen

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path"
	"strings"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/logger"
	"github.com/plateview/core/core/timestamper"
	"github.com/plateview/core/core/utils"
	"github.com/plateview/core/core/wellnaming"
	"github.com/plateview/core/imagegen/config"
)

// A deliberately tiny plate so whole canvases can be checked pixel by
// pixel: 2x3 wells of 1x2 sites, 4x4 pixel tiles, all rescale ratios 1 so
// rendering is exact. Contrast 0 makes the classic blend curve an identity.
func testConfig() config.RenderConfig {
	cfg := config.DefaultConfig()
	cfg.WellRows = 2
	cfg.WellCols = 3
	cfg.SiteRows = 1
	cfg.SiteCols = 2
	cfg.ImageHeight = 4
	cfg.ImageWidth = 4
	cfg.Channels = []config.ChannelConfig{
		{ID: "C01", Label: "DNA", WavelengthNm: 450, RGB: []int{0, 70, 255}, QCCoefficient: 1, CPIntensity: 1, CPContrast: 0},
		{ID: "C02", Label: "ER", WavelengthNm: 510, RGB: []int{0, 255, 0}, QCCoefficient: 1, CPIntensity: 1, CPContrast: 0},
		{ID: "Z01C06", Label: "Brightfield depth1", QCCoefficient: 1, Brightfield: true},
	}
	cfg.DefaultRenderChannels = []string{"C01"}
	cfg.QCRescaleRatio = 1
	cfg.CPWellsRescaleRatio = 1
	cfg.CPPlateRescaleRatio = 1
	cfg.DrawWellAnnotations = false
	cfg.DrawWellBorders = false
	cfg.OutputFormat = "png"
	return cfg
}

func testEngine(t *testing.T, cfg config.RenderConfig, fs fileaccess.FileAccess, stamps ...int64) *Engine {
	if len(stamps) <= 0 {
		stamps = []int64{100, 160}
	}
	eng, err := NewEngine(cfg, fs, &logger.NullLogger{}, &timestamper.MockTimeNowStamper{QueuedTimeStamps: stamps})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func grayTiff(t *testing.T, width int, height int, value uint8) []byte {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		t.Fatalf("tiff encode: %v", err)
	}
	return buf.Bytes()
}

func tileName(t *testing.T, cfg config.RenderConfig, plate string, wellRow int, wellCol int, site int, channelID string) string {
	scheme, err := wellnaming.GetScheme(cfg.NamingScheme)
	if err != nil {
		t.Fatalf("scheme: %v", err)
	}
	name, err := scheme.MakeFileName(plate, wellRow, wellCol, site, channelID)
	if err != nil {
		t.Fatalf("tile name: %v", err)
	}
	return name
}

// seedChannel writes a uniform tile for every site of every well, except
// the names listed in skip.
func seedChannel(t *testing.T, fs fileaccess.FileAccess, root string, platePath string, plate string, cfg config.RenderConfig, channelID string, value uint8, skip map[string]bool) {
	for row := 0; row < cfg.WellRows; row++ {
		for col := 0; col < cfg.WellCols; col++ {
			for site := 1; site <= cfg.GridSpec().SiteCount(); site++ {
				name := tileName(t, cfg, plate, row, col, site, channelID)
				if skip[name] {
					continue
				}
				err := fs.WriteObject(root, path.Join(platePath, name), grayTiff(t, cfg.ImageWidth, cfg.ImageHeight, value))
				if err != nil {
					t.Fatalf("seed write: %v", err)
				}
			}
		}
	}
}

func decodeOutput(t *testing.T, fs fileaccess.FileAccess, root string, name string) image.Image {
	data, err := fs.ReadObject(root, name)
	if err != nil {
		t.Fatalf("read output %v: %v", name, err)
	}
	img, err := utils.DecodeImage(data)
	if err != nil {
		t.Fatalf("decode output %v: %v", name, err)
	}
	return img
}

func decodeGrayOutput(t *testing.T, fs fileaccess.FileAccess, root string, name string) *image.Gray {
	img := decodeOutput(t, fs, root, name)
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("output %v: expected greyscale, got %T", name, img)
	}
	return gray
}

func decodeRGBAOutput(t *testing.T, fs fileaccess.FileAccess, root string, name string) *image.RGBA {
	img := decodeOutput(t, fs, root, name)
	rgba, ok := img.(*image.RGBA)
	if !ok {
		t.Fatalf("output %v: expected colour, got %T", name, img)
	}
	return rgba
}

func checkRegionGray(t *testing.T, img *image.Gray, region image.Rectangle, want uint8, what string) {
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			if got := img.GrayAt(x, y).Y; got != want {
				t.Fatalf("%v: pixel (%v,%v) = %v, want %v", what, x, y, got, want)
				return
			}
		}
	}
}

func checkUniformRGBA(t *testing.T, img *image.RGBA, want color.RGBA, what string) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("%v: pixel (%v,%v) = %v, want %v", what, x, y, got, want)
				return
			}
		}
	}
}

func TestRenderQCChannelScope(t *testing.T) {
	cfg := testConfig()
	fs := fileaccess.NewMemoryAccess()
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C01", 200, nil)

	tempPath := t.TempDir()
	eng := testEngine(t, cfg, fs)

	summary, err := eng.Render(Request{
		Mode:       ModeQC,
		Scope:      ScopeChannel,
		Channel:    "C01",
		SourcePath: "BR001",
		OutputPath: "renders",
		TempPath:   tempPath,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(summary.Units) != 1 || summary.FailedCount != 0 || summary.OutputCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Units[0].Unit != "BR001-C01" || summary.Units[0].Status != StatusOK {
		t.Fatalf("unexpected unit result: %+v", summary.Units[0])
	}
	if summary.StartUnixTimeSec != 100 || summary.EndUnixTimeSec != 160 {
		t.Fatalf("unexpected timestamps: %v-%v", summary.StartUnixTimeSec, summary.EndUnixTimeSec)
	}

	// Plate is 3 wells of 2 tiles across, 2 wells of 1 tile down
	img := decodeGrayOutput(t, fs, "renders", "BR001-C01-1.png")
	if img.Bounds().Dx() != 24 || img.Bounds().Dy() != 8 {
		t.Fatalf("canvas %v, want 24x8", img.Bounds())
	}
	checkRegionGray(t, img, img.Bounds(), 200, "uniform plate")

	written := RunSummary{}
	if err := fs.ReadJSON("renders", SummaryFileName, &written, false); err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if written.Request.Mode != ModeQC || written.Request.OutputFormat != "png" || written.Request.Parallelism != 1 {
		t.Fatalf("unexpected summary request echo: %+v", written.Request)
	}

	// Staging dirs are removed when their unit finishes
	entries, err := os.ReadDir(tempPath)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp dir not cleaned up: %v entries left", len(entries))
	}
}

func TestRenderQCPlaceholders(t *testing.T) {
	cfg := testConfig()
	fs := fileaccess.NewMemoryAccess()

	// Well A01 site 1 never uploaded, well B03 site 2 is not a readable image
	missing := tileName(t, cfg, "BR001", 0, 0, 1, "C01")
	corrupt := tileName(t, cfg, "BR001", 1, 2, 2, "C01")
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C01", 200, map[string]bool{missing: true})
	if err := fs.WriteObject("BR001", corrupt, []byte("not a tif")); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}

	eng := testEngine(t, cfg, fs)
	summary, err := eng.Render(Request{
		Mode:       ModeQC,
		Scope:      ScopeChannel,
		Channel:    "C01",
		SourcePath: "BR001",
		OutputPath: "renders",
		TempPath:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	unit := summary.Units[0]
	if unit.MissingSources != 1 || unit.CorruptSources != 1 {
		t.Fatalf("expected 1 missing and 1 corrupt, got %v/%v", unit.MissingSources, unit.CorruptSources)
	}

	img := decodeGrayOutput(t, fs, "renders", "BR001-C01-1.png")

	// Both failed tiles render as the placeholder: background 64 with a
	// cross of 0 through the corners
	if img.GrayAt(0, 0).Y != 0 || img.GrayAt(3, 1).Y != 64 {
		t.Errorf("missing tile placeholder wrong: corner=%v interior=%v", img.GrayAt(0, 0).Y, img.GrayAt(3, 1).Y)
	}
	if img.GrayAt(20, 4).Y != 0 || img.GrayAt(23, 5).Y != 64 {
		t.Errorf("corrupt tile placeholder wrong: corner=%v interior=%v", img.GrayAt(20, 4).Y, img.GrayAt(23, 5).Y)
	}

	// The rest of the plate rendered normally
	if img.GrayAt(10, 2).Y != 200 {
		t.Errorf("healthy tile pixel = %v, want 200", img.GrayAt(10, 2).Y)
	}
}

func TestRenderQCPlateScopeParallel(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultRenderChannels = []string{"C01", "C02"}

	fs := fileaccess.NewMemoryAccess()
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C01", 60, nil)
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C02", 120, nil)
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "Z01C06", 180, nil)

	eng := testEngine(t, cfg, fs, 100, 160, 200, 230)

	req := Request{
		Mode:        ModeQC,
		Scope:       ScopePlate,
		Brightfield: "1",
		SourcePath:  "BR001",
		TempPath:    t.TempDir(),
	}

	req.OutputPath = "serial"
	req.Parallelism = 1
	serial, err := eng.Render(req)
	if err != nil {
		t.Fatalf("serial render: %v", err)
	}

	req.OutputPath = "parallel"
	req.Parallelism = 3
	parallel, err := eng.Render(req)
	if err != nil {
		t.Fatalf("parallel render: %v", err)
	}

	wantUnits := []string{"BR001-C01", "BR001-C02", "BR001-Z01C06"}
	for i, want := range wantUnits {
		if serial.Units[i].Unit != want || parallel.Units[i].Unit != want {
			t.Fatalf("unit order differs: serial=%v parallel=%v want %v", serial.Units[i].Unit, parallel.Units[i].Unit, want)
		}
	}

	// Worker count must not change a single output byte
	for _, name := range []string{"BR001-C01-1.png", "BR001-C02-1.png", "BR001-Z01C06-1.png"} {
		a, err := fs.ReadObject("serial", name)
		if err != nil {
			t.Fatalf("read serial %v: %v", name, err)
		}
		b, err := fs.ReadObject("parallel", name)
		if err != nil {
			t.Fatalf("read parallel %v: %v", name, err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("output %v differs between parallelism 1 and 3", name)
		}
	}
}

func TestRenderQCRunScope(t *testing.T) {
	cfg := testConfig()
	fs := fileaccess.NewMemoryAccess()

	seedChannel(t, fs, "runA", "p1", "p1", cfg, "C01", 100, nil)
	seedChannel(t, fs, "runA", "p2", "p2", cfg, "C01", 200, nil)

	// Stray files that must not be mistaken for plates
	fs.WriteObject("runA", "notes.txt", []byte("x"))
	fs.WriteObject("runA", "docs/readme.md", []byte("x"))

	eng := testEngine(t, cfg, fs)
	summary, err := eng.Render(Request{
		Mode:       ModeQC,
		Scope:      ScopeRun,
		SourcePath: "runA",
		OutputPath: "renders",
		TempPath:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(summary.Units) != 1 || summary.Units[0].Unit != "runA-C01" {
		t.Fatalf("unexpected units: %+v", summary.Units)
	}

	// Two plates side by side in a 2 column grid
	img := decodeGrayOutput(t, fs, "renders", "runA-C01-1.png")
	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 8 {
		t.Fatalf("run canvas %v, want 48x8", img.Bounds())
	}
	if img.GrayAt(0, 0).Y != 100 {
		t.Errorf("plate p1 pixel = %v, want 100", img.GrayAt(0, 0).Y)
	}
	if img.GrayAt(24, 0).Y != 200 || img.GrayAt(47, 0).Y != 200 {
		t.Errorf("plate p2 pixels = %v/%v, want 200", img.GrayAt(24, 0).Y, img.GrayAt(47, 0).Y)
	}
}

func TestRenderCPWellsSingleWell(t *testing.T) {
	cfg := testConfig()
	fs := fileaccess.NewMemoryAccess()
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C01", 100, nil)
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C02", 50, nil)

	fs.WriteObject("BR001", "maps/platemap.txt", []byte("well_position\tjump-identifier\nB03\tJCP-HIT-1\n"))

	eng := testEngine(t, cfg, fs)
	summary, err := eng.Render(Request{
		Mode:         ModeCellPaint,
		Scope:        ScopeWells,
		SingleWell:   "B03",
		PlatemapPath: "maps/platemap.txt",
		SourcePath:   "BR001",
		OutputPath:   "renders",
		TempPath:     t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(summary.Units) != 1 || summary.Units[0].Unit != "BR001-B03" {
		t.Fatalf("unexpected units: %+v", summary.Units)
	}
	if got := strings.Join(summary.Request.Channels, ","); got != "C01,C02" {
		t.Fatalf("channel defaults not applied: %v", got)
	}
	if summary.Request.Style != "classic" {
		t.Fatalf("style default not applied: %v", summary.Request.Style)
	}

	// Classic blend of C01=100 under tint (0,70,255) and C02=50 under
	// (0,255,0) at intensity 1: R=0, G=70*100/255+50, B=100
	img := decodeRGBAOutput(t, fs, "renders", "BR001-B03-classic.png")
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Fatalf("well canvas %v, want 8x4", img.Bounds())
	}
	checkUniformRGBA(t, img, color.RGBA{R: 0, G: 77, B: 100, A: 255}, "classic well blend")
}

func TestRenderCPSitesChannelSubset(t *testing.T) {
	cfg := testConfig()
	fs := fileaccess.NewMemoryAccess()
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C01", 100, nil)
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C02", 50, nil)

	eng := testEngine(t, cfg, fs)
	summary, err := eng.Render(Request{
		Mode:       ModeCellPaint,
		Scope:      ScopeSites,
		SingleWell: "A01",
		Channels:   []string{"C01"},
		SourcePath: "BR001",
		OutputPath: "renders",
		TempPath:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(summary.Units) != 2 {
		t.Fatalf("expected a unit per site, got %v", len(summary.Units))
	}
	if summary.Units[0].Unit != "BR001-A01-s1" || summary.Units[1].Unit != "BR001-A01-s2" {
		t.Fatalf("unexpected units: %+v", summary.Units)
	}

	// C02 deselected: its slot contributes nothing and its absence from
	// the loads means no placeholder counting either
	if summary.MissingSources != 0 {
		t.Fatalf("deselected channel counted as missing: %v", summary.MissingSources)
	}

	img := decodeRGBAOutput(t, fs, "renders", "sites_BR001_classic/A01_s1.png")
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Fatalf("site canvas %v, want 4x4", img.Bounds())
	}
	checkUniformRGBA(t, img, color.RGBA{R: 0, G: 27, B: 100, A: 255}, "single channel site blend")
}

func TestRenderCPPlateScopeBorders(t *testing.T) {
	cfg := testConfig()
	cfg.WellRows = 1
	cfg.WellCols = 2
	cfg.SiteRows = 1
	cfg.SiteCols = 1
	cfg.ImageHeight = 32
	cfg.ImageWidth = 32

	fs := fileaccess.NewMemoryAccess()
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C01", 100, nil)
	// C02 never uploaded: every site load of it counts missing

	eng := testEngine(t, cfg, fs)
	summary, err := eng.Render(Request{
		Mode:       ModeCellPaint,
		Scope:      ScopePlate,
		SourcePath: "BR001",
		OutputPath: "renders",
		TempPath:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(summary.Units) != 1 || summary.Units[0].Unit != "BR001-cellpaint" {
		t.Fatalf("unexpected units: %+v", summary.Units)
	}
	if summary.MissingSources != 2 {
		t.Fatalf("expected 2 missing loads of C02, got %v", summary.MissingSources)
	}

	img := decodeRGBAOutput(t, fs, "renders", "BR001-cellpaint-classic.png")
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Fatalf("plate canvas %v, want 64x32", img.Bounds())
	}

	// Well borders draw at plate scope: 8px frame around each well cell
	border := color.RGBA{R: 192, G: 192, B: 192, A: 255}
	if img.RGBAAt(0, 0) != border || img.RGBAAt(33, 1) != border {
		t.Errorf("expected well borders, got %v and %v", img.RGBAAt(0, 0), img.RGBAAt(33, 1))
	}

	// Inside the frame the blend shows through
	want := color.RGBA{R: 0, G: 27, B: 100, A: 255}
	if img.RGBAAt(16, 16) != want {
		t.Errorf("interior pixel = %v, want %v", img.RGBAAt(16, 16), want)
	}
}
