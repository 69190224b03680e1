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

// Render configuration as read from JSON, with the standard cell painting
// channel table and blend styles defined here as defaults
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/logger"
	"github.com/plateview/core/core/plategrid"
	"github.com/plateview/core/core/wellnaming"
)

// ChannelConfig - one acquisition channel. Fluorescent channels carry an RGB
// tint plus the cell painting intensity/contrast parameters; brightfields
// only have a QC coefficient.
type ChannelConfig struct {
	ID            string
	Label         string
	WavelengthNm  int
	RGB           []int
	QCCoefficient float64
	CPIntensity   float64
	CPContrast    float64
	Brightfield   bool
}

// StyleConfig - one weighted blend style: per-slot intensity multipliers, the
// slot order picking the output colour planes (plus 2 extra merged slots), and
// the slots the extras merge into.
type StyleConfig struct {
	Intensity []int
	Order     []int
	TargetRGB []int
}

// RenderConfig combines env vars and config JSON values
type RenderConfig struct {
	// Plate geometry
	WellRows    int
	WellCols    int
	SiteRows    int
	SiteCols    int
	ImageHeight int
	ImageWidth  int

	NamingScheme string

	// Channel table in render order. DefaultRenderChannels picks which of
	// these a plate/run render covers when the request doesn't say.
	Channels              []ChannelConfig
	DefaultRenderChannels []string

	QCRescaleRatio      float64
	CPWellsRescaleRatio float64
	CPPlateRescaleRatio float64

	PlaceholderBackground int
	PlaceholderMarker     int

	DrawWellAnnotations bool
	DrawWellBorders     bool

	// Plate arrangement for run mosaics, 0 = near-square auto
	RunPlateColumns int

	// Weighted blend styles by name. "classic" and "random" are reserved
	// names handled by their own blend paths, not listed here.
	Styles               map[string]StyleConfig
	RandomMaxCoefficient int

	OutputFormat string

	PlatemapWellColumn     string
	PlatemapCompoundColumn string

	LogLevel logger.LogLevel
}

// DefaultConfig is the standard JUMP cell painting setup: 384-well plates,
// 6 sites per well in a 2x3 grid, 1000x1000 16-bit tifs.
func DefaultConfig() RenderConfig {
	return RenderConfig{
		WellRows:    16,
		WellCols:    24,
		SiteRows:    2,
		SiteCols:    3,
		ImageHeight: 1000,
		ImageWidth:  1000,

		NamingScheme: wellnaming.SchemeLetterWells,

		Channels: []ChannelConfig{
			{ID: "C01", Label: "DNA Hoechst 33342", WavelengthNm: 450, RGB: []int{0, 70, 255}, QCCoefficient: 16, CPIntensity: 10, CPContrast: 1},
			{ID: "C02", Label: "ER Concanavalin A", WavelengthNm: 510, RGB: []int{0, 255, 0}, QCCoefficient: 8, CPIntensity: 5, CPContrast: 1},
			{ID: "C03", Label: "RNA SYTO 14", WavelengthNm: 570, RGB: []int{225, 255, 0}, QCCoefficient: 8, CPIntensity: 1.8, CPContrast: 0.7},
			{ID: "C04", Label: "AGP Phalloidin and WGA", WavelengthNm: 630, RGB: []int{255, 79, 0}, QCCoefficient: 8, CPIntensity: 5, CPContrast: 1},
			{ID: "C05", Label: "MITO MitoTracker Deep Red", WavelengthNm: 660, RGB: []int{255, 0, 0}, QCCoefficient: 8, CPIntensity: 7, CPContrast: 2.5},
			{ID: "Z01C06", Label: "Brightfield depth1", QCCoefficient: 8, Brightfield: true},
			{ID: "Z02C06", Label: "Brightfield depth2", QCCoefficient: 8, Brightfield: true},
			{ID: "Z03C06", Label: "Brightfield depth3", QCCoefficient: 8, Brightfield: true},
		},
		DefaultRenderChannels: []string{"C01", "C02", "C03", "C04", "C05"},

		QCRescaleRatio:      0.1,
		CPWellsRescaleRatio: 1,
		CPPlateRescaleRatio: 0.25,

		PlaceholderBackground: 64,
		PlaceholderMarker:     0,

		DrawWellAnnotations: true,
		DrawWellBorders:     true,

		RunPlateColumns: 0,

		Styles: map[string]StyleConfig{
			"blueish":       {Intensity: []int{6, 5, 6, 6, 6}, Order: []int{2, 3, 4, 1, 0}, TargetRGB: []int{0, 2, 1}},
			"blueish2":      {Intensity: []int{4, 6, 5, 5, 7}, Order: []int{3, 2, 0, 4, 1}, TargetRGB: []int{0, 1, 2}},
			"reddish":       {Intensity: []int{7, 7, 4, 4, 1}, Order: []int{2, 1, 3, 4, 0}, TargetRGB: []int{1, 0, 2}},
			"reddish2":      {Intensity: []int{7, 3, 6, 8, 5}, Order: []int{1, 2, 3, 0, 4}, TargetRGB: []int{1, 0, 2}},
			"blueredgreen":  {Intensity: []int{3, 8, 4, 4, 8}, Order: []int{0, 3, 4, 2, 1}, TargetRGB: []int{2, 0, 1}},
			"blueredgreen2": {Intensity: []int{3, 4, 4, 5, 6}, Order: []int{2, 3, 4, 1, 0}, TargetRGB: []int{2, 1, 0}},
			"blueredgreen3": {Intensity: []int{8, 4, 6, 5, 8}, Order: []int{1, 3, 4, 2, 0}, TargetRGB: []int{0, 1, 2}},
			"purple":        {Intensity: []int{2, 6, 6, 7, 2}, Order: []int{3, 1, 2, 4, 0}, TargetRGB: []int{0, 1, 2}},
			"purple2":       {Intensity: []int{1, 7, 8, 6, 8}, Order: []int{2, 4, 0, 3, 1}, TargetRGB: []int{0, 1, 2}},
			"cthulhu":       {Intensity: []int{3, 2, 3, 5, 7}, Order: []int{0, 3, 2, 1, 4}, TargetRGB: []int{1, 0, 2}},
			"meduse":        {Intensity: []int{8, 8, 3, 7, 8}, Order: []int{0, 3, 4, 1, 2}, TargetRGB: []int{2, 0, 1}},
			"alien":         {Intensity: []int{3, 6, 4, 3, 3}, Order: []int{1, 3, 2, 4, 0}, TargetRGB: []int{1, 0, 2}},
		},
		RandomMaxCoefficient: 8,

		OutputFormat: "jpg",

		PlatemapWellColumn:     "well_position",
		PlatemapCompoundColumn: "jump-identifier",

		LogLevel: logger.LogInfo,
	}
}

// Load reads a JSON config over the top of the defaults, so a config file only
// needs the keys it changes. An empty path just gives defaults. Env vars
// (PLATEVIEW_CONFIG_*) override both, then the result is validated.
func Load(fs fileaccess.FileAccess, root string, path string) (RenderConfig, error) {
	cfg := DefaultConfig()

	if len(path) > 0 {
		err := fs.ReadJSON(root, path, &cfg, false)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %v: %v", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, cfg.Validate()
}

// Override config with any values explicitly set in env vars (PLATEVIEW_CONFIG_*)
// NOTE: For []string slices, pass in a comma-separated string to the corresponding PLATEVIEW_CONFIG_ var
// 			Ex: export PLATEVIEW_CONFIG_DefaultRenderChannels="C01,C05"
func applyEnvOverrides(cfg *RenderConfig) {
	reflection := reflect.ValueOf(cfg).Elem()
	for i := 0; i < reflection.NumField(); i++ {
		fieldName := reflection.Type().Field(i).Name
		field := reflection.Field(i)
		if val, present := os.LookupEnv(fmt.Sprintf("PLATEVIEW_CONFIG_%s", fieldName)); present {
			switch field.Kind() {
			case reflect.String:
				field.SetString(val)
			case reflect.Slice:
				if field.Type().Elem().Kind() == reflect.String {
					slicedVal := strings.Split(val, ",")
					field.Set(reflect.ValueOf(slicedVal))
				}
			case reflect.Int:
				i, err := strconv.Atoi(val)
				if err != nil {
					fmt.Printf("Could not cast value PLATEVIEW_CONFIG_%s=%s to Int\n", fieldName, val)
					continue
				}
				field.SetInt(int64(i))
			case reflect.Float64:
				f, err := strconv.ParseFloat(val, 64)
				if err != nil {
					fmt.Printf("Could not cast value PLATEVIEW_CONFIG_%s=%s to Float\n", fieldName, val)
					continue
				}
				field.SetFloat(f)
			case reflect.Bool:
				b, err := strconv.ParseBool(val)
				if err != nil {
					fmt.Printf("Could not cast value PLATEVIEW_CONFIG_%s=%s to Bool\n", fieldName, val)
					continue
				}
				field.SetBool(b)
			}
		}
	}
}

// GridSpec is the plate geometry part of the config.
func (cfg RenderConfig) GridSpec() plategrid.Spec {
	return plategrid.Spec{
		WellRows:    cfg.WellRows,
		WellCols:    cfg.WellCols,
		SiteRows:    cfg.SiteRows,
		SiteCols:    cfg.SiteCols,
		ImageHeight: cfg.ImageHeight,
		ImageWidth:  cfg.ImageWidth,
	}
}

// Channel looks up a channel by ID.
func (cfg RenderConfig) Channel(id string) (ChannelConfig, bool) {
	for _, ch := range cfg.Channels {
		if ch.ID == id {
			return ch, true
		}
	}
	return ChannelConfig{}, false
}

// FluorescentIDs are the non-brightfield channel IDs in table order. These
// are the palette slots cell painting blends over.
func (cfg RenderConfig) FluorescentIDs() []string {
	ids := []string{}
	for _, ch := range cfg.Channels {
		if !ch.Brightfield {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

// BrightfieldIDs are the brightfield channel IDs in table order.
func (cfg RenderConfig) BrightfieldIDs() []string {
	ids := []string{}
	for _, ch := range cfg.Channels {
		if ch.Brightfield {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

var validOutputFormats = []string{"jpg", "jpeg", "png"}

func (cfg RenderConfig) Validate() error {
	if err := cfg.GridSpec().Validate(); err != nil {
		return err
	}

	if cfg.QCRescaleRatio <= 0 || cfg.CPWellsRescaleRatio <= 0 || cfg.CPPlateRescaleRatio <= 0 {
		return plategrid.InvalidGeometryError{
			Reason: fmt.Sprintf("rescale ratios %v/%v/%v, must all be positive", cfg.QCRescaleRatio, cfg.CPWellsRescaleRatio, cfg.CPPlateRescaleRatio),
		}
	}

	scheme, err := wellnaming.GetScheme(cfg.NamingScheme)
	if err != nil {
		return err
	}

	if len(cfg.Channels) <= 0 {
		return fmt.Errorf("no channels configured")
	}

	seenIDs := map[string]bool{}
	for _, ch := range cfg.Channels {
		if len(ch.ID) <= 0 {
			return fmt.Errorf("channel with empty id")
		}
		if seenIDs[ch.ID] {
			return fmt.Errorf("duplicate channel id: %v", ch.ID)
		}
		seenIDs[ch.ID] = true

		if len(ch.RGB) != 0 && len(ch.RGB) != 3 {
			return fmt.Errorf("channel %v: rgb must have 3 values", ch.ID)
		}
		for _, v := range ch.RGB {
			if v < 0 || v > 255 {
				return fmt.Errorf("channel %v: rgb value %v out of range 0-255", ch.ID, v)
			}
		}
		if ch.QCCoefficient <= 0 {
			return fmt.Errorf("channel %v: qc coefficient %v, must be positive", ch.ID, ch.QCCoefficient)
		}

		// Prove the naming scheme can express every corner of this plate for
		// this channel, otherwise per-well failures would show up mid-render
		_, err := scheme.MakeFileName("PLATE", cfg.WellRows-1, cfg.WellCols-1, cfg.SiteRows*cfg.SiteCols, ch.ID)
		if err != nil {
			return fmt.Errorf("naming scheme %v cannot express channel %v on this plate: %v", cfg.NamingScheme, ch.ID, err)
		}
	}

	for _, id := range cfg.DefaultRenderChannels {
		if !seenIDs[id] {
			return fmt.Errorf("default render channel %v not in channel table", id)
		}
	}

	for name, style := range cfg.Styles {
		if name == "classic" || name == "random" {
			return fmt.Errorf("style name %v is reserved", name)
		}
		if len(style.Intensity) != 5 || len(style.Order) != 5 || len(style.TargetRGB) != 3 {
			return fmt.Errorf("style %v: expected 5 intensity, 5 order and 3 target values", name)
		}
		for _, v := range style.Order {
			if v < 0 || v > 4 {
				return fmt.Errorf("style %v: order slot %v out of range 0-4", name, v)
			}
		}
		for _, v := range style.TargetRGB {
			if v < 0 || v > 4 {
				return fmt.Errorf("style %v: target slot %v out of range 0-4", name, v)
			}
		}
	}

	if cfg.RandomMaxCoefficient < 1 {
		return fmt.Errorf("random max coefficient %v, must be at least 1", cfg.RandomMaxCoefficient)
	}

	formatOK := false
	for _, f := range validOutputFormats {
		if cfg.OutputFormat == f {
			formatOK = true
		}
	}
	if !formatOK {
		return fmt.Errorf("output format %v not supported, expected one of %v", cfg.OutputFormat, strings.Join(validOutputFormats, ", "))
	}

	if cfg.PlaceholderBackground < 0 || cfg.PlaceholderBackground > 255 || cfg.PlaceholderMarker < 0 || cfg.PlaceholderMarker > 255 {
		return fmt.Errorf("placeholder intensities %v/%v out of range 0-255", cfg.PlaceholderBackground, cfg.PlaceholderMarker)
	}

	if cfg.RunPlateColumns < 0 {
		return fmt.Errorf("run plate columns %v, must be 0 (auto) or positive", cfg.RunPlateColumns)
	}

	return nil
}
