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
	"image"
	"math"
	"os"
	"path"

	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/utils"
	"github.com/plateview/core/imagegen/internal/tilesource"
)

// annotationAnchor - overlay anchors are defined in full sensor resolution
// pixels. Text and borders draw after the well is scaled, so the anchor
// scales with the canvas while the glyphs stay readable.
func annotationAnchor(ratio float64, x int, y int) image.Point {
	return image.Point{
		X: int(math.Ceil(ratio * float64(x))),
		Y: int(math.Ceil(ratio * float64(y))),
	}
}

// borderThickness - well borders are 8 full resolution pixels, scaled with
// the canvas but never vanishing.
func borderThickness(ratio float64) int {
	t := int(math.Ceil(8 * ratio))
	if t < 1 {
		t = 1
	}
	return t
}

// makeTempDir creates the unit's private staging directory. Temp staging is
// always local disk, even when sources and outputs are S3.
func (e *Engine) makeTempDir(req Request, unitID string) (string, error) {
	if err := os.MkdirAll(req.TempPath, 0777); err != nil {
		return "", err
	}
	return os.MkdirTemp(req.TempPath, "tmpgen-"+fileaccess.MakeValidObjectName(unitID)+"-")
}

// wellStageFile - where one well's intermediate image sits below the unit's
// temp dir. Always png so staging is lossless whatever the output format.
func (e *Engine) wellStageFile(wellRow int, wellCol int) string {
	return path.Join("wells", e.scheme.WellLabel(wellRow, wellCol)+".png")
}

// stageWell writes one finished well image into the unit's temp dir.
func (e *Engine) stageWell(tempDir string, wellRow int, wellCol int, img image.Image) error {
	data, err := utils.EncodeImage(img, "png")
	if err != nil {
		return err
	}
	return e.tempFS.WriteObject(tempDir, e.wellStageFile(wellRow, wellCol), data)
}

// unstageWell reads a staged well image back for pasting onto the plate.
func (e *Engine) unstageWell(tempDir string, wellRow int, wellCol int) (image.Image, error) {
	data, err := e.tempFS.ReadObject(tempDir, e.wellStageFile(wellRow, wellCol))
	if err != nil {
		return nil, err
	}
	return utils.DecodeImage(data)
}

// writeImage encodes an output image and writes it under the output root.
func (e *Engine) writeImage(req Request, img image.Image, name string) error {
	data, err := utils.EncodeImage(img, req.OutputFormat)
	if err != nil {
		return err
	}
	return e.fs.WriteObject(req.OutputPath, name, data)
}

func (e *Engine) newLoader(plan renderPlan, plate plateRef, background uint8, marker uint8) *tilesource.Loader {
	return tilesource.NewLoader(e.fs, plan.req.SourcePath, plan.indexes[plate.Path], background, marker, e.log)
}

func failedResult(unit workUnit, err error) UnitResult {
	return UnitResult{Unit: unit.ID, Status: StatusFailed, Error: err.Error()}
}

func okResult(unit workUnit, outputs []string, missing int, corrupt int) UnitResult {
	return UnitResult{
		Unit:           unit.ID,
		Status:         StatusOK,
		Outputs:        outputs,
		MissingSources: missing,
		CorruptSources: corrupt,
	}
}
