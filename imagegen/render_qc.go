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
	"fmt"
	"image"
	"os"

	"github.com/plateview/core/core/plategrid"
	"github.com/plateview/core/imagegen/config"
	"github.com/plateview/core/imagegen/internal/mosaic"
	"github.com/plateview/core/imagegen/internal/tilesource"
)

// renderQCPlateUnit renders one channel of one plate into a single
// greyscale mosaic.
func (e *Engine) renderQCPlateUnit(plan renderPlan, unit workUnit) UnitResult {
	plate := unit.Plates[0]
	ch, _ := e.cfg.Channel(unit.Channel)

	layout, err := plategrid.NewLayout(e.cfg.GridSpec(), e.cfg.QCRescaleRatio)
	if err != nil {
		return failedResult(unit, err)
	}

	loader := e.newLoader(plan, plate, uint8(e.cfg.PlaceholderBackground), uint8(e.cfg.PlaceholderMarker))

	canvas, err := e.assembleQCPlate(plan, layout, loader, ch, unit.ID)
	if err != nil {
		return failedResult(unit, err)
	}

	outName := fmt.Sprintf("%v-%v-%v.%v", unit.Title, ch.ID, ch.QCCoefficient, plan.req.OutputFormat)
	if err := e.writeImage(plan.req, canvas, outName); err != nil {
		return failedResult(unit, err)
	}

	return okResult(unit, []string{outName}, loader.MissingCount, loader.CorruptCount)
}

// renderQCRunUnit renders one channel across every plate of a run: each
// plate becomes one cell of a grid mosaic, titled with its plate name.
func (e *Engine) renderQCRunUnit(plan renderPlan, unit workUnit) UnitResult {
	ch, _ := e.cfg.Channel(unit.Channel)

	layout, err := plategrid.NewLayout(e.cfg.GridSpec(), e.cfg.QCRescaleRatio)
	if err != nil {
		return failedResult(unit, err)
	}

	plateCanvas := layout.Canvas()
	grid, err := plategrid.MakeRunGrid(len(unit.Plates), e.cfg.RunPlateColumns, plateCanvas.Dy(), plateCanvas.Dx())
	if err != nil {
		return failedResult(unit, err)
	}

	canvas := mosaic.NewGrayCanvas(grid.Canvas().Dx(), grid.Canvas().Dy(), 0)
	missing, corrupt := 0, 0
	for i, plate := range unit.Plates {
		loader := e.newLoader(plan, plate, uint8(e.cfg.PlaceholderBackground), uint8(e.cfg.PlaceholderMarker))

		plateImg, err := e.assembleQCPlate(plan, layout, loader, ch, unit.ID+"-"+plate.Name)
		if err != nil {
			return failedResult(unit, err)
		}
		missing += loader.MissingCount
		corrupt += loader.CorruptCount

		cell := grid.Cell(i)
		mosaic.Paste(canvas, plateImg, cell.Min)
		mosaic.DrawLabel(canvas, plate.Name, cell.Min.Add(image.Point{X: 4, Y: 16}))
	}

	outName := fmt.Sprintf("%v-%v-%v.%v", unit.Title, ch.ID, ch.QCCoefficient, plan.req.OutputFormat)
	if err := e.writeImage(plan.req, canvas, outName); err != nil {
		return failedResult(unit, err)
	}

	return okResult(unit, []string{outName}, missing, corrupt)
}

// assembleQCPlate builds the scaled mosaic of one plate and channel. Each
// well is assembled at full sensor resolution, scaled once into its exact
// slot on the plate canvas, annotated, and staged to the unit's temp dir.
// Memory then holds one well plus the plate canvas, not the whole plate at
// sensor resolution.
func (e *Engine) assembleQCPlate(plan renderPlan, layout *plategrid.Layout, loader *tilesource.Loader, ch config.ChannelConfig, stageName string) (*image.Gray, error) {
	tempDir, err := e.makeTempDir(plan.req, stageName)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	spec := layout.Spec()

	for wellRow := 0; wellRow < spec.WellRows; wellRow++ {
		for wellCol := 0; wellCol < spec.WellCols; wellCol++ {
			well := mosaic.BuildWell(spec, func(site int) image.Image {
				return loader.LoadTile(wellRow, wellCol, site, ch.ID, spec.ImageWidth, spec.ImageHeight, ch.QCCoefficient)
			}, false)

			rect := layout.WellRect(wellRow, wellCol)
			scaled := mosaic.Resize(well, rect.Dx(), rect.Dy())

			if e.cfg.DrawWellAnnotations {
				label := e.scheme.WellLabel(wellRow, wellCol) + " " + ch.Label
				mosaic.DrawLabel(scaled, label, annotationAnchor(layout.Ratio(), 25, 125))
			}
			if e.cfg.DrawWellBorders {
				mosaic.DrawBorder(scaled, scaled.Bounds(), 1)
			}

			if err := e.stageWell(tempDir, wellRow, wellCol, scaled); err != nil {
				return nil, err
			}
		}
	}

	canvas := mosaic.NewGrayCanvas(layout.Canvas().Dx(), layout.Canvas().Dy(), 0)
	for wellRow := 0; wellRow < spec.WellRows; wellRow++ {
		for wellCol := 0; wellCol < spec.WellCols; wellCol++ {
			wellImg, err := e.unstageWell(tempDir, wellRow, wellCol)
			if err != nil {
				return nil, err
			}
			mosaic.Paste(canvas, wellImg, layout.WellRect(wellRow, wellCol).Min)
		}
	}

	return canvas, nil
}
