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
	"image/draw"
	"os"

	"github.com/plateview/core/core/plategrid"
	"github.com/plateview/core/core/utils"
	"github.com/plateview/core/imagegen/config"
	"github.com/plateview/core/imagegen/internal/cellpaint"
	"github.com/plateview/core/imagegen/internal/mosaic"
	"github.com/plateview/core/imagegen/internal/tilesource"
)

// resolveStyle turns the requested style name into blend parameters.
// classic and random are built in, anything else must be a configured
// weighted style.
func (e *Engine) resolveStyle(name string) (cellpaint.Style, error) {
	switch name {
	case "classic":
		return cellpaint.Classic(), nil
	case "random":
		return cellpaint.Random(e.cfg.RandomMaxCoefficient), nil
	}

	style, ok := e.cfg.Styles[name]
	if !ok {
		return cellpaint.Style{}, StyleNotFoundError{Name: name}
	}
	return cellpaint.Weighted(name, style.Intensity, style.Order, style.TargetRGB), nil
}

// makePalette lays the fluorescent channel table out as blend slots.
func makePalette(cfg config.RenderConfig) cellpaint.Palette {
	pal := cellpaint.Palette{}
	for _, ch := range cfg.Channels {
		if ch.Brightfield {
			continue
		}
		tint := [3]int{}
		if len(ch.RGB) == 3 {
			tint = [3]int{ch.RGB[0], ch.RGB[1], ch.RGB[2]}
		}
		pal.ChannelIDs = append(pal.ChannelIDs, ch.ID)
		pal.Intensity = append(pal.Intensity, ch.CPIntensity)
		pal.Contrast = append(pal.Contrast, ch.CPContrast)
		pal.Tints = append(pal.Tints, tint)
	}
	return pal
}

// blendSite loads this site's tile for each selected channel and blends
// them into one colour tile. Unselected palette slots stay nil and
// contribute nothing. Missing tiles load as black for the same reason.
func (e *Engine) blendSite(plan renderPlan, loader *tilesource.Loader, wellRow int, wellCol int, site int) *image.RGBA {
	spec := e.cfg.GridSpec()

	tiles := make([]*image.Gray, len(plan.palette.ChannelIDs))
	for i, id := range plan.palette.ChannelIDs {
		if !utils.ItemInSlice(id, plan.req.Channels) {
			continue
		}
		tiles[i] = loader.LoadTile(wellRow, wellCol, site, id, spec.ImageWidth, spec.ImageHeight, 1)
	}

	return cellpaint.Blend(plan.style, plan.palette, tiles, spec.ImageWidth, spec.ImageHeight)
}

// assembleCPWell builds one well's composite at full sensor resolution,
// site by site.
func (e *Engine) assembleCPWell(plan renderPlan, loader *tilesource.Loader, wellRow int, wellCol int) draw.Image {
	return mosaic.BuildWell(e.cfg.GridSpec(), func(site int) image.Image {
		return e.blendSite(plan, loader, wellRow, wellCol, site)
	}, true)
}

// finishCPWell scales a full resolution well composite to its final size
// and draws the requested overlays: per-site style fingerprints, the well
// label, the platemap compound and (on plate mosaics) the well border.
func (e *Engine) finishCPWell(plan renderPlan, well draw.Image, layout *plategrid.Layout, wellRow int, wellCol int, withBorder bool) draw.Image {
	ratio := layout.Ratio()
	spec := layout.Spec()

	rect := layout.WellRect(wellRow, wellCol)
	scaled := mosaic.Resize(well, rect.Dx(), rect.Dy())

	if plan.req.DisplayFingerprint {
		text := plan.style.Fingerprint(plan.palette)
		for site := 1; site <= spec.SiteCount(); site++ {
			siteRow, siteCol := spec.SiteCoord(site)
			siteRect := layout.SiteRectInWell(plategrid.Coord{WellRow: wellRow, WellCol: wellCol, SiteRow: siteRow, SiteCol: siteCol})
			mosaic.DrawLabel(scaled, text, siteRect.Min.Add(annotationAnchor(ratio, 10, 990)))
		}
	}

	wellLabel := e.scheme.WellLabel(wellRow, wellCol)
	at := annotationAnchor(ratio, 80, 80)
	if plan.req.WellDetails {
		mosaic.DrawLabel(scaled, wellLabel, at)
		at.Y += mosaic.LabelLineHeight
	}
	if compound := plan.compounds[wellLabel]; len(compound) > 0 {
		mosaic.DrawLabel(scaled, compound, at)
	}

	if withBorder {
		mosaic.DrawBorder(scaled, scaled.Bounds(), borderThickness(ratio))
	}

	return scaled
}

// renderCPPlateUnit composites every well and assembles them into one plate
// mosaic, staged through the unit's temp dir like QC plates are. Well
// borders always draw at plate scope so the well boundaries survive the
// plate-level rescale.
func (e *Engine) renderCPPlateUnit(plan renderPlan, unit workUnit) UnitResult {
	plate := unit.Plates[0]

	layout, err := plategrid.NewLayout(e.cfg.GridSpec(), e.cfg.CPPlateRescaleRatio)
	if err != nil {
		return failedResult(unit, err)
	}

	loader := e.newLoader(plan, plate, 0, 0)

	tempDir, err := e.makeTempDir(plan.req, unit.ID)
	if err != nil {
		return failedResult(unit, err)
	}
	defer os.RemoveAll(tempDir)

	spec := layout.Spec()
	for wellRow := 0; wellRow < spec.WellRows; wellRow++ {
		for wellCol := 0; wellCol < spec.WellCols; wellCol++ {
			well := e.assembleCPWell(plan, loader, wellRow, wellCol)
			finished := e.finishCPWell(plan, well, layout, wellRow, wellCol, true)
			if err := e.stageWell(tempDir, wellRow, wellCol, finished); err != nil {
				return failedResult(unit, err)
			}
		}
	}

	canvas := mosaic.NewColorCanvas(layout.Canvas().Dx(), layout.Canvas().Dy())
	for wellRow := 0; wellRow < spec.WellRows; wellRow++ {
		for wellCol := 0; wellCol < spec.WellCols; wellCol++ {
			wellImg, err := e.unstageWell(tempDir, wellRow, wellCol)
			if err != nil {
				return failedResult(unit, err)
			}
			mosaic.Paste(canvas, wellImg, layout.WellRect(wellRow, wellCol).Min)
		}
	}

	outName := fmt.Sprintf("%v-cellpaint-%v.%v", unit.Title, plan.style.Name, plan.req.OutputFormat)
	if err := e.writeImage(plan.req, canvas, outName); err != nil {
		return failedResult(unit, err)
	}

	return okResult(unit, []string{outName}, loader.MissingCount, loader.CorruptCount)
}

// renderCPWellUnit renders one well as its own composite image, written
// straight to the output root with no staging.
func (e *Engine) renderCPWellUnit(plan renderPlan, unit workUnit) UnitResult {
	plate := unit.Plates[0]

	layout, err := plategrid.NewLayout(e.cfg.GridSpec(), e.cfg.CPWellsRescaleRatio)
	if err != nil {
		return failedResult(unit, err)
	}

	loader := e.newLoader(plan, plate, 0, 0)

	well := e.assembleCPWell(plan, loader, unit.WellRow, unit.WellCol)
	finished := e.finishCPWell(plan, well, layout, unit.WellRow, unit.WellCol, false)

	outName := fmt.Sprintf("%v-%v-%v.%v", unit.Title, e.scheme.WellLabel(unit.WellRow, unit.WellCol), plan.style.Name, plan.req.OutputFormat)
	if err := e.writeImage(plan.req, finished, outName); err != nil {
		return failedResult(unit, err)
	}

	return okResult(unit, []string{outName}, loader.MissingCount, loader.CorruptCount)
}

// renderCPSiteUnit renders one site as a lone composite tile, named into a
// per-plate folder since a plate of sites is thousands of files.
func (e *Engine) renderCPSiteUnit(plan renderPlan, unit workUnit) UnitResult {
	plate := unit.Plates[0]

	layout, err := plategrid.NewLayout(e.cfg.GridSpec(), e.cfg.CPWellsRescaleRatio)
	if err != nil {
		return failedResult(unit, err)
	}

	loader := e.newLoader(plan, plate, 0, 0)

	site := e.blendSite(plan, loader, unit.WellRow, unit.WellCol, unit.Site)

	spec := layout.Spec()
	siteRow, siteCol := spec.SiteCoord(unit.Site)
	siteRect := layout.SiteRectInWell(plategrid.Coord{WellRow: unit.WellRow, WellCol: unit.WellCol, SiteRow: siteRow, SiteCol: siteCol})
	scaled := mosaic.Resize(site, siteRect.Dx(), siteRect.Dy())

	if plan.req.DisplayFingerprint {
		mosaic.DrawLabel(scaled, plan.style.Fingerprint(plan.palette), annotationAnchor(layout.Ratio(), 10, 990))
	}

	wellLabel := e.scheme.WellLabel(unit.WellRow, unit.WellCol)
	outName := fmt.Sprintf("sites_%v_%v/%v_s%v.%v", unit.Title, plan.style.Name, wellLabel, unit.Site, plan.req.OutputFormat)
	if err := e.writeImage(plan.req, scaled, outName); err != nil {
		return failedResult(unit, err)
	}

	return okResult(unit, []string{outName}, loader.MissingCount, loader.CorruptCount)
}
