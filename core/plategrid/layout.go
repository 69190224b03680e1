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

package plategrid

import (
	"fmt"
	"image"
	"math"
)

// Layout maps plate coordinates to pixel rectangles on a plate canvas at a
// given rescale ratio. Placement is row-major nesting: the well row/col picks
// the coarse block, the site row/col the position within it, no gaps and no
// overlap.
//
// Scaling snaps every grid edge to round(ratio * unscaledEdge) rather than
// scaling each tile independently. That keeps adjacent tiles pixel-aligned at
// any ratio and makes the canvas exactly round(ratio * plateDimension), at
// the cost of cells sometimes differing by a pixel.
type Layout struct {
	spec  Spec
	ratio float64
}

func NewLayout(spec Spec, ratio float64) (*Layout, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if ratio <= 0 {
		return nil, InvalidGeometryError{Reason: fmt.Sprintf("rescale ratio %v, must be positive", ratio)}
	}
	return &Layout{spec: spec, ratio: ratio}, nil
}

func (l *Layout) Spec() Spec {
	return l.spec
}

func (l *Layout) Ratio() float64 {
	return l.ratio
}

func (l *Layout) scale(unscaled int) int {
	return int(math.Round(l.ratio * float64(unscaled)))
}

func (l *Layout) edgeY(wellRow int, siteRow int) int {
	return l.scale((wellRow*l.spec.SiteRows + siteRow) * l.spec.ImageHeight)
}

func (l *Layout) edgeX(wellCol int, siteCol int) int {
	return l.scale((wellCol*l.spec.SiteCols + siteCol) * l.spec.ImageWidth)
}

// Canvas is the scaled pixel extent of the whole plate.
func (l *Layout) Canvas() image.Rectangle {
	return image.Rect(0, 0, l.edgeX(l.spec.WellCols, 0), l.edgeY(l.spec.WellRows, 0))
}

// WellRect is the scaled rectangle one well occupies on the plate canvas.
func (l *Layout) WellRect(wellRow int, wellCol int) image.Rectangle {
	return image.Rect(
		l.edgeX(wellCol, 0),
		l.edgeY(wellRow, 0),
		l.edgeX(wellCol+1, 0),
		l.edgeY(wellRow+1, 0),
	)
}

// SiteRect is the scaled rectangle one site occupies on the plate canvas.
func (l *Layout) SiteRect(c Coord) image.Rectangle {
	return image.Rect(
		l.edgeX(c.WellCol, c.SiteCol),
		l.edgeY(c.WellRow, c.SiteRow),
		l.edgeX(c.WellCol, c.SiteCol+1),
		l.edgeY(c.WellRow, c.SiteRow+1),
	)
}

// SiteRectInWell is SiteRect translated to the well's own canvas, for
// assembling one well at a time before pasting it at WellRect.
func (l *Layout) SiteRectInWell(c Coord) image.Rectangle {
	well := l.WellRect(c.WellRow, c.WellCol)
	return l.SiteRect(c).Sub(well.Min)
}

// Grid is one flat level of equally sized cells, used to arrange whole-plate
// mosaics into a run mosaic. Cell dimensions here are already-scaled pixels:
// every plate shares one Spec, so every plate canvas is the same size and
// cells need no per-cell rounding.
type Grid struct {
	Rows       int
	Cols       int
	CellHeight int
	CellWidth  int
}

// MakeRunGrid arranges plateCount cells into the given number of columns.
// Zero columns picks a near-square arrangement.
func MakeRunGrid(plateCount int, columns int, cellHeight int, cellWidth int) (Grid, error) {
	if plateCount < 1 {
		return Grid{}, InvalidGeometryError{Reason: fmt.Sprintf("run of %v plates", plateCount)}
	}
	if columns < 0 {
		return Grid{}, InvalidGeometryError{Reason: fmt.Sprintf("run grid of %v columns", columns)}
	}
	if cellHeight < 1 || cellWidth < 1 {
		return Grid{}, InvalidGeometryError{Reason: fmt.Sprintf("run cell size %vx%v, must be at least 1x1", cellWidth, cellHeight)}
	}
	if columns == 0 {
		columns = int(math.Ceil(math.Sqrt(float64(plateCount))))
	}

	rows := (plateCount + columns - 1) / columns
	return Grid{Rows: rows, Cols: columns, CellHeight: cellHeight, CellWidth: cellWidth}, nil
}

func (g Grid) Canvas() image.Rectangle {
	return image.Rect(0, 0, g.Cols*g.CellWidth, g.Rows*g.CellHeight)
}

// Cell is the rectangle for the row-major cell at the given index.
func (g Grid) Cell(index int) image.Rectangle {
	row := index / g.Cols
	col := index % g.Cols
	return image.Rect(
		col*g.CellWidth,
		row*g.CellHeight,
		(col+1)*g.CellWidth,
		(row+1)*g.CellHeight,
	)
}
