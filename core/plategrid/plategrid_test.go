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
	"errors"
	"fmt"
	"testing"
)

func Example_layout() {
	// Tiny plate: 2x3 wells, one site per well, 4x4 pixel images
	spec := Spec{WellRows: 2, WellCols: 3, SiteRows: 1, SiteCols: 1, ImageHeight: 4, ImageWidth: 4}
	fmt.Printf("plate is %vx%v px unscaled\n", spec.PlateWidth(), spec.PlateHeight())

	// At ratio 1 the canvas is exactly the unscaled plate
	l, err := NewLayout(spec, 1)
	fmt.Printf("%v|%v\n", err, l.Canvas())

	fmt.Printf("%v\n", l.WellRect(0, 0))
	fmt.Printf("%v\n", l.WellRect(1, 2))
	fmt.Printf("%v\n", l.SiteRect(Coord{WellRow: 1, WellCol: 2}))

	// Output:
	// plate is 12x8 px unscaled
	// <nil>|(0,0)-(12,8)
	// (0,0)-(4,4)
	// (8,4)-(12,8)
	// (8,4)-(12,8)
}

func Example_layoutScaled() {
	// 384-well plate, 3x3 sites, 1000x1000 pixel images, rendered at 1:10
	spec := Spec{WellRows: 16, WellCols: 24, SiteRows: 3, SiteCols: 3, ImageHeight: 1000, ImageWidth: 1000}

	l, err := NewLayout(spec, 0.1)
	fmt.Printf("%v|%v\n", err, l.Canvas())

	fmt.Printf("%v\n", l.WellRect(2, 3))
	c := Coord{WellRow: 2, WellCol: 3, SiteRow: 1, SiteCol: 2}
	fmt.Printf("%v\n", l.SiteRect(c))
	fmt.Printf("%v\n", l.SiteRectInWell(c))

	// Output:
	// <nil>|(0,0)-(7200,4800)
	// (900,600)-(1200,900)
	// (1100,700)-(1200,800)
	// (200,100)-(300,200)
}

func Example_layoutInvalid() {
	_, err := NewLayout(Spec{WellRows: 0, WellCols: 24, SiteRows: 3, SiteCols: 3, ImageHeight: 1000, ImageWidth: 1000}, 1)
	fmt.Printf("%v|%v\n", err, IsInvalidGeometryError(err))

	_, err = NewLayout(Spec{WellRows: 16, WellCols: 24, SiteRows: 3, SiteCols: 0, ImageHeight: 1000, ImageWidth: 1000}, 1)
	fmt.Printf("%v\n", err)

	_, err = NewLayout(Spec{WellRows: 16, WellCols: 24, SiteRows: 3, SiteCols: 3, ImageHeight: 1000, ImageWidth: 1000}, 0)
	fmt.Printf("%v\n", err)

	fmt.Printf("%v\n", IsInvalidGeometryError(errors.New("something else")))

	// Output:
	// invalid plate geometry: well grid 0x24, must be at least 1x1|true
	// invalid plate geometry: site grid 3x0, must be at least 1x1
	// invalid plate geometry: rescale ratio 0, must be positive
	// false
}

func Example_runGrid() {
	// 5 plates, near-square auto arrangement
	g, err := MakeRunGrid(5, 0, 480, 720)
	fmt.Printf("%v|%v rows, %v cols\n", err, g.Rows, g.Cols)
	fmt.Printf("%v\n", g.Canvas())
	fmt.Printf("%v\n", g.Cell(0))
	fmt.Printf("%v\n", g.Cell(4))

	// 4 plates over 2 columns
	g, err = MakeRunGrid(4, 2, 480, 720)
	fmt.Printf("%v|%v rows, %v cols\n", err, g.Rows, g.Cols)

	_, err = MakeRunGrid(0, 0, 480, 720)
	fmt.Printf("%v\n", err)

	// Output:
	// <nil>|2 rows, 3 cols
	// (0,0)-(2160,960)
	// (0,0)-(720,480)
	// (720,480)-(1440,960)
	// <nil>|2 rows, 2 cols
	// invalid plate geometry: run of 0 plates
}

func Example_siteNumbers() {
	// Site numbers are 1-based, row-major within the well
	spec := Spec{WellRows: 16, WellCols: 24, SiteRows: 2, SiteCols: 3, ImageHeight: 1000, ImageWidth: 1000}

	for n := 1; n <= spec.SiteCount(); n++ {
		row, col := spec.SiteCoord(n)
		fmt.Printf("site %v = (%v,%v), back to %v\n", n, row, col, spec.SiteNumber(row, col))
	}

	// Output:
	// site 1 = (0,0), back to 1
	// site 2 = (0,1), back to 2
	// site 3 = (0,2), back to 3
	// site 4 = (1,0), back to 4
	// site 5 = (1,1), back to 5
	// site 6 = (1,2), back to 6
}

// Site rectangles must partition the canvas exactly at any ratio, even ones
// where grid edges don't land on whole pixels.
func TestLayoutPartition(t *testing.T) {
	spec := Spec{WellRows: 3, WellCols: 5, SiteRows: 2, SiteCols: 3, ImageHeight: 7, ImageWidth: 11}

	for _, ratio := range []float64{1, 0.5, 0.37, 0.1} {
		l, err := NewLayout(spec, ratio)
		if err != nil {
			t.Fatalf("ratio %v: %v", ratio, err)
		}

		canvas := l.Canvas()

		area := 0
		for wr := 0; wr < spec.WellRows; wr++ {
			for wc := 0; wc < spec.WellCols; wc++ {
				well := l.WellRect(wr, wc)
				wellArea := 0

				for sr := 0; sr < spec.SiteRows; sr++ {
					for sc := 0; sc < spec.SiteCols; sc++ {
						c := Coord{WellRow: wr, WellCol: wc, SiteRow: sr, SiteCol: sc}
						site := l.SiteRect(c)

						if !site.Empty() && site.Intersect(canvas) != site {
							t.Errorf("ratio %v: site %v rect %v outside canvas %v", ratio, c, site, canvas)
						}
						if got := l.SiteRectInWell(c).Add(well.Min); got != site {
							t.Errorf("ratio %v: in-well rect %v doesn't translate back to %v", ratio, got, site)
						}

						area += site.Dx() * site.Dy()
						wellArea += site.Dx() * site.Dy()
					}
				}

				if wellArea != well.Dx()*well.Dy() {
					t.Errorf("ratio %v: well (%v,%v) sites cover %v px, well rect is %v px", ratio, wr, wc, wellArea, well.Dx()*well.Dy())
				}
			}
		}

		// Edges are shared between neighbours, so matching total area means no
		// gaps and no overlap
		if area != canvas.Dx()*canvas.Dy() {
			t.Errorf("ratio %v: sites cover %v px, canvas is %v px", ratio, area, canvas.Dx()*canvas.Dy())
		}
	}
}

func TestCanvasRounding(t *testing.T) {
	spec := Spec{WellRows: 2, WellCols: 3, SiteRows: 1, SiteCols: 1, ImageHeight: 33, ImageWidth: 33}

	// Unscaled extent is 66x99. At 0.1 the canvas must be round(6.6) x round(9.9),
	// not a sum of per-cell rounded sizes (which would give 6x9).
	l, err := NewLayout(spec, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	canvas := l.Canvas()
	if canvas.Dy() != 7 || canvas.Dx() != 10 {
		t.Errorf("canvas %v, expected 10x7", canvas)
	}
}
