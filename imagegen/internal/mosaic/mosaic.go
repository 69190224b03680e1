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

// Canvas operations for assembling plate images: pasting site tiles into
// well images, resizing assembled wells to their place in a scaled plate,
// and the label/border marks drawn on them. Works on both greyscale
// mosaics and colour composites.
package mosaic

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/plateview/core/core/plategrid"
)

// TileProvider hands BuildWell the tile for a given site number
type TileProvider func(siteNumber int) image.Image

// NewGrayCanvas - greyscale canvas filled with a background intensity
func NewGrayCanvas(width int, height int, background uint8) *image.Gray {
	canvas := image.NewGray(image.Rect(0, 0, width, height))
	for i := range canvas.Pix {
		canvas.Pix[i] = background
	}
	return canvas
}

// NewColorCanvas - opaque black colour canvas
func NewColorCanvas(width int, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 3; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i] = 0xff
	}
	return canvas
}

// Paste draws src into dst with its top-left corner at the given point
func Paste(dst draw.Image, src image.Image, at image.Point) {
	bounds := src.Bounds()
	target := image.Rect(at.X, at.Y, at.X+bounds.Dx(), at.Y+bounds.Dy())
	draw.Draw(dst, target, src, bounds.Min, draw.Src)
}

// BuildWell assembles one well at full resolution, pasting each site tile at
// its row-major position. Tiles must already be at the configured image
// size. The canvas type follows the render: greyscale for QC mosaics,
// colour for composites.
func BuildWell(spec plategrid.Spec, tiles TileProvider, colour bool) draw.Image {
	var canvas draw.Image
	if colour {
		canvas = NewColorCanvas(spec.WellWidth(), spec.WellHeight())
	} else {
		canvas = NewGrayCanvas(spec.WellWidth(), spec.WellHeight(), 0)
	}

	for site := 1; site <= spec.SiteCount(); site++ {
		siteRow, siteCol := spec.SiteCoord(site)
		Paste(canvas, tiles(site), image.Point{X: siteCol * spec.ImageWidth, Y: siteRow * spec.ImageHeight})
	}

	return canvas
}

// Resize resamples src to the given pixel size, keeping its colour model.
// Same-size input comes back untouched.
func Resize(src image.Image, width int, height int) draw.Image {
	bounds := src.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		if dst, ok := src.(draw.Image); ok {
			return dst
		}
	}

	var dst draw.Image
	if _, gray := src.(*image.Gray); gray {
		dst = image.NewGray(image.Rect(0, 0, width, height))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, width, height))
	}

	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

// AnnotationIntensity is the grey level well labels, borders and fingerprint
// text are drawn in
const AnnotationIntensity = 192

// DrawBorder frames the given rectangle with strips of the annotation grey,
// drawn just inside its edges.
func DrawBorder(dst draw.Image, r image.Rectangle, thickness int) {
	if thickness < 1 || r.Empty() {
		return
	}

	grey := image.NewUniform(color.Gray{Y: AnnotationIntensity})
	strips := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, strip := range strips {
		draw.Draw(dst, strip.Intersect(r), grey, image.Point{}, draw.Src)
	}
}
