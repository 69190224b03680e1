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

package mosaic

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelLineHeight - vertical advance between stacked label lines
var LabelLineHeight = basicfont.Face7x13.Height + 2

// DrawLabel renders text with its baseline starting at the given point.
// Annotations draw after a well is resized, the anchor is expected to be in
// post-resize coordinates.
func DrawLabel(dst draw.Image, text string, at image.Point) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Gray{Y: AnnotationIntensity}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(at.X, at.Y),
	}
	d.DrawString(text)
}
