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

// Blends the per-channel greyscale micrographs of a site into one colour
// composite. The classic style tints each fluorescent channel with its
// wavelength colour after a contrast curve; the weighted styles recolour by
// shuffling intensity-scaled channels onto the output planes, for
// non-physical renderings that make particular structures pop.
package cellpaint

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
)

// Palette - the fluorescent channels composites blend over. Slot order is
// the channel table order and is what weighted style indices refer to. The
// intensity, contrast and tint parameters drive the classic style.
type Palette struct {
	ChannelIDs []string
	Intensity  []float64
	Contrast   []float64
	Tints      [][3]int
}

// Weights - one weighted style: per-slot intensity multipliers, a slot
// order whose first three entries become the blue, green and red output
// planes, and the slots the two remaining channels merge into first.
type Weights struct {
	Intensity []int
	Order     []int
	TargetRGB []int
}

// Style - a resolved blend strategy, passed by value into the render. A nil
// Weights means the classic physical blend.
type Style struct {
	Name    string
	Weights *Weights
}

// Classic - the wavelength-tint blend driven by the palette parameters
func Classic() Style {
	return Style{Name: "classic"}
}

// Weighted wraps a named weighted style's index tables
func Weighted(name string, intensity []int, order []int, targetRGB []int) Style {
	return Style{
		Name: name,
		Weights: &Weights{
			Intensity: intensity,
			Order:     order,
			TargetRGB: targetRGB,
		},
	}
}

// Random draws a fresh weighted style: intensities in 1..maxCoefficient,
// shuffled slot order and merge targets. Drawn once per render request, so
// one request is self-consistent but two runs never match.
func Random(maxCoefficient int) Style {
	intensity := make([]int, 5)
	for i := range intensity {
		intensity[i] = rand.Intn(maxCoefficient) + 1
	}

	return Style{
		Name: "random",
		Weights: &Weights{
			Intensity: intensity,
			Order:     rand.Perm(5),
			TargetRGB: rand.Perm(3),
		},
	}
}

// Fingerprint - the parameter dump drawn on composites when requested, so a
// striking render can be reproduced later
func (s Style) Fingerprint(pal Palette) string {
	if s.Weights != nil {
		return fmt.Sprintf("%v%v%v", s.Weights.Intensity, s.Weights.Order, s.Weights.TargetRGB)
	}
	return fmt.Sprintf("%v%v", pal.Intensity, pal.Contrast)
}

// Blend composes one site's colour tile from its per-channel greyscale
// tiles. tiles[i] belongs to palette slot i; a nil slot (channel not
// selected, or past the end of a short palette) contributes nothing.
// Non-nil tiles must all be width x height already.
func Blend(style Style, pal Palette, tiles []*image.Gray, width int, height int) *image.RGBA {
	if style.Weights != nil {
		return blendWeighted(*style.Weights, tiles, width, height)
	}
	return blendClassic(pal, tiles, width, height)
}

// blendClassic: per slot, the contrast curve f = 131(c+127)/(127(131-c))
// maps each pixel to clamp8(round(f*px + 127(1-f))), then the result scaled
// by intensity/255 accumulates into the output planes under the slot's RGB
// tint. Planes accumulate in floats and saturate once at the end.
func blendClassic(pal Palette, tiles []*image.Gray, width int, height int) *image.RGBA {
	acc := make([]float64, width*height*3)

	for slot := 0; slot < len(pal.ChannelIDs) && slot < len(tiles); slot++ {
		tile := tiles[slot]
		if tile == nil {
			continue
		}

		contrast := pal.Contrast[slot]
		f := (131 * (contrast + 127)) / (127 * (131 - contrast))
		gamma := 127 * (1 - f)
		intensity := pal.Intensity[slot]
		tint := pal.Tints[slot]

		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				adjusted := float64(clampRound8(f*float64(tile.GrayAt(x, y).Y) + gamma))
				weight := adjusted * intensity / 255

				i := (y*width + x) * 3
				acc[i] += weight * float64(tint[0])
				acc[i+1] += weight * float64(tint[1])
				acc[i+2] += weight * float64(tint[2])
			}
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 3
			out.SetRGBA(x, y, color.RGBA{
				R: clampRound8(acc[i]),
				G: clampRound8(acc[i+1]),
				B: clampRound8(acc[i+2]),
				A: 255,
			})
		}
	}
	return out
}

// blendWeighted: scale each slot by its intensity, merge the two channels
// past the order's first three into their target slots (in sequence, so the
// second merge sees the first's result), then read the blue, green and red
// planes from the first three ordered slots. Integer math throughout, one
// saturating clamp at the plane write.
func blendWeighted(w Weights, tiles []*image.Gray, width int, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	slots := make([]int, len(w.Intensity))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for i := range slots {
				slots[i] = 0
				if i < len(tiles) && tiles[i] != nil {
					slots[i] = int(tiles[i].GrayAt(x, y).Y) * w.Intensity[i]
				}
			}

			slots[w.TargetRGB[0]] += slots[w.Order[3]]
			slots[w.TargetRGB[1]] += slots[w.Order[4]]

			out.SetRGBA(x, y, color.RGBA{
				R: clampInt8(slots[w.Order[2]]),
				G: clampInt8(slots[w.Order[1]]),
				B: clampInt8(slots[w.Order[0]]),
				A: 255,
			})
		}
	}
	return out
}

func clampRound8(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

func clampInt8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
