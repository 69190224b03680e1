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

package tilesource

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/logger"
	"github.com/plateview/core/core/utils"
)

// Loader turns index lookups into ready-to-paste 8-bit greyscale tiles.
// Failures are logged, degrade to placeholder tiles and bump the counters,
// so a render always completes and the summary reports what was wrong. Not
// safe for concurrent use, each render unit gets its own.
type Loader struct {
	fs    fileaccess.FileAccess
	root  string
	index *Index
	log   logger.ILogger

	background uint8
	marker     uint8

	MissingCount int
	CorruptCount int
}

func NewLoader(fs fileaccess.FileAccess, root string, index *Index, background uint8, marker uint8, log logger.ILogger) *Loader {
	return &Loader{
		fs:         fs,
		root:       root,
		index:      index,
		log:        log,
		background: background,
		marker:     marker,
	}
}

// LoadTile reads the micrograph for one site+channel, converts it to 8-bit
// with the given coefficient and returns it at exactly width x height pixels.
// Missing files and files that won't decode come back as placeholders.
func (l *Loader) LoadTile(wellRow int, wellCol int, siteNumber int, channelID string, width int, height int, coef float64) *image.Gray {
	objPath, ok := l.index.Files[Key{WellRow: wellRow, WellCol: wellCol, SiteNumber: siteNumber, ChannelID: channelID}]
	if !ok {
		l.log.Infof("  WARNING: no micrograph for well r%vc%v site %v channel %v", wellRow+1, wellCol+1, siteNumber, channelID)
		l.MissingCount++
		return Placeholder(width, height, l.background, l.marker)
	}

	data, err := l.fs.ReadObject(l.root, objPath)
	if err != nil {
		if l.fs.IsNotFoundError(err) {
			// Listed but gone by read time
			l.log.Infof("  WARNING: micrograph %v vanished after listing", objPath)
			l.MissingCount++
		} else {
			l.log.Infof("  WARNING: failed to read micrograph %v: %v", objPath, err)
			l.CorruptCount++
		}
		return Placeholder(width, height, l.background, l.marker)
	}

	img, err := utils.DecodeImage(data)
	if err != nil {
		l.log.Infof("  WARNING: failed to decode micrograph %v: %v", objPath, err)
		l.CorruptCount++
		return Placeholder(width, height, l.background, l.marker)
	}

	return normaliseSize(convertTo8Bit(img, coef), width, height)
}

// convertTo8Bit maps 16-bit source intensities to display range:
// out = min(255, floor(px * coef / 256)). 8-bit sources are widened first so
// a coefficient of 1 passes their values through unchanged.
func convertTo8Bit(img image.Image, coef float64) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	switch src := img.(type) {
	case *image.Gray16:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				i := src.PixOffset(x, y)
				v := uint32(src.Pix[i])<<8 | uint32(src.Pix[i+1])
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: scaleTo8Bit(v, coef)})
			}
		}
	case *image.Gray:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				v := uint32(src.GrayAt(x, y).Y) * 257
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: scaleTo8Bit(v, coef)})
			}
		}
	default:
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				v := uint32(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: scaleTo8Bit(v, coef)})
			}
		}
	}

	return out
}

func scaleTo8Bit(v uint32, coef float64) uint8 {
	scaled := math.Floor(float64(v) * coef / 256)
	if scaled > 255 {
		return 255
	}
	if scaled < 0 {
		return 0
	}
	return uint8(scaled)
}

// normaliseSize brings a tile to the pixel size the layout expects. Sources
// normally match the configured image size already, so this is usually a
// no-op.
func normaliseSize(tile *image.Gray, width int, height int) *image.Gray {
	if tile.Bounds().Dx() == width && tile.Bounds().Dy() == height {
		return tile
	}

	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), tile, tile.Bounds(), draw.Src, nil)
	return dst
}

// Placeholder builds the stand-in tile for a missing or unreadable
// micrograph: uniform background with a corner-to-corner cross so it is
// obvious at a glance in the mosaic.
func Placeholder(width int, height int, background uint8, marker uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = background
	}

	n := width
	if height > n {
		n = height
	}
	if n < 2 {
		img.SetGray(0, 0, color.Gray{Y: marker})
		return img
	}
	for i := 0; i < n; i++ {
		x := i * (width - 1) / (n - 1)
		y := i * (height - 1) / (n - 1)
		img.SetGray(x, y, color.Gray{Y: marker})
		img.SetGray(x, height-1-y, color.Gray{Y: marker})
	}

	return img
}
