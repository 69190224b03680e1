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

package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/tiff"
)

const jpegQuality = 95

// DecodeImage - decodes PNG, JPEG or TIFF (via the x/image decoder registered above)
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// EncodeImage - encodes to the given output format: png, jpg or jpeg
func EncodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(&buf, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return nil, fmt.Errorf("unsupported image format: %v", format)
	}

	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImagesEqual - compares dimensions then every pixel, returning an error
// describing the first few differing pixels
func ImagesEqual(a, b image.Image) error {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return fmt.Errorf("image bounds not equal: %+v, %+v", a.Bounds(), b.Bounds())
	}

	diffs := 0
	errs := ""
	for y := a.Bounds().Min.Y; y < a.Bounds().Max.Y; y++ {
		for x := a.Bounds().Min.X; x < a.Bounds().Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				if diffs < 10 {
					errs += fmt.Sprintf("image pixels at %v,%v not equal: %+v, %+v\n", x, y, a.At(x, y), b.At(x, y))
				}
				diffs++
			}
		}
	}

	if diffs > 0 {
		return fmt.Errorf("%v differing pixels:\n%v", diffs, errs)
	}

	return nil
}
