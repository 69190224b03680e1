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

// Coordinate arithmetic for microtiter plates. A plate is a grid of wells,
// each well a grid of imaged sites, each site one micrograph of fixed pixel
// dimensions. Everything here is pure math over those three levels, no I/O.
package plategrid

import "fmt"

// Spec describes the physical layout of one plate: the well grid, the site
// grid inside each well, and the pixel dimensions of a single site image.
// Loaded once per run and treated as immutable after that.
type Spec struct {
	WellRows    int
	WellCols    int
	SiteRows    int
	SiteCols    int
	ImageHeight int
	ImageWidth  int
}

// Validate checks all dimensions are at least 1. Anything else means the
// configuration is broken and no rendering should be attempted.
func (s Spec) Validate() error {
	if s.WellRows < 1 || s.WellCols < 1 {
		return InvalidGeometryError{Reason: fmt.Sprintf("well grid %vx%v, must be at least 1x1", s.WellRows, s.WellCols)}
	}
	if s.SiteRows < 1 || s.SiteCols < 1 {
		return InvalidGeometryError{Reason: fmt.Sprintf("site grid %vx%v, must be at least 1x1", s.SiteRows, s.SiteCols)}
	}
	if s.ImageHeight < 1 || s.ImageWidth < 1 {
		return InvalidGeometryError{Reason: fmt.Sprintf("image size %vx%v, must be at least 1x1", s.ImageWidth, s.ImageHeight)}
	}
	return nil
}

// Unscaled pixel extents of one well and of the whole plate
func (s Spec) WellHeight() int {
	return s.SiteRows * s.ImageHeight
}

func (s Spec) WellWidth() int {
	return s.SiteCols * s.ImageWidth
}

func (s Spec) PlateHeight() int {
	return s.WellRows * s.WellHeight()
}

func (s Spec) PlateWidth() int {
	return s.WellCols * s.WellWidth()
}

func (s Spec) WellCount() int {
	return s.WellRows * s.WellCols
}

func (s Spec) SiteCount() int {
	return s.SiteRows * s.SiteCols
}

// SiteCoord converts a 1-based row-major site number (as file names carry it)
// to site row/col within the well.
func (s Spec) SiteCoord(siteNumber int) (int, int) {
	return (siteNumber - 1) / s.SiteCols, (siteNumber - 1) % s.SiteCols
}

// SiteNumber is the inverse of SiteCoord.
func (s Spec) SiteNumber(siteRow int, siteCol int) int {
	return siteRow*s.SiteCols + siteCol + 1
}

// Coord identifies one site on a plate. Well coordinates range over the well
// grid, site coordinates over the site grid, all 0-based.
type Coord struct {
	WellRow int
	WellCol int
	SiteRow int
	SiteCol int
}

// InvalidGeometryError - plate geometry or rescale ratio that can't be laid
// out. This is a configuration error, callers abort before starting any work.
type InvalidGeometryError struct {
	Reason string
}

func (e InvalidGeometryError) Error() string {
	return "invalid plate geometry: " + e.Reason
}

func IsInvalidGeometryError(err error) bool {
	_, ok := err.(InvalidGeometryError)
	return ok
}
