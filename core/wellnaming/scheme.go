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

// File name parser and writer for the strict naming conventions microscopes
// emit micrographs under. Each naming scheme maps (plate, well, site, channel)
// to a file name and back again, with no I/O involved. Which scheme is in use
// is chosen once per run by configuration.
package wellnaming

import (
	"fmt"
)

// Scheme names accepted in configuration
const (
	SchemeLetterWells    = "letter_wells"
	SchemeRowsAndColumns = "rows_and_columns"
)

// ParsedName is the metadata one source file name carries. Well coordinates
// are 0-based, the site number is 1-based row-major within its well. Plate is
// empty for schemes whose names don't embed the plate barcode.
type ParsedName struct {
	Plate      string
	WellRow    int
	WellCol    int
	SiteNumber int
	ChannelID  string
}

// Scheme - one file naming convention. MakeFileName and ParseFileName are
// inverses of each other for any coordinate a plate can hold.
type Scheme interface {
	Name() string
	MakeFileName(plate string, wellRow int, wellCol int, siteNumber int, channelID string) (string, error)
	ParseFileName(fileName string) (ParsedName, error)
	WellLabel(wellRow int, wellCol int) string
	ParseWellLabel(label string) (int, int, error)
}

// GetScheme looks up a naming scheme by its configured name.
func GetScheme(name string) (Scheme, error) {
	switch name {
	case SchemeLetterWells:
		return LetterWellsScheme{}, nil
	case SchemeRowsAndColumns:
		return RowsAndColumnsScheme{}, nil
	}
	return nil, fmt.Errorf("unknown naming scheme: %v", name)
}

// UnrecognizedFilenameError - a file name that doesn't match the scheme's
// grammar. Callers treat these files like missing ones: skipped and counted,
// never fatal, because source folders routinely hold stray non-image files.
type UnrecognizedFilenameError struct {
	FileName string
	Reason   string
}

func (e UnrecognizedFilenameError) Error() string {
	return fmt.Sprintf("unrecognised file name \"%v\": %v", e.FileName, e.Reason)
}

func IsUnrecognizedFilenameError(err error) bool {
	_, ok := err.(UnrecognizedFilenameError)
	return ok
}

// InvalidWellNameError - a user-supplied well label (eg a single-well render
// request) that the scheme can't interpret.
type InvalidWellNameError struct {
	Label  string
	Reason string
}

func (e InvalidWellNameError) Error() string {
	return fmt.Sprintf("invalid well name \"%v\": %v", e.Label, e.Reason)
}

func IsInvalidWellNameError(err error) bool {
	_, ok := err.(InvalidWellNameError)
	return ok
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
