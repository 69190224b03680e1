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

package wellnaming

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// LetterWellsScheme - names like BR00116991_A01_T0001F001L01A01Z01C01.tif:
// plate barcode, letter+2-digit well, then a fixed 25 character suffix of
// timepoint T, 3-digit site F, focus tokens L/A, plane Z and channel C.
// The plate barcode may itself contain underscores, so parsing works from the
// right hand end. Brightfield images are channel 06 at planes Z01-Z03 and
// keep the plane in their channel ID (Z02C06); fluorescent channels are C01
// upward at plane Z01.
type LetterWellsScheme struct {
}

func (s LetterWellsScheme) Name() string {
	return SchemeLetterWells
}

func (s LetterWellsScheme) MakeFileName(plate string, wellRow int, wellCol int, siteNumber int, channelID string) (string, error) {
	if wellRow < 0 || wellRow > 'Z'-'A' {
		return "", fmt.Errorf("well row %v out of range A-Z", wellRow)
	}
	if wellCol < 0 || wellCol > 98 {
		return "", fmt.Errorf("well column %v out of range 1-99", wellCol+1)
	}
	if siteNumber < 1 || siteNumber > 999 {
		return "", fmt.Errorf("site number %v out of range 1-999", siteNumber)
	}

	plane, channel, err := splitChannelID(channelID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%v_%v_T0001F%03dL01A01Z%vC%v.tif", plate, s.WellLabel(wellRow, wellCol), siteNumber, plane, channel), nil
}

func (s LetterWellsScheme) ParseFileName(fileName string) (ParsedName, error) {
	// We often get passed paths so here we ensure we're just dealing with the file name at the end
	name := filepath.Base(fileName)

	result := ParsedName{}

	tailIdx := strings.LastIndex(name, "_")
	if tailIdx < 0 {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "no underscore separators"}
	}

	tail := name[tailIdx+1:]
	if len(tail) != 25 {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "expected 25 character suffix"}
	}

	head := name[:tailIdx]
	wellIdx := strings.LastIndex(head, "_")
	if wellIdx < 0 || wellIdx == 0 {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "no plate and well tokens"}
	}

	well := head[wellIdx+1:]
	wellRow, wellCol, err := s.ParseWellLabel(well)
	if err != nil {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad well token"}
	}

	// Suffix layout: T0001 F001 L01 A01 Z01 C01 .tif
	if tail[0] != 'T' || !isDigits(tail[1:5]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad timepoint token"}
	}
	if tail[5] != 'F' || !isDigits(tail[6:9]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad site token"}
	}
	if tail[9] != 'L' || !isDigits(tail[10:12]) || tail[12] != 'A' || !isDigits(tail[13:15]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad focus tokens"}
	}
	if tail[15] != 'Z' || !isDigits(tail[16:18]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad plane token"}
	}
	if tail[18] != 'C' || !isDigits(tail[19:21]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad channel token"}
	}
	if tail[21:25] != ".tif" {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "not a .tif"}
	}

	site, _ := strconv.Atoi(tail[6:9])
	if site < 1 {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "site number 0"}
	}

	result.Plate = head[:wellIdx]
	result.WellRow = wellRow
	result.WellCol = wellCol
	result.SiteNumber = site
	result.ChannelID = joinChannelID(tail[16:18], tail[19:21])
	return result, nil
}

func (s LetterWellsScheme) WellLabel(wellRow int, wellCol int) string {
	return fmt.Sprintf("%c%02d", 'A'+rune(wellRow), wellCol+1)
}

func (s LetterWellsScheme) ParseWellLabel(label string) (int, int, error) {
	if len(label) != 3 {
		return 0, 0, InvalidWellNameError{Label: label, Reason: "expected a letter and 2 digits"}
	}
	if label[0] < 'A' || label[0] > 'Z' || !isDigits(label[1:3]) {
		return 0, 0, InvalidWellNameError{Label: label, Reason: "expected a letter and 2 digits"}
	}

	col, _ := strconv.Atoi(label[1:3])
	if col < 1 {
		return 0, 0, InvalidWellNameError{Label: label, Reason: "column 0"}
	}

	return int(label[0] - 'A'), col - 1, nil
}

// Channel IDs are either C## (fluorescent, plane fixed at Z01) or Z##C06
// (brightfield, the plane picks the depth). These two convert between the ID
// and the plane+channel tokens the file names carry.
func splitChannelID(channelID string) (string, string, error) {
	if len(channelID) == 3 && channelID[0] == 'C' && isDigits(channelID[1:3]) && channelID[1:3] != "06" {
		return "01", channelID[1:3], nil
	}
	if len(channelID) == 6 && channelID[0] == 'Z' && isDigits(channelID[1:3]) && channelID[3:6] == "C06" {
		return channelID[1:3], "06", nil
	}
	return "", "", fmt.Errorf("unknown channel id: %v", channelID)
}

func joinChannelID(plane string, channel string) string {
	if channel == "06" {
		return "Z" + plane + "C" + channel
	}
	return "C" + channel
}
