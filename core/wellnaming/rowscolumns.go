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
)

// RowsAndColumnsScheme - names like r03c05f02p01-ch1sk1fk1fl1.tiff, exactly
// 30 characters: 2-digit 1-based well row and column, 2-digit 1-based site
// number, 2-digit plane, then a single digit channel. There is no plate token,
// the plate is taken from the folder the file sits in. Fluorescent channels
// are ch1-ch5 at plane p01, mapping to channel IDs C01-C05; brightfield is
// ch6 with the depth in the plane token (p01-p03 = Z01C06-Z03C06).
type RowsAndColumnsScheme struct {
}

func (s RowsAndColumnsScheme) Name() string {
	return SchemeRowsAndColumns
}

func (s RowsAndColumnsScheme) MakeFileName(plate string, wellRow int, wellCol int, siteNumber int, channelID string) (string, error) {
	// No plate token in this scheme, the plate parameter is ignored
	if wellRow < 0 || wellRow > 98 {
		return "", fmt.Errorf("well row %v out of range 1-99", wellRow+1)
	}
	if wellCol < 0 || wellCol > 98 {
		return "", fmt.Errorf("well column %v out of range 1-99", wellCol+1)
	}
	if siteNumber < 1 || siteNumber > 99 {
		return "", fmt.Errorf("site number %v out of range 1-99", siteNumber)
	}

	channel, plane, err := splitChannelToken(channelID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("r%02dc%02df%02dp%v-ch%vsk1fk1fl1.tiff", wellRow+1, wellCol+1, siteNumber, plane, channel), nil
}

func (s RowsAndColumnsScheme) ParseFileName(fileName string) (ParsedName, error) {
	// We often get passed paths so here we ensure we're just dealing with the file name at the end
	name := filepath.Base(fileName)

	result := ParsedName{}

	if len(name) != 30 {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "expected 30 characters"}
	}

	// Layout: r03 c05 f02 p01 - ch1 sk1fk1fl1 .tiff
	if name[0] != 'r' || !isDigits(name[1:3]) || name[3] != 'c' || !isDigits(name[4:6]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad well tokens"}
	}
	if name[6] != 'f' || !isDigits(name[7:9]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad site token"}
	}
	if name[9] != 'p' || !isDigits(name[10:12]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad plane token"}
	}
	if name[12:15] != "-ch" || !isDigits(name[15:16]) {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad channel token"}
	}
	if name[16:25] != "sk1fk1fl1" {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "bad stack tokens"}
	}
	if name[25:30] != ".tiff" {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "not a .tiff"}
	}

	row, _ := strconv.Atoi(name[1:3])
	col, _ := strconv.Atoi(name[4:6])
	site, _ := strconv.Atoi(name[7:9])
	if row < 1 || col < 1 || site < 1 {
		return result, UnrecognizedFilenameError{FileName: name, Reason: "zero well or site number"}
	}

	result.WellRow = row - 1
	result.WellCol = col - 1
	result.SiteNumber = site
	result.ChannelID = joinChannelToken(name[15], name[10:12])
	return result, nil
}

func (s RowsAndColumnsScheme) WellLabel(wellRow int, wellCol int) string {
	return fmt.Sprintf("r%02dc%02d", wellRow+1, wellCol+1)
}

func (s RowsAndColumnsScheme) ParseWellLabel(label string) (int, int, error) {
	if len(label) != 6 || label[0] != 'r' || label[3] != 'c' || !isDigits(label[1:3]) || !isDigits(label[4:6]) {
		return 0, 0, InvalidWellNameError{Label: label, Reason: "expected r##c##"}
	}

	row, _ := strconv.Atoi(label[1:3])
	col, _ := strconv.Atoi(label[4:6])
	if row < 1 || col < 1 {
		return 0, 0, InvalidWellNameError{Label: label, Reason: "row or column 0"}
	}

	return row - 1, col - 1, nil
}

// The single digit channel token: 1-5 are the fluorescent channel IDs C01-C05
// at plane p01, 6 is brightfield with the depth in the plane token.
func splitChannelToken(channelID string) (string, string, error) {
	if len(channelID) == 3 && channelID[0] == 'C' && channelID[1] == '0' && channelID[2] >= '1' && channelID[2] <= '5' {
		return channelID[2:3], "01", nil
	}
	if len(channelID) == 6 && channelID[0] == 'Z' && isDigits(channelID[1:3]) && channelID[3:6] == "C06" {
		return "6", channelID[1:3], nil
	}
	return "", "", fmt.Errorf("unknown channel id: %v", channelID)
}

func joinChannelToken(channel byte, plane string) string {
	if channel == '6' {
		return "Z" + plane + "C06"
	}
	return "C0" + string(channel)
}
