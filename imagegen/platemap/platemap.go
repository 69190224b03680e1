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

// Reads platemap tables, the per-plate CSV/TSV files mapping each well to the
// compound dispensed into it. Renders use them to label wells with what they
// contain.
package platemap

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/wellnaming"
)

// Platemap maps well label (in the naming scheme's spelling) to the compound
// identifier dispensed into that well. Wells with nothing recorded are simply
// absent.
type Platemap map[string]string

// Load reads a platemap table and returns the well->compound mapping plus a
// count of rows that had to be ignored (blank or unrecognisable well labels).
// The delimiter is sniffed from the header line, so both CSV and the
// tab-separated files LIMS exports produce work. Platemap files label
// wells by letter+number convention regardless of how the microscope names
// its images, so labels in either scheme spelling are accepted and stored
// under the configured scheme's spelling.
func Load(fs fileaccess.FileAccess, root string, path string, wellColumn string, compoundColumn string, scheme wellnaming.Scheme) (Platemap, int, error) {
	data, err := fs.ReadObject(root, path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read platemap %v: %v", path, err)
	}

	// Excel exports sometimes lead with a byte order mark
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse platemap %v: %v", path, err)
	}
	if len(rows) < 1 {
		return nil, 0, fmt.Errorf("platemap %v is empty", path)
	}

	wellIdx := -1
	compoundIdx := -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case wellColumn:
			wellIdx = i
		case compoundColumn:
			compoundIdx = i
		}
	}
	if wellIdx < 0 {
		return nil, 0, fmt.Errorf("platemap %v has no column %v", path, wellColumn)
	}
	if compoundIdx < 0 {
		return nil, 0, fmt.Errorf("platemap %v has no column %v", path, compoundColumn)
	}

	result := Platemap{}
	ignored := 0
	for _, row := range rows[1:] {
		label := strings.TrimSpace(row[wellIdx])
		compound := strings.TrimSpace(row[compoundIdx])

		if len(label) <= 0 {
			ignored++
			continue
		}
		wellRow, wellCol, err := parseAnyLabel(scheme, label)
		if err != nil {
			ignored++
			continue
		}
		if len(compound) <= 0 {
			// A well with nothing dispensed, legitimate and unannotated
			continue
		}

		result[scheme.WellLabel(wellRow, wellCol)] = compound
	}

	return result, ignored, nil
}

func sniffDelimiter(data []byte) rune {
	header := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		header = data[0:idx]
	}
	if bytes.Count(header, []byte("\t")) > bytes.Count(header, []byte(",")) {
		return '\t'
	}
	return ','
}

// parseAnyLabel tries the configured scheme's well label spelling first, then
// falls back to the other known schemes
func parseAnyLabel(scheme wellnaming.Scheme, label string) (int, int, error) {
	wellRow, wellCol, err := scheme.ParseWellLabel(label)
	if err == nil {
		return wellRow, wellCol, nil
	}

	for _, name := range []string{wellnaming.SchemeLetterWells, wellnaming.SchemeRowsAndColumns} {
		if name == scheme.Name() {
			continue
		}
		alt, schemeErr := wellnaming.GetScheme(name)
		if schemeErr != nil {
			continue
		}
		if r, c, altErr := alt.ParseWellLabel(label); altErr == nil {
			return r, c, nil
		}
	}

	return 0, 0, err
}
