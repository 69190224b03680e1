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
	"path"
	"strings"

	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/wellnaming"
)

// Key identifies one micrograph within a plate
type Key struct {
	WellRow    int
	WellCol    int
	SiteNumber int
	ChannelID  string
}

// Index - all recognised micrographs under one plate folder, keyed by
// coordinate. Unrecognised lists files the naming scheme could not parse
// (plate metadata, thumbnails etc), kept for diagnostics.
type Index struct {
	Files        map[Key]string
	Unrecognised []string
}

// BuildIndex scans a plate folder and parses every file name it finds.
// platePath is relative to the source root, empty means the root is the
// plate folder itself. Listing order is deterministic, so if the same
// coordinate somehow appears twice the later path wins consistently.
func BuildIndex(fs fileaccess.FileAccess, root string, platePath string, scheme wellnaming.Scheme) (*Index, error) {
	prefix := platePath
	if len(prefix) > 0 && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	paths, err := fs.ListObjects(root, prefix)
	if err != nil {
		return nil, SourceAccessError{Path: path.Join(root, platePath), Err: err}
	}

	index := &Index{Files: map[Key]string{}}
	for _, p := range paths {
		parsed, err := scheme.ParseFileName(p)
		if err != nil {
			index.Unrecognised = append(index.Unrecognised, p)
			continue
		}

		key := Key{
			WellRow:    parsed.WellRow,
			WellCol:    parsed.WellCol,
			SiteNumber: parsed.SiteNumber,
			ChannelID:  parsed.ChannelID,
		}
		index.Files[key] = p
	}

	return index, nil
}

// ChannelCounts - how many micrographs the index holds per channel
func (index *Index) ChannelCounts() map[string]int {
	counts := map[string]int{}
	for key := range index.Files {
		counts[key.ChannelID]++
	}
	return counts
}
