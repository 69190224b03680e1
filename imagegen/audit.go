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

package imagegen

import (
	"github.com/plateview/core/imagegen/internal/tilesource"
)

// SourceAudit - what one plate folder holds, checked against what a full
// plate should hold. Run before a long render to see whether an upload is
// complete, or after one to explain placeholder counts.
type SourceAudit struct {
	Plate             string         `json:"plate"`
	MicrographCount   int            `json:"micrographCount"`
	ExpectedCount     int            `json:"expectedCount"`
	MissingCount      int            `json:"missingCount"`
	ChannelCounts     map[string]int `json:"channelCounts"`
	UnrecognisedFiles []string       `json:"unrecognisedFiles,omitempty"`
}

// AuditPlate indexes one plate folder and compares it against the
// configured geometry: every configured channel should have one file per
// site of every well.
func (e *Engine) AuditPlate(sourcePath string, platePath string, plateName string) (SourceAudit, error) {
	index, err := tilesource.BuildIndex(e.fs, sourcePath, platePath, e.scheme)
	if err != nil {
		return SourceAudit{}, err
	}

	spec := e.cfg.GridSpec()
	expectedPerChannel := spec.WellCount() * spec.SiteCount()

	audit := SourceAudit{
		Plate:             plateName,
		MicrographCount:   len(index.Files),
		ExpectedCount:     expectedPerChannel * len(e.cfg.Channels),
		ChannelCounts:     index.ChannelCounts(),
		UnrecognisedFiles: index.Unrecognised,
	}
	// Counts can exceed expectations when a folder holds coordinates outside
	// the configured grid, that's not a shortfall
	for _, ch := range e.cfg.Channels {
		if missing := expectedPerChannel - audit.ChannelCounts[ch.ID]; missing > 0 {
			audit.MissingCount += missing
		}
	}

	return audit, nil
}

// AuditRun discovers the plates of a run folder and audits each.
func (e *Engine) AuditRun(sourcePath string) ([]SourceAudit, error) {
	plates, err := e.discoverPlates(sourcePath)
	if err != nil {
		return nil, err
	}

	audits := []SourceAudit{}
	for _, plate := range plates {
		audit, err := e.AuditPlate(sourcePath, plate.Path, plate.Name)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, nil
}
