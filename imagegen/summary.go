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
	"github.com/plateview/core/core/logger"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// SummaryFileName is written into the output root after every render.
const SummaryFileName = "render-summary.json"

// UnitResult - the outcome of one work unit. Missing and corrupt source
// counts cover images that rendered as placeholders: the unit still
// succeeds, these counts are how the gaps surface.
type UnitResult struct {
	Unit           string   `json:"unit"`
	Status         string   `json:"status"`
	Error          string   `json:"error,omitempty"`
	Outputs        []string `json:"outputs,omitempty"`
	MissingSources int      `json:"missingSources"`
	CorruptSources int      `json:"corruptSources"`
}

// RunSummary - the machine readable wrap-up of one render, written to
// render-summary.json beside the images so batch pipelines can check what
// happened without parsing logs.
type RunSummary struct {
	Request Request `json:"request"`

	StartUnixTimeSec int64 `json:"startUnixTimeSec"`
	EndUnixTimeSec   int64 `json:"endUnixTimeSec"`

	Units []UnitResult `json:"units"`

	OutputCount    int `json:"outputCount"`
	FailedCount    int `json:"failedCount"`
	MissingSources int `json:"missingSources"`
	CorruptSources int `json:"corruptSources"`
}

func makeSummary(req Request, results []UnitResult, startSec int64, endSec int64) RunSummary {
	summary := RunSummary{
		Request:          req,
		StartUnixTimeSec: startSec,
		EndUnixTimeSec:   endSec,
		Units:            results,
	}

	for _, result := range results {
		if result.Status == StatusFailed {
			summary.FailedCount++
		}
		summary.OutputCount += len(result.Outputs)
		summary.MissingSources += result.MissingSources
		summary.CorruptSources += result.CorruptSources
	}
	return summary
}

// log is the human readable counterpart of the JSON summary.
func (s RunSummary) log(log logger.ILogger) {
	log.Infof("Render %v/%v complete in %v sec: %v outputs from %v units",
		s.Request.Mode, s.Request.Scope, s.EndUnixTimeSec-s.StartUnixTimeSec, s.OutputCount, len(s.Units))

	if s.MissingSources > 0 || s.CorruptSources > 0 {
		log.Infof("Placeholders stand in for %v missing and %v unreadable source images", s.MissingSources, s.CorruptSources)
	}

	for _, unit := range s.Units {
		if unit.Status == StatusFailed {
			log.Errorf("Unit %v failed: %v", unit.Unit, unit.Error)
		}
	}
}
