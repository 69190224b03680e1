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
	"fmt"
	"strconv"

	"github.com/plateview/core/core/utils"
	"github.com/plateview/core/core/wellnaming"
	"github.com/plateview/core/imagegen/config"
)

// Render modes and the scopes each accepts. QC renders one channel per
// output so faults in a single wavelength stand out; cell painting blends
// the fluorescent channels into colour composites.
const (
	ModeQC        = "qc"
	ModeCellPaint = "cp"

	ScopeChannel = "channel"
	ScopePlate   = "plate"
	ScopeRun     = "run"
	ScopeWells   = "wells"
	ScopeSites   = "sites"

	BrightfieldAll = "all"
)

// Request - one render job. SourcePath and OutputPath are roots for the
// engine's file access (directories, or buckets when running against S3),
// TempPath is always a local directory. Fields marked cp or qc only apply
// to that mode and are rejected in the other.
type Request struct {
	Mode  string `json:"mode"`
	Scope string `json:"scope"`

	SourcePath string `json:"sourcePath"`
	OutputPath string `json:"outputPath"`
	TempPath   string `json:"tempPath"`

	// qc: the channel to render (channel scope), and which brightfield
	// depths to add to the default channel set ("", "1".."n" or "all")
	Channel     string `json:"channel,omitempty"`
	Brightfield string `json:"brightfield,omitempty"`

	// cp: which fluorescent channels to blend (empty means all of them),
	// the blend style, an optional single well to render, and a platemap
	// whose compounds label the wells. PlatemapPath is relative to
	// SourcePath.
	Channels           []string `json:"channels,omitempty"`
	Style              string   `json:"style,omitempty"`
	SingleWell         string   `json:"singleWell,omitempty"`
	PlatemapPath       string   `json:"platemapPath,omitempty"`
	WellDetails        bool     `json:"wellDetails,omitempty"`
	DisplayFingerprint bool     `json:"displayFingerprint,omitempty"`

	OutputFormat string `json:"outputFormat"`
	Parallelism  int    `json:"parallelism"`
}

// applyDefaults fills the values a caller can leave out.
func (req *Request) applyDefaults(cfg config.RenderConfig) {
	if len(req.OutputFormat) <= 0 {
		req.OutputFormat = cfg.OutputFormat
	}
	if req.Parallelism <= 0 {
		req.Parallelism = 1
	}
	if req.Mode == ModeCellPaint {
		if len(req.Style) <= 0 {
			req.Style = "classic"
		}
		if len(req.Channels) <= 0 {
			req.Channels = cfg.FluorescentIDs()
		}
	}
}

// validate rejects bad requests before any image input or output starts, so
// an incompatible flag can't waste an hour of rendering first.
func (req Request) validate(cfg config.RenderConfig, scheme wellnaming.Scheme) error {
	switch req.Mode {
	case ModeQC:
		if req.Scope != ScopeChannel && req.Scope != ScopePlate && req.Scope != ScopeRun {
			return IncompatibleScopeError{Reason: fmt.Sprintf("scope %v is not a qc scope, expected channel, plate or run", req.Scope)}
		}
	case ModeCellPaint:
		if req.Scope != ScopePlate && req.Scope != ScopeWells && req.Scope != ScopeSites {
			return IncompatibleScopeError{Reason: fmt.Sprintf("scope %v is not a cell painting scope, expected plate, wells or sites", req.Scope)}
		}
	default:
		return fmt.Errorf("unknown render mode %v, expected %v or %v", req.Mode, ModeQC, ModeCellPaint)
	}

	if len(req.SourcePath) <= 0 {
		return fmt.Errorf("no source path")
	}
	if len(req.OutputPath) <= 0 {
		return fmt.Errorf("no output path")
	}
	if len(req.TempPath) <= 0 {
		return fmt.Errorf("no temp path")
	}

	formatOK := false
	for _, f := range []string{"jpg", "jpeg", "png"} {
		if req.OutputFormat == f {
			formatOK = true
		}
	}
	if !formatOK {
		return fmt.Errorf("output format %v not supported, expected one of jpg, jpeg, png", req.OutputFormat)
	}

	if req.Mode == ModeQC {
		return req.validateQC(cfg)
	}
	return req.validateCellPaint(cfg, scheme)
}

func (req Request) validateQC(cfg config.RenderConfig) error {
	if req.Scope == ScopeChannel {
		if len(req.Channel) <= 0 {
			return fmt.Errorf("channel scope needs a channel")
		}
		if _, ok := cfg.Channel(req.Channel); !ok {
			return fmt.Errorf("unknown channel %v", req.Channel)
		}
		if len(req.Brightfield) > 0 {
			return IncompatibleScopeError{Reason: "channel scope names its channel directly, brightfield selection applies to plate and run scopes"}
		}
	} else {
		if len(req.Channel) > 0 {
			return IncompatibleScopeError{Reason: fmt.Sprintf("%v scope renders the configured channel set, a single channel can't be given", req.Scope)}
		}
		if _, err := brightfieldChannels(cfg, req.Brightfield); err != nil {
			return err
		}
	}

	// Compositing options have no meaning for single channel mosaics
	if len(req.Style) > 0 {
		return IncompatibleScopeError{Reason: "blend styles apply to cp mode"}
	}
	if len(req.Channels) > 0 {
		return IncompatibleScopeError{Reason: "channel lists apply to cp mode, qc takes one channel or the configured set"}
	}
	if len(req.SingleWell) > 0 {
		return IncompatibleScopeError{Reason: "single well selection applies to cp mode"}
	}
	if len(req.PlatemapPath) > 0 {
		return IncompatibleScopeError{Reason: "platemap compounds apply to cp mode"}
	}

	return nil
}

func (req Request) validateCellPaint(cfg config.RenderConfig, scheme wellnaming.Scheme) error {
	if len(req.Channel) > 0 {
		return IncompatibleScopeError{Reason: "cp mode blends the fluorescent palette, use a channel list to restrict it"}
	}
	if len(req.Brightfield) > 0 {
		return IncompatibleScopeError{Reason: "brightfields carry no tint, composites blend fluorescent channels only"}
	}

	fluorescent := cfg.FluorescentIDs()
	for _, id := range req.Channels {
		if !utils.ItemInSlice(id, fluorescent) {
			if _, ok := cfg.Channel(id); ok {
				return fmt.Errorf("channel %v is a brightfield, composites blend fluorescent channels only", id)
			}
			return fmt.Errorf("unknown channel %v", id)
		}
	}

	if len(req.SingleWell) > 0 {
		if req.Scope == ScopePlate {
			return IncompatibleScopeError{Reason: "single well selection needs wells or sites scope"}
		}
		if _, _, err := scheme.ParseWellLabel(req.SingleWell); err != nil {
			return err
		}
	}
	if len(req.PlatemapPath) > 0 && req.Scope == ScopeSites {
		return IncompatibleScopeError{Reason: "platemap compounds label wells, not lone site images"}
	}

	return nil
}

// brightfieldChannels maps the request's brightfield selection to channel
// IDs: "" selects none, "all" every configured brightfield, otherwise the
// 1-based depth in channel table order.
func brightfieldChannels(cfg config.RenderConfig, selection string) ([]string, error) {
	ids := cfg.BrightfieldIDs()
	switch selection {
	case "":
		return nil, nil
	case BrightfieldAll:
		return ids, nil
	}

	depth, err := strconv.Atoi(selection)
	if err != nil || depth < 1 {
		return nil, fmt.Errorf("brightfield selection %v, expected a depth number or %v", selection, BrightfieldAll)
	}
	if depth > len(ids) {
		return nil, fmt.Errorf("brightfield depth %v, only %v configured", depth, len(ids))
	}
	return []string{ids[depth-1]}, nil
}
