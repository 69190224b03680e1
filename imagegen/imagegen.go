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

// Package imagegen renders whole plate micrograph overviews: single channel
// QC mosaics that make acquisition faults visible at a glance, and cell
// painting composites that blend the fluorescent channels of each site into
// one colour image. Sources and outputs go through fileaccess, so plates
// can be rendered straight out of S3 buckets or local folders alike.
package imagegen

import (
	"fmt"

	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/logger"
	"github.com/plateview/core/core/timestamper"
	"github.com/plateview/core/core/wellnaming"
	"github.com/plateview/core/imagegen/config"
	"github.com/plateview/core/imagegen/internal/cellpaint"
	"github.com/plateview/core/imagegen/internal/tilesource"
	"github.com/plateview/core/imagegen/platemap"
)

// Engine renders requests against one configuration. Safe to share across
// requests; each request gets its own plan and per-unit loaders.
type Engine struct {
	cfg    config.RenderConfig
	scheme wellnaming.Scheme
	fs     fileaccess.FileAccess
	tempFS fileaccess.FileAccess
	log    logger.ILogger
	ts     timestamper.ITimeStamper
}

// NewEngine validates the configuration up front so requests can't fail on
// config problems halfway through a plate. fs covers sources and outputs;
// temp staging always goes to local disk.
func NewEngine(cfg config.RenderConfig, fs fileaccess.FileAccess, log logger.ILogger, ts timestamper.ITimeStamper) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scheme, err := wellnaming.GetScheme(cfg.NamingScheme)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:    cfg,
		scheme: scheme,
		fs:     fs,
		tempFS: &fileaccess.FSAccess{},
		log:    log,
		ts:     ts,
	}, nil
}

// renderPlan is everything resolved up front that units then share read
// only: the filled-in request, blend parameters, platemap compounds and one
// source index per plate.
type renderPlan struct {
	req       Request
	style     cellpaint.Style
	palette   cellpaint.Palette
	compounds platemap.Platemap
	indexes   map[string]*tilesource.Index
	units     []workUnit
}

// Render runs one request end to end: writes the output images plus
// render-summary.json into the output root. A unit failure is recorded in
// the summary rather than aborting sibling units. The returned error covers
// request level problems, and the unit's own failure when the request came
// down to a single unit.
func (e *Engine) Render(req Request) (RunSummary, error) {
	startSec := e.ts.GetTimeNowSec()

	plan, err := e.makePlan(req)
	if err != nil {
		return RunSummary{}, err
	}
	req = plan.req

	e.log.Infof("Rendering %v/%v from %v: %v units at parallelism %v",
		req.Mode, req.Scope, req.SourcePath, len(plan.units), req.Parallelism)

	results := runUnits(plan.units, req.Parallelism, func(unit workUnit) UnitResult {
		return e.executeUnit(plan, unit)
	})

	summary := makeSummary(req, results, startSec, e.ts.GetTimeNowSec())
	summary.log(e.log)

	if err := e.fs.WriteJSON(req.OutputPath, SummaryFileName, summary); err != nil {
		return summary, fmt.Errorf("failed to write %v: %v", SummaryFileName, err)
	}

	if len(results) == 1 && summary.FailedCount > 0 {
		return summary, fmt.Errorf("unit %v failed: %v", results[0].Unit, results[0].Error)
	}
	return summary, nil
}

// makePlan validates the request and resolves everything that must be
// settled before rendering starts: blend style (random draws its parameters
// here, once, so all units of the request blend identically), platemap
// compounds, the work units and a source index per plate.
func (e *Engine) makePlan(req Request) (renderPlan, error) {
	req.applyDefaults(e.cfg)
	if err := req.validate(e.cfg, e.scheme); err != nil {
		return renderPlan{}, err
	}

	plan := renderPlan{req: req}

	if req.Mode == ModeCellPaint {
		style, err := e.resolveStyle(req.Style)
		if err != nil {
			return renderPlan{}, err
		}
		plan.style = style
		plan.palette = makePalette(e.cfg)

		if len(req.PlatemapPath) > 0 {
			compounds, ignored, err := platemap.Load(e.fs, req.SourcePath, req.PlatemapPath,
				e.cfg.PlatemapWellColumn, e.cfg.PlatemapCompoundColumn, e.scheme)
			if err != nil {
				return renderPlan{}, err
			}
			if ignored > 0 {
				e.log.Infof("Platemap %v: ignored %v rows with missing or unparseable well labels", req.PlatemapPath, ignored)
			}
			plan.compounds = compounds
		}
	}

	units, err := e.buildUnits(req)
	if err != nil {
		return renderPlan{}, err
	}
	plan.units = units

	plan.indexes = map[string]*tilesource.Index{}
	for _, unit := range units {
		for _, plate := range unit.Plates {
			if _, done := plan.indexes[plate.Path]; done {
				continue
			}
			index, err := tilesource.BuildIndex(e.fs, req.SourcePath, plate.Path, e.scheme)
			if err != nil {
				return renderPlan{}, err
			}
			plan.indexes[plate.Path] = index
			e.log.Debugf("Indexed plate %v: %v micrographs, %v unrecognised files",
				plate.Name, len(index.Files), len(index.Unrecognised))
		}
	}

	return plan, nil
}

// executeUnit dispatches one unit to its renderer. A crash in a unit
// becomes that unit's failure and the rest of the render carries on.
func (e *Engine) executeUnit(plan renderPlan, unit workUnit) (result UnitResult) {
	defer func() {
		if r := recover(); r != nil {
			result = UnitResult{Unit: unit.ID, Status: StatusFailed, Error: fmt.Sprintf("%v", r)}
		}
	}()

	e.log.Debugf("Rendering unit %v", unit.ID)

	if plan.req.Mode == ModeQC {
		if plan.req.Scope == ScopeRun {
			return e.renderQCRunUnit(plan, unit)
		}
		return e.renderQCPlateUnit(plan, unit)
	}

	switch plan.req.Scope {
	case ScopePlate:
		return e.renderCPPlateUnit(plan, unit)
	case ScopeSites:
		return e.renderCPSiteUnit(plan, unit)
	}
	return e.renderCPWellUnit(plan, unit)
}
