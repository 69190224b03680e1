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
	"strings"
	"testing"

	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/wellnaming"
	"github.com/plateview/core/imagegen/config"
)

func TestRenderFailsBeforeIO(t *testing.T) {
	type check func(t *testing.T, err error)

	isScope := func(t *testing.T, err error) {
		if !IsIncompatibleScopeError(err) {
			t.Errorf("expected IncompatibleScopeError, got %T: %v", err, err)
		}
	}
	isStyle := func(t *testing.T, err error) {
		if !IsStyleNotFoundError(err) {
			t.Errorf("expected StyleNotFoundError, got %T: %v", err, err)
		}
	}
	isWellName := func(t *testing.T, err error) {
		if !wellnaming.IsInvalidWellNameError(err) {
			t.Errorf("expected InvalidWellNameError, got %T: %v", err, err)
		}
	}

	tests := []struct {
		name    string
		req     Request
		wantErr string
		check   check
	}{
		{
			name:    "qc rejects cp scopes",
			req:     Request{Mode: ModeQC, Scope: ScopeWells},
			wantErr: "not a qc scope",
			check:   isScope,
		},
		{
			name:    "cp rejects qc scopes",
			req:     Request{Mode: ModeCellPaint, Scope: ScopeRun},
			wantErr: "not a cell painting scope",
			check:   isScope,
		},
		{
			name:    "unknown mode",
			req:     Request{Mode: "mosaic", Scope: ScopePlate},
			wantErr: "unknown render mode",
		},
		{
			name:    "channel scope needs a channel",
			req:     Request{Mode: ModeQC, Scope: ScopeChannel},
			wantErr: "channel scope needs a channel",
		},
		{
			name:    "channel scope rejects unknown channels",
			req:     Request{Mode: ModeQC, Scope: ScopeChannel, Channel: "C99"},
			wantErr: "unknown channel C99",
		},
		{
			name:    "plate scope rejects a single channel",
			req:     Request{Mode: ModeQC, Scope: ScopePlate, Channel: "C01"},
			wantErr: "a single channel can't be given",
			check:   isScope,
		},
		{
			name:    "brightfield depth out of range",
			req:     Request{Mode: ModeQC, Scope: ScopePlate, Brightfield: "9"},
			wantErr: "brightfield depth 9, only 1 configured",
		},
		{
			name:    "qc rejects blend styles",
			req:     Request{Mode: ModeQC, Scope: ScopePlate, Style: "classic"},
			wantErr: "blend styles apply to cp mode",
			check:   isScope,
		},
		{
			name:    "cp rejects brightfield selection",
			req:     Request{Mode: ModeCellPaint, Scope: ScopePlate, Brightfield: "all"},
			wantErr: "composites blend fluorescent channels only",
			check:   isScope,
		},
		{
			name:    "cp rejects brightfields in the channel list",
			req:     Request{Mode: ModeCellPaint, Scope: ScopePlate, Channels: []string{"Z01C06"}},
			wantErr: "channel Z01C06 is a brightfield",
		},
		{
			name:    "cp rejects unknown channels",
			req:     Request{Mode: ModeCellPaint, Scope: ScopePlate, Channels: []string{"C99"}},
			wantErr: "unknown channel C99",
		},
		{
			name:    "plate scope rejects a single well",
			req:     Request{Mode: ModeCellPaint, Scope: ScopePlate, SingleWell: "B03"},
			wantErr: "single well selection needs wells or sites scope",
			check:   isScope,
		},
		{
			name:    "sites scope rejects platemaps",
			req:     Request{Mode: ModeCellPaint, Scope: ScopeSites, SingleWell: "A01", PlatemapPath: "maps/platemap.txt"},
			wantErr: "platemap compounds label wells",
			check:   isScope,
		},
		{
			name:    "malformed well label",
			req:     Request{Mode: ModeCellPaint, Scope: ScopeWells, SingleWell: "5A"},
			wantErr: "invalid well name",
			check:   isWellName,
		},
		{
			name:    "well label outside the plate",
			req:     Request{Mode: ModeCellPaint, Scope: ScopeWells, SingleWell: "Z09"},
			wantErr: "outside the 2x3 well grid",
			check:   isWellName,
		},
		{
			name:    "unknown blend style",
			req:     Request{Mode: ModeCellPaint, Scope: ScopePlate, Style: "nope"},
			wantErr: `blend style "nope" not found`,
			check:   isStyle,
		},
		{
			name:    "unsupported output format",
			req:     Request{Mode: ModeQC, Scope: ScopeChannel, Channel: "C01", OutputFormat: "bmp"},
			wantErr: "output format bmp not supported",
		},
	}

	cfg := testConfig()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fs := fileaccess.NewMemoryAccess()
			eng := testEngine(t, cfg, fs)

			req := test.req
			req.SourcePath = "BR001"
			req.OutputPath = "renders"
			req.TempPath = t.TempDir()

			summary, err := eng.Render(req)
			if err == nil {
				t.Fatalf("expected error, got summary %+v", summary)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("error %q does not contain %q", err.Error(), test.wantErr)
			}
			if test.check != nil {
				test.check(t, err)
			}
			if len(summary.Units) != 0 {
				t.Errorf("failed request still produced unit results: %+v", summary.Units)
			}

			// A request that never started rendering writes no summary
			exists, err := fs.ObjectExists("renders", SummaryFileName)
			if err != nil {
				t.Fatalf("ObjectExists: %v", err)
			}
			if exists {
				t.Errorf("summary written for a rejected request")
			}
		})
	}
}

func TestBrightfieldChannels(t *testing.T) {
	cfg := config.DefaultConfig()

	ids, err := brightfieldChannels(cfg, "")
	if err != nil || len(ids) != 0 {
		t.Errorf("empty selection: got %v, %v", ids, err)
	}

	ids, err = brightfieldChannels(cfg, BrightfieldAll)
	if err != nil || len(ids) != 3 {
		t.Errorf("all: got %v, %v", ids, err)
	}

	ids, err = brightfieldChannels(cfg, "2")
	if err != nil || len(ids) != 1 || ids[0] != "Z02C06" {
		t.Errorf("depth 2: got %v, %v", ids, err)
	}

	if _, err = brightfieldChannels(cfg, "4"); err == nil {
		t.Errorf("depth 4 accepted with 3 brightfields configured")
	}
	if _, err = brightfieldChannels(cfg, "x"); err == nil {
		t.Errorf("non-numeric selection accepted")
	}
}
