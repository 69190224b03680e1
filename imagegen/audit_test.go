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
	"testing"

	"github.com/plateview/core/core/fileaccess"
)

func TestAuditPlate(t *testing.T) {
	cfg := testConfig()
	fs := fileaccess.NewMemoryAccess()

	// C01 short by 3 tiles, C02 complete, the brightfield never uploaded
	skip := map[string]bool{
		tileName(t, cfg, "BR001", 0, 0, 1, "C01"): true,
		tileName(t, cfg, "BR001", 0, 1, 2, "C01"): true,
		tileName(t, cfg, "BR001", 1, 2, 1, "C01"): true,
	}
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C01", 100, skip)
	seedChannel(t, fs, "BR001", "", "BR001", cfg, "C02", 100, nil)
	fs.WriteObject("BR001", "thumbs.db", []byte("x"))

	eng := testEngine(t, cfg, fs)
	audit, err := eng.AuditPlate("BR001", "", "BR001")
	if err != nil {
		t.Fatalf("AuditPlate: %v", err)
	}

	if audit.Plate != "BR001" {
		t.Errorf("plate = %v", audit.Plate)
	}
	if audit.MicrographCount != 21 {
		t.Errorf("micrographs = %v, want 21", audit.MicrographCount)
	}

	// 6 wells x 2 sites x 3 configured channels
	if audit.ExpectedCount != 36 {
		t.Errorf("expected = %v, want 36", audit.ExpectedCount)
	}
	if audit.MissingCount != 15 {
		t.Errorf("missing = %v, want 15", audit.MissingCount)
	}

	if audit.ChannelCounts["C01"] != 9 || audit.ChannelCounts["C02"] != 12 || audit.ChannelCounts["Z01C06"] != 0 {
		t.Errorf("channel counts = %v", audit.ChannelCounts)
	}
	if len(audit.UnrecognisedFiles) != 1 || audit.UnrecognisedFiles[0] != "thumbs.db" {
		t.Errorf("unrecognised = %v", audit.UnrecognisedFiles)
	}
}

func TestAuditRun(t *testing.T) {
	cfg := testConfig()
	fs := fileaccess.NewMemoryAccess()

	seedChannel(t, fs, "runA", "p1", "p1", cfg, "C01", 100, nil)
	seedChannel(t, fs, "runA", "p2", "p2", cfg, "C01", 100, nil)
	seedChannel(t, fs, "runA", "p2", "p2", cfg, "C02", 100, nil)

	eng := testEngine(t, cfg, fs)
	audits, err := eng.AuditRun("runA")
	if err != nil {
		t.Fatalf("AuditRun: %v", err)
	}

	if len(audits) != 2 || audits[0].Plate != "p1" || audits[1].Plate != "p2" {
		t.Fatalf("unexpected audits: %+v", audits)
	}

	// p1 only has C01: missing C02 and Z01C06 in full
	if audits[0].MissingCount != 24 || audits[1].MissingCount != 12 {
		t.Errorf("missing counts = %v/%v, want 24/12", audits[0].MissingCount, audits[1].MissingCount)
	}
}
