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
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/plateview/core/core/utils"
	"github.com/plateview/core/core/wellnaming"
	"github.com/plateview/core/imagegen/internal/tilesource"
)

// plateRef names one plate folder under the source root. Path is relative
// to the root and empty when the root itself is the plate folder.
type plateRef struct {
	Name string
	Path string
}

// workUnit - one schedulable piece of a request, always producing exactly
// one output image. Title is the plate name (the run name for run scope)
// and prefixes the unit's output file. QC run units span every plate of the
// run, everything else renders from a single plate.
type workUnit struct {
	ID    string
	Title string

	Plates  []plateRef
	Channel string

	WellRow int
	WellCol int
	Site    int
}

type wellCoord struct {
	row int
	col int
}

// buildUnits expands a request into its work units, one per output image:
// qc channel scope gives one unit, qc plate and run scopes one per rendered
// channel, cp plate scope one for the whole plate, cp wells one per well and
// cp sites one per well and site.
func (e *Engine) buildUnits(req Request) ([]workUnit, error) {
	units := []workUnit{}

	switch req.Mode {
	case ModeQC:
		channels := []string{req.Channel}
		if req.Scope != ScopeChannel {
			channels = append([]string{}, e.cfg.DefaultRenderChannels...)
			brightfields, err := brightfieldChannels(e.cfg, req.Brightfield)
			if err != nil {
				return nil, err
			}
			channels = append(channels, brightfields...)
		}

		if req.Scope == ScopeRun {
			runName := plateNameFromPath(req.SourcePath)
			plates, err := e.discoverPlates(req.SourcePath)
			if err != nil {
				return nil, err
			}
			for _, ch := range channels {
				units = append(units, workUnit{
					ID:      runName + "-" + ch,
					Title:   runName,
					Plates:  plates,
					Channel: ch,
				})
			}
		} else {
			plate := plateRef{Name: plateNameFromPath(req.SourcePath)}
			for _, ch := range channels {
				units = append(units, workUnit{
					ID:      plate.Name + "-" + ch,
					Title:   plate.Name,
					Plates:  []plateRef{plate},
					Channel: ch,
				})
			}
		}

	case ModeCellPaint:
		plate := plateRef{Name: plateNameFromPath(req.SourcePath)}

		if req.Scope == ScopePlate {
			units = append(units, workUnit{
				ID:     plate.Name + "-cellpaint",
				Title:  plate.Name,
				Plates: []plateRef{plate},
			})
			break
		}

		wells, err := e.requestWells(req)
		if err != nil {
			return nil, err
		}
		for _, w := range wells {
			label := e.scheme.WellLabel(w.row, w.col)
			if req.Scope == ScopeWells {
				units = append(units, workUnit{
					ID:      plate.Name + "-" + label,
					Title:   plate.Name,
					Plates:  []plateRef{plate},
					WellRow: w.row,
					WellCol: w.col,
				})
				continue
			}
			for site := 1; site <= e.cfg.GridSpec().SiteCount(); site++ {
				units = append(units, workUnit{
					ID:      fmt.Sprintf("%v-%v-s%v", plate.Name, label, site),
					Title:   plate.Name,
					Plates:  []plateRef{plate},
					WellRow: w.row,
					WellCol: w.col,
					Site:    site,
				})
			}
		}
	}

	return units, nil
}

// requestWells is the well grid in row-major order, narrowed to one well
// when the request asks for it.
func (e *Engine) requestWells(req Request) ([]wellCoord, error) {
	if len(req.SingleWell) > 0 {
		row, col, err := e.scheme.ParseWellLabel(req.SingleWell)
		if err != nil {
			return nil, err
		}
		if row >= e.cfg.WellRows || col >= e.cfg.WellCols {
			return nil, wellnaming.InvalidWellNameError{
				Label:  req.SingleWell,
				Reason: fmt.Sprintf("outside the %vx%v well grid", e.cfg.WellRows, e.cfg.WellCols),
			}
		}
		return []wellCoord{{row: row, col: col}}, nil
	}

	wells := []wellCoord{}
	for row := 0; row < e.cfg.WellRows; row++ {
		for col := 0; col < e.cfg.WellCols; col++ {
			wells = append(wells, wellCoord{row: row, col: col})
		}
	}
	return wells, nil
}

// discoverPlates lists the run folder for plate subfolders: any first level
// folder holding at least one file the naming scheme recognises counts.
// Sorted by name so run mosaics arrange their plates deterministically.
func (e *Engine) discoverPlates(root string) ([]plateRef, error) {
	paths, err := e.fs.ListObjects(root, "")
	if err != nil {
		return nil, tilesource.SourceAccessError{Path: root, Err: err}
	}

	found := map[string]bool{}
	for _, p := range paths {
		slash := strings.Index(p, "/")
		if slash <= 0 {
			continue
		}
		folder := p[0:slash]
		if found[folder] {
			continue
		}
		if _, err := e.scheme.ParseFileName(p); err == nil {
			found[folder] = true
		}
	}

	if len(found) <= 0 {
		return nil, tilesource.SourceAccessError{Path: root, Err: errors.New("no plate folders containing recognisable micrographs")}
	}

	plates := []plateRef{}
	for _, name := range utils.GetSortedMapKeys(found) {
		plates = append(plates, plateRef{Name: name, Path: name})
	}
	return plates, nil
}

// plateNameFromPath takes the plate (or run) display name from the last
// element of the source path, the folder name in practice. The name prefixes
// output files, so characters that can't appear in one are dropped.
func plateNameFromPath(sourcePath string) string {
	name := path.Base(strings.TrimRight(filepath.ToSlash(sourcePath), "/"))
	name = strings.TrimSpace(utils.MakeSaveableFileName(name))
	if name == "." || len(name) <= 0 {
		return "plate"
	}
	return name
}
