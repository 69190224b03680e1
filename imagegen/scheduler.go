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

import "sync"

// runUnits fans the units out over up to parallelism workers. The unit list
// is split into contiguous chunks and each worker writes only its own slots
// of the pre-sized results slice, so no locking is needed and results come
// back in unit order whatever the worker count. Outputs are therefore
// identical at any parallelism, except the random blend style which draws
// its parameters per request anyway.
func runUnits(units []workUnit, parallelism int, render func(workUnit) UnitResult) []UnitResult {
	results := make([]UnitResult, len(units))
	if len(units) <= 0 {
		return results
	}

	workers := parallelism
	if workers < 1 {
		workers = 1
	}
	if workers > len(units) {
		workers = len(units)
	}
	chunk := (len(units) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(units); start += chunk {
		end := start + chunk
		if end > len(units) {
			end = len(units)
		}

		wg.Add(1)
		go func(start int, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				results[i] = render(units[i])
			}
		}(start, end)
	}
	wg.Wait()

	return results
}
