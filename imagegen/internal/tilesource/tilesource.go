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

// Finds and loads the per-site micrographs a render needs. A plate folder is
// scanned once into an index, then tiles are looked up per well/site/channel.
// Individual images that are missing or unreadable degrade to placeholder
// tiles and are counted, never failed on. Only an unreachable source root is
// an error.
package tilesource

import "fmt"

// SourceAccessError - the source root itself could not be scanned. Unlike a
// missing tile this aborts the unit, there is nothing to render from.
type SourceAccessError struct {
	Path string
	Err  error
}

func (e SourceAccessError) Error() string {
	return fmt.Sprintf("cannot access image source %v: %v", e.Path, e.Err)
}

// IsSourceAccessError - checks if error returned is a SourceAccessError
func IsSourceAccessError(err error) bool {
	_, ok := err.(SourceAccessError)
	return ok
}
