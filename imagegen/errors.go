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

import "fmt"

// StyleNotFoundError - a blend style name that is neither one of the built in
// styles nor defined in configuration
type StyleNotFoundError struct {
	Name string
}

func (e StyleNotFoundError) Error() string {
	return fmt.Sprintf("blend style \"%v\" not found", e.Name)
}

func IsStyleNotFoundError(err error) bool {
	_, ok := err.(StyleNotFoundError)
	return ok
}

// IncompatibleScopeError - request options that contradict the requested
// scope or mode. Raised before any image input or output starts.
type IncompatibleScopeError struct {
	Reason string
}

func (e IncompatibleScopeError) Error() string {
	return fmt.Sprintf("incompatible scope: %v", e.Reason)
}

func IsIncompatibleScopeError(err error) bool {
	_, ok := err.(IncompatibleScopeError)
	return ok
}
