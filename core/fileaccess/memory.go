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

package fileaccess

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/plateview/core/core/utils"
)

// In-memory implementation of file access for unit tests. Behaviour matches
// the local file system and S3 implementations so test output can be compared
// across all three.
type MemoryAccess struct {
	mutex sync.Mutex
	roots map[string]map[string][]byte
}

func NewMemoryAccess() *MemoryAccess {
	return &MemoryAccess{roots: map[string]map[string][]byte{}}
}

type notFoundError struct {
	path string
}

func (e notFoundError) Error() string {
	return "object not found: " + e.path
}

func (m *MemoryAccess) ListObjects(root string, prefix string) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	files, ok := m.roots[root]
	if !ok {
		return []string{}, notFoundError{path: root}
	}

	result := []string{}
	for _, path := range utils.GetSortedMapKeys(files) {
		if strings.HasPrefix(path, prefix) {
			result = append(result, path)
		}
	}
	return result, nil
}

func (m *MemoryAccess) ObjectExists(root string, path string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	files, ok := m.roots[root]
	if !ok {
		return false, nil
	}
	_, ok = files[path]
	return ok, nil
}

func (m *MemoryAccess) ReadObject(root string, path string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	files, ok := m.roots[root]
	if !ok {
		return nil, notFoundError{path: root + "/" + path}
	}
	data, ok := files[path]
	if !ok {
		return nil, notFoundError{path: root + "/" + path}
	}

	saved := make([]byte, len(data))
	copy(saved, data)
	return saved, nil
}

func (m *MemoryAccess) WriteObject(root string, path string, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	files, ok := m.roots[root]
	if !ok {
		files = map[string][]byte{}
		m.roots[root] = files
	}

	saved := make([]byte, len(data))
	copy(saved, data)
	files[path] = saved
	return nil
}

func (m *MemoryAccess) ReadJSON(root string, jsonPath string, itemsPtr interface{}, emptyIfNotFound bool) error {
	fileData, err := m.ReadObject(root, jsonPath)

	if err != nil {
		if emptyIfNotFound && m.IsNotFoundError(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(fileData, itemsPtr)
}

func (m *MemoryAccess) WriteJSON(root string, jsonPath string, itemsPtr interface{}) error {
	fileData, err := json.MarshalIndent(itemsPtr, "", utils.PrettyPrintIndentForJSON)
	if err != nil {
		return err
	}

	return m.WriteObject(root, jsonPath, fileData)
}

func (m *MemoryAccess) WriteJSONNoIndent(root string, jsonPath string, itemsPtr interface{}) error {
	fileData, err := json.Marshal(itemsPtr)
	if err != nil {
		return err
	}

	return m.WriteObject(root, jsonPath, fileData)
}

func (m *MemoryAccess) DeleteObject(root string, path string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	files, ok := m.roots[root]
	if !ok {
		return notFoundError{path: root + "/" + path}
	}
	if _, ok := files[path]; !ok {
		return notFoundError{path: root + "/" + path}
	}
	delete(files, path)
	return nil
}

func (m *MemoryAccess) CopyObject(srcRoot string, srcPath string, dstRoot string, dstPath string) error {
	data, err := m.ReadObject(srcRoot, srcPath)
	if err != nil {
		return err
	}
	return m.WriteObject(dstRoot, dstPath, data)
}

func (m *MemoryAccess) EmptyObjects(root string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Root stays around, like emptying an S3 bucket
	m.roots[root] = map[string][]byte{}
	return nil
}

func (m *MemoryAccess) IsNotFoundError(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}
