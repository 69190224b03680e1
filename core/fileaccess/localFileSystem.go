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
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/plateview/core/core/utils"
)

// Implementation of file access using local file system
type FSAccess struct {
}

// ListObjects - walks files under rootPath. Like S3, the prefix can end part
// way through a file name. A missing rootPath is an error, a prefix that
// matches nothing is just an empty listing.
func (fs *FSAccess) ListObjects(rootPath string, prefix string) ([]string, error) {
	result := []string{}

	rootOnly := path.Join(rootPath) // Using path.Join to make it match the fullPath cleans off ./ for example
	if _, err := os.Stat(rootOnly); err != nil {
		return result, err
	}

	// Walk the directory part of the prefix only, the rest is string-matched
	walkPath := fs.filePath(rootPath, prefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, "/") {
		if info, err := os.Stat(walkPath); err != nil || !info.IsDir() {
			walkPath = filepath.Dir(walkPath)
		}
	}

	err := filepath.Walk(walkPath, func(pathFound string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() {
			// Note pathFound contains the root directory, so we chop it off
			toSave := pathFound
			if strings.HasPrefix(toSave, rootOnly) {
				toSave = toSave[len(rootOnly)+1:]
			}
			if strings.HasPrefix(toSave, prefix) {
				result = append(result, toSave)
			}
		}
		return nil
	})

	return result, err
}

func (fs *FSAccess) ObjectExists(rootPath string, filePath string) (bool, error) {
	fullPath := fs.filePath(rootPath, filePath)
	_, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fs *FSAccess) ReadObject(rootPath string, path string) ([]byte, error) {
	fullPath := fs.filePath(rootPath, path)
	return os.ReadFile(fullPath)
}

// WriteObject - writes to a temp file next to the destination then renames it
// into place, so an interrupted run never leaves a partial file under the
// final name
func (fs *FSAccess) WriteObject(rootPath string, path string, data []byte) error {
	fullPath := fs.filePath(rootPath, path)

	// Ensure any subdirs in between are created
	createPath := filepath.Dir(fullPath)
	err := os.MkdirAll(createPath, 0777)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(createPath, filepath.Base(fullPath)+".partial-*")
	if err != nil {
		return err
	}

	_, err = tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpFile.Name())
		return err
	}

	os.Chmod(tmpFile.Name(), 0777)
	return os.Rename(tmpFile.Name(), fullPath)
}

func (fs *FSAccess) ReadJSON(rootPath string, jsonPath string, itemsPtr interface{}, emptyIfNotFound bool) error {
	fileData, err := fs.ReadObject(rootPath, jsonPath)

	// If we got an error, and it's a not-found, and we're told to ignore these and return empty data, then do so
	if err != nil {
		if emptyIfNotFound && fs.IsNotFoundError(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(fileData, itemsPtr)
}

func (fs *FSAccess) WriteJSON(rootPath string, jsonPath string, itemsPtr interface{}) error {
	fileData, err := json.MarshalIndent(itemsPtr, "", utils.PrettyPrintIndentForJSON)
	if err != nil {
		return err
	}

	return fs.WriteObject(rootPath, jsonPath, fileData)
}

func (fs *FSAccess) WriteJSONNoIndent(rootPath string, jsonPath string, itemsPtr interface{}) error {
	fileData, err := json.Marshal(itemsPtr)
	if err != nil {
		return err
	}

	return fs.WriteObject(rootPath, jsonPath, fileData)
}

func (fs *FSAccess) DeleteObject(rootPath string, path string) error {
	fullPath := fs.filePath(rootPath, path)
	return os.Remove(fullPath)
}

func (fs *FSAccess) CopyObject(srcRootPath string, srcPath string, dstRootPath string, dstPath string) error {
	srcFullPath := fs.filePath(srcRootPath, srcPath)

	fin, err := os.Open(srcFullPath)
	if err != nil {
		return err
	}
	defer fin.Close()

	dstFullPath := fs.filePath(dstRootPath, dstPath)
	err = os.MkdirAll(filepath.Dir(dstFullPath), 0777)
	if err != nil {
		return err
	}

	fout, err := os.Create(dstFullPath)
	if err != nil {
		return err
	}
	defer fout.Close()

	_, err = io.Copy(fout, fin)
	return err
}

func (fs *FSAccess) EmptyObjects(rootPath string) error {
	// Removes everything under the root dir but not the dir itself, to match
	// the AWS implementation where you empty the bucket but it's still there
	d, err := os.Open(rootPath)
	if err != nil {
		return err
	}
	defer d.Close()
	names, err := d.Readdirnames(-1)
	if err != nil {
		return err
	}
	for _, name := range names {
		err = os.RemoveAll(filepath.Join(rootPath, name))
		if err != nil {
			return err
		}
	}
	return nil
}

func (fs *FSAccess) IsNotFoundError(err error) bool {
	return os.IsNotExist(err)
}

func (fs *FSAccess) filePath(rootPath string, filePath string) string {
	return path.Join(rootPath, filePath)
}
