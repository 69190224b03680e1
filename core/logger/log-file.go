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

package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxLogFileBytes = 2 * 1024 * 1024
const logFileBackups = 2

// FileLogger - writes to a local log file, rotating it once it grows past
// maxLogFileBytes. Rotation renames the file to <path>.1, shuffling older
// backups up to <path>.N and dropping the oldest.
type FileLogger struct {
	mutex    sync.Mutex
	path     string
	logLevel LogLevel
	file     *os.File
	written  int64
}

func NewFileLogger(path string, level LogLevel) (*FileLogger, error) {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}

	written := int64(0)
	if info, err := file.Stat(); err == nil {
		written = info.Size()
	}

	return &FileLogger{path: path, logLevel: level, file: file, written: written}, nil
}

func (l *FileLogger) Printf(level LogLevel, format string, a ...interface{}) {
	if l.logLevel > level {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file == nil {
		return
	}

	txt := time.Now().Format("2006/01/02 15:04:05") + " " + logLevelPrefix[level] + ": " + fmt.Sprintf(format, a...) + "\n"

	n, err := l.file.WriteString(txt)
	if err != nil {
		// Don't lose the line entirely
		log.Println(txt)
		return
	}

	l.written += int64(n)
	if l.written >= maxLogFileBytes {
		l.rotate()
	}
}
func (l *FileLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *FileLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *FileLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

func (l *FileLogger) SetLogLevel(level LogLevel) {
	l.logLevel = level
}
func (l *FileLogger) GetLogLevel() LogLevel {
	return l.logLevel
}

func (l *FileLogger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Assumes mutex is held
func (l *FileLogger) rotate() {
	l.file.Close()
	l.file = nil

	// Shuffle backups up: <path>.1 becomes <path>.2 etc, oldest falls off
	os.Remove(fmt.Sprintf("%v.%v", l.path, logFileBackups))
	for i := logFileBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%v.%v", l.path, i), fmt.Sprintf("%v.%v", l.path, i+1))
	}
	os.Rename(l.path, l.path+".1")

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		// Logging continues to stdout only
		log.Printf("Failed to reopen log file %v: %v", l.path, err)
		return
	}

	l.file = file
	l.written = 0
}
