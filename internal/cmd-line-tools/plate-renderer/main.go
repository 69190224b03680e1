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

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/plateview/core/core/awsutil"
	"github.com/plateview/core/core/fileaccess"
	"github.com/plateview/core/core/logger"
	"github.com/plateview/core/core/timestamper"
	"github.com/plateview/core/core/utils"
	"github.com/plateview/core/imagegen"
	"github.com/plateview/core/imagegen/config"
)

func main() {
	fmt.Println("==============================")
	fmt.Println("=  PLATEVIEW plate renderer  =")
	fmt.Println("==============================")

	var argMode = flag.String("mode", "qc", "Render mode: qc or cp")
	var argScope = flag.String("scope", "plate", "qc: channel, plate or run. cp: plate, wells or sites")
	var argSource = flag.String("source", "", "Micrograph source: a directory, or s3://bucket")
	var argOutput = flag.String("output", "", "Output destination: a directory, or s3://bucket")
	var argTemp = flag.String("temp", "", "Local staging directory, defaults under the system temp dir")
	var argConfig = flag.String("config", "", "Render config JSON, defaults apply where it's silent")
	var argChannel = flag.String("channel", "", "qc channel scope: the channel to render")
	var argBrightfield = flag.String("brightfield", "", "qc plate/run scopes: brightfield depths to add, a depth number or all")
	var argChannels = flag.String("channels", "", "cp: comma separated channels to blend, default all fluorescents")
	var argStyle = flag.String("style", "", "cp: blend style name, classic, random or a configured style")
	var argWell = flag.String("well", "", "cp wells/sites scopes: render just this well, eg B03")
	var argPlatemap = flag.String("platemap", "", "cp: platemap file under the source root, compounds label the wells")
	var argWellDetails = flag.Bool("well-details", false, "cp: draw well labels and platemap compounds")
	var argFingerprint = flag.Bool("fingerprint", false, "cp: draw the blend parameters on each site")
	var argFormat = flag.String("format", "", "Output image format: jpg or png, default from config")
	var argJobs = flag.Int("jobs", 1, "Units to render in parallel")
	var argRegion = flag.String("region", "", "AWS region for S3 sources, default AWS_DEFAULT_REGION")
	var argLogFile = flag.String("log-file", "", "Log file path, default plateview.log under the staging directory")

	flag.Parse()

	if len(*argSource) <= 0 {
		log.Fatalln("source not set")
	}
	if len(*argOutput) <= 0 {
		log.Fatalln("output not set")
	}

	sourceRoot, sourceRemote := parseRoot(*argSource)
	outputRoot, outputRemote := parseRoot(*argOutput)
	if sourceRemote != outputRemote {
		log.Fatalln("source and output must both be local, or both S3")
	}

	cfg, err := config.Load(&fileaccess.FSAccess{}, "", *argConfig)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tempPath := *argTemp
	if len(tempPath) <= 0 {
		tempPath = filepath.Join(os.TempDir(), "plateview-renders")
	}
	logPath := *argLogFile
	if len(logPath) <= 0 {
		logPath = filepath.Join(tempPath, "plateview.log")
	}

	consoleLog := &logger.StdOutLogger{}
	consoleLog.SetLogLevel(cfg.LogLevel)

	fileLog, err := logger.NewFileLogger(logPath, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer fileLog.Close()

	var ilog logger.ILogger = &logger.MultiLogger{Loggers: []logger.ILogger{consoleLog, fileLog}}

	var fs fileaccess.FileAccess = &fileaccess.FSAccess{}
	if sourceRemote {
		svc, err := awsutil.ConnectS3(*argRegion)
		if err != nil {
			log.Fatalf("Failed to connect to S3: %v", err)
		}
		fs = fileaccess.MakeS3Access(svc)
	}

	if err := os.MkdirAll(tempPath, 0777); err != nil {
		log.Fatalf("Failed to create staging directory %v: %v", tempPath, err)
	}
	if avail, err := utils.GetDiskAvailableBytes(tempPath); err == nil {
		ilog.Infof("Staging in %v, %v MB free", tempPath, avail/(1024*1024))
	}

	eng, err := imagegen.NewEngine(cfg, fs, ilog, &timestamper.UnixTimeNowStamper{})
	if err != nil {
		log.Fatalf("Bad render config: %v", err)
	}

	summary, err := eng.Render(imagegen.Request{
		Mode:               *argMode,
		Scope:              *argScope,
		SourcePath:         sourceRoot,
		OutputPath:         outputRoot,
		TempPath:           tempPath,
		Channel:            *argChannel,
		Brightfield:        *argBrightfield,
		Channels:           splitChannels(*argChannels),
		Style:              *argStyle,
		SingleWell:         *argWell,
		PlatemapPath:       *argPlatemap,
		WellDetails:        *argWellDetails,
		DisplayFingerprint: *argFingerprint,
		OutputFormat:       *argFormat,
		Parallelism:        *argJobs,
	})

	if err != nil {
		ilog.Errorf("Render failed: %v", err)
		os.Exit(1)
	}
	if summary.FailedCount > 0 {
		// The per-unit errors are already logged, and the summary JSON in the
		// output root has the full detail
		os.Exit(1)
	}

	ilog.Infof("Wrote %v outputs to %v", summary.OutputCount, *argOutput)
}

// parseRoot - a plain value is a local directory, s3://name is a bucket.
// Engine roots are whole buckets, so a deeper S3 url is refused rather than
// silently mangled.
func parseRoot(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "s3://") {
		return arg, false
	}

	bucket := strings.TrimPrefix(arg, "s3://")
	if len(bucket) <= 0 || strings.Contains(bucket, "/") {
		log.Fatalf("S3 roots are buckets, got: %v", arg)
	}
	return bucket, true
}

func splitChannels(arg string) []string {
	result := []string{}
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		if len(part) > 0 {
			result = append(result, part)
		}
	}
	return result
}
