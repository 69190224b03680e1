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
	"encoding/json"
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

// Checks an upload against the configured plate geometry before expensive
// rendering starts: how many micrographs each channel has versus how many the
// grid expects, and which files the naming scheme can't place.
func main() {
	fmt.Println("============================")
	fmt.Println("=  PLATEVIEW source audit  =")
	fmt.Println("============================")

	var argSource = flag.String("source", "", "Micrograph source: a directory, or s3://bucket")
	var argScope = flag.String("scope", "plate", "plate audits the source as one plate, run audits each plate folder in it")
	var argConfig = flag.String("config", "", "Render config JSON, defaults apply where it's silent")
	var argRegion = flag.String("region", "", "AWS region for S3 sources, default AWS_DEFAULT_REGION")
	var argJSON = flag.Bool("json", false, "Print the audit as JSON")

	flag.Parse()

	if len(*argSource) <= 0 {
		log.Fatalln("source not set")
	}

	cfg, err := config.Load(&fileaccess.FSAccess{}, "", *argConfig)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var fs fileaccess.FileAccess = &fileaccess.FSAccess{}
	sourceRoot := *argSource
	plateName := filepath.Base(sourceRoot)

	if strings.HasPrefix(*argSource, "s3://") {
		bucket := strings.TrimPrefix(*argSource, "s3://")
		if len(bucket) <= 0 || strings.Contains(bucket, "/") {
			log.Fatalf("S3 roots are buckets, got: %v", *argSource)
		}

		svc, err := awsutil.ConnectS3(*argRegion)
		if err != nil {
			log.Fatalf("Failed to connect to S3: %v", err)
		}
		fs = fileaccess.MakeS3Access(svc)
		sourceRoot = bucket
		plateName = bucket
	}

	eng, err := imagegen.NewEngine(cfg, fs, &logger.StdErrLogger{}, &timestamper.UnixTimeNowStamper{})
	if err != nil {
		log.Fatalf("Bad render config: %v", err)
	}

	audits := []imagegen.SourceAudit{}
	switch *argScope {
	case "plate":
		audit, err := eng.AuditPlate(sourceRoot, "", plateName)
		if err != nil {
			log.Fatalf("Audit failed: %v", err)
		}
		audits = append(audits, audit)
	case "run":
		audits, err = eng.AuditRun(sourceRoot)
		if err != nil {
			log.Fatalf("Audit failed: %v", err)
		}
	default:
		log.Fatalf("Unknown scope: %v", *argScope)
	}

	if *argJSON {
		data, err := json.MarshalIndent(audits, "", utils.PrettyPrintIndentForJSON)
		if err != nil {
			log.Fatalf("Failed to form JSON: %v", err)
		}
		fmt.Println(string(data))
	} else {
		for _, audit := range audits {
			printAudit(cfg, audit)
		}
	}

	for _, audit := range audits {
		if audit.MissingCount > 0 {
			os.Exit(1)
		}
	}
}

func printAudit(cfg config.RenderConfig, audit imagegen.SourceAudit) {
	fmt.Printf("\nPlate %v: %v micrographs, expected %v, missing %v\n", audit.Plate, audit.MicrographCount, audit.ExpectedCount, audit.MissingCount)

	// Configured channels in table order, then anything unexpected the
	// naming scheme still recognised
	printed := map[string]bool{}
	for _, ch := range cfg.Channels {
		fmt.Printf("  %v: %v\n", ch.ID, audit.ChannelCounts[ch.ID])
		printed[ch.ID] = true
	}
	for _, id := range utils.GetSortedMapKeys(audit.ChannelCounts) {
		if !printed[id] {
			fmt.Printf("  %v: %v (not in config)\n", id, audit.ChannelCounts[id])
		}
	}

	if len(audit.UnrecognisedFiles) > 0 {
		fmt.Printf("  %v unrecognised files:\n", len(audit.UnrecognisedFiles))
		for _, f := range audit.UnrecognisedFiles {
			fmt.Printf("    %v\n", f)
		}
	}
}
