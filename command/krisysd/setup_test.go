// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
)

const testingDirName = "testing"

func removeDir(dirName string) {
	dirPath, _ := filepath.Abs(dirName)
	_ = os.RemoveAll(dirPath)
}

func setupTestLogger(t *testing.T) {
	removeDir(testingDirName)
	_ = os.Mkdir(testingDirName, 0o700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	if err := logger.Initialise(logging); nil != err {
		t.Fatalf("logger error: %s", err)
	}
}

func teardownTestLogger() {
	logger.Finalise()
	removeDir(testingDirName)
}

func writeFile(t *testing.T, name string, text string) string {
	if err := ioutil.WriteFile(name, []byte(text), 0o600); nil != err {
		t.Fatalf("write %q error: %s", name, err)
	}
	return name
}
