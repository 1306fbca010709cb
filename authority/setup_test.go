// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority_test

import (
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
)

const testingDirName = "testing"

func removeDir(dirName string) {
	dirPath, _ := filepath.Abs(dirName)
	_ = os.RemoveAll(dirPath)
}

func setupTestLogger() {
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
	_ = logger.Initialise(logging)
}

func teardownTestLogger() {
	logger.Finalise()
	removeDir(testingDirName)
}
