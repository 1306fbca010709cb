// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/fixtures"
)

const testingDirName = "testing"

var testAuthority *fixtures.Authority

func removeDir(dirName string) {
	dirPath, _ := filepath.Abs(dirName)
	_ = os.RemoveAll(dirPath)
}

func setupTestLogger(t *testing.T) *fixtures.Authority {
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

	if nil == testAuthority {
		a, err := fixtures.NewAuthority("block-test")
		if nil != err {
			t.Fatalf("authority error: %s", err)
		}
		testAuthority = a
	}
	return testAuthority
}

func teardownTestLogger() {
	logger.Finalise()
	removeDir(testingDirName)
}
