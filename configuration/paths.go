// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/krisys/krisys/util"
)

// DataDirectory - resolve the configured data directory
//
// "." means the directory holding the configuration file; blank and
// "~" are refused. The directory must already exist.
func DataDirectory(configurationFileName string, dataDirectory string) (string, error) {
	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return "", err
	}
	base, _ := filepath.Split(configurationFileName)

	switch dataDirectory {
	case "", "~":
		return "", fmt.Errorf("path: %q is not a valid directory", dataDirectory)
	case ".":
		dataDirectory = base
	default:
		dataDirectory = util.EnsureAbsolute(base, dataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(dataDirectory); nil != err {
		return "", err
	} else if !fileInfo.IsDir() {
		return "", fmt.Errorf("path: %q is not a directory", dataDirectory)
	}
	return filepath.Clean(dataDirectory), nil
}

// PlainFileName - true if name has no directory part
func PlainFileName(name string) bool {
	switch filepath.Dir(name) {
	case "", ".":
		return "" != name
	default:
		return false
	}
}
