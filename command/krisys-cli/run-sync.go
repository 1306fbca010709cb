// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.


package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/urfave/cli"
)

func runExport(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	payload, err := m.device.Export()
	if nil != err {
		return err
	}

	output := c.String("output")
	if "" == output {
		fmt.Fprintf(m.w, "%s\n", payload)
		return nil
	}

	if m.verbose {
		fmt.Fprintf(m.e, "writing %d bytes to: %q\n", len(payload), output)
	}
	return ioutil.WriteFile(output, payload, 0600)
}

func runImport(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	file := c.String("file")
	if "" == file {
		return ErrMissingFile
	}

	var raw []byte
	var err error
	if "-" == file {
		raw, err = ioutil.ReadAll(os.Stdin)
	} else {
		raw, err = ioutil.ReadFile(file)
	}
	if nil != err {
		return err
	}

	result, err := m.device.Import(raw)
	if nil != err {
		return err
	}
	return printJson(m.w, result)
}
