// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.


package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/krisys/krisys/blockrecord"
)

func runStatus(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	return printJson(m.w, m.device.Status())
}

func runChain(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	count := c.Int("count")
	if count < 0 {
		return ErrInvalidCount
	}

	chain := m.device.Chain()
	blocks := chain.Get()
	if count > 0 {
		blocks = chain.Suffix(count)
	}

	if c.Bool("headers") {
		headers := make([]blockrecord.Header, 0, len(blocks))
		for i := range blocks {
			headers = append(headers, blocks[i].Header())
		}
		return printJson(m.w, headers)
	}
	return printJson(m.w, blocks)
}

func runQueue(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	return printJson(m.w, m.device.Queue().All())
}

func runConfirmations(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	return printJson(m.w, m.device.Ledger().All())
}

func runTransactions(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	addresses := c.StringSlice("address")
	if 0 == len(addresses) {
		return ErrMissingAddress
	}

	view := m.device.Transactions(addresses)
	if m.verbose {
		fmt.Fprintf(m.e, "addresses: %v  transactions: %d\n", addresses, len(view))
	}
	return printJson(m.w, view)
}

func runReset(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	if err := m.device.Reset(); nil != err {
		return err
	}
	return printJson(m.w, m.device.Status())
}
