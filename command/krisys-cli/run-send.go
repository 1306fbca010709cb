// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.


package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/urfave/cli"

	"github.com/krisys/krisys/transactionrecord"
)

const requestTimeout = 60 * time.Second

type sendReply struct {
	Delivery    string                        `json:"delivery"`
	Transaction transactionrecord.Transaction `json:"transaction"`
}

func runSend(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	from := c.String("from")
	if "" == from {
		return ErrMissingStation
	}
	message := c.String("message")
	if "" == message {
		return ErrMissingMessage
	}
	to := c.StringSlice("to")
	if nil == to {
		to = []string{}
	}

	if keyFile := c.String("recipient-key"); "" != keyFile {
		key, err := ioutil.ReadFile(keyFile)
		if nil != err {
			return err
		}
		message, err = m.device.Encrypt(message, string(key))
		if nil != err {
			return err
		}
	}

	tx := transactionrecord.Transaction{
		StationAddress:   from,
		MessageData:      message,
		RelatedAddresses: to,
		TypeField:        transactionrecord.Message,
		PriorityLevel:    c.Int("priority"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	sent, delivery, err := m.device.Send(ctx, tx)
	if nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "relay hash: %s\n", sent.RelayHash)
	}
	return printJson(m.w, sendReply{
		Delivery:    string(delivery),
		Transaction: sent,
	})
}

func runRefresh(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := m.device.Refresh(ctx)
	if nil != err {
		return err
	}
	return printJson(m.w, result)
}

func runFlush(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	drain := m.device.ProcessQueue
	if c.Bool("station") {
		drain = m.device.Flush
	}
	result, err := drain(ctx)
	if nil != err {
		fmt.Fprintf(m.e, "flush stopped: %s\n", err)
	}
	return printJson(m.w, result)
}
