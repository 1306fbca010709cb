// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/transactionrecord"
	"github.com/krisys/krisys/util"
)

// defaults applied to a zero configuration
const (
	DefaultTimeout = 10 // seconds
	DefaultRate    = 2  // requests per second
	DefaultBurst   = 4
)

// authority endpoints
const (
	blockchainPath  = "/blockchain"
	crisisPath      = "/crisis"
	transactionPath = "/transaction"
)

// Configuration - authority connection
type Configuration struct {
	URL     string  `gluamapper:"url" json:"url"`
	Timeout int     `gluamapper:"timeout" json:"timeout"` // seconds
	Rate    float64 `gluamapper:"rate" json:"rate"`       // requests per second
	Burst   int     `gluamapper:"burst" json:"burst"`
}

// Client - HTTP access to the authority
type Client struct {
	log     *logger.L
	base    string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient - create a client for the configured authority
func NewClient(configuration *Configuration) (*Client, error) {
	u, err := url.Parse(configuration.URL)
	if nil != err || "" == u.Host || ("http" != u.Scheme && "https" != u.Scheme) {
		return nil, fault.ErrInvalidURL
	}

	timeout := configuration.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := configuration.Rate
	if limit <= 0 {
		limit = DefaultRate
	}
	burst := configuration.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}

	c := &Client{
		log:     logger.New("authority"),
		base:    strings.TrimRight(u.String(), "/"),
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}
	c.log.Infof("authority: %s  rate: %.2f/s  burst: %d", c.base, limit, burst)
	return c, nil
}

// URL - base address of the authority
func (c *Client) URL() string {
	return c.base
}

// FetchCanonicalCandidates - the chain as the authority has it
func (c *Client) FetchCanonicalCandidates(ctx context.Context) ([]blockrecord.Block, error) {
	if err := c.wait(ctx); nil != err {
		return nil, err
	}

	// a bare array of blocks
	var chain []blockrecord.Block
	if err := util.FetchJSON(ctx, c.client, c.base+blockchainPath, &chain); nil != err {
		c.log.Warnf("fetch chain: %s", err)
		return nil, err
	}
	if nil == chain {
		chain = []blockrecord.Block{}
	}
	c.log.Debugf("fetch chain: %d blocks", len(chain))
	return chain, nil
}

// FetchCrisisMetadata - the crisis this authority serves
func (c *Client) FetchCrisisMetadata(ctx context.Context) (*CrisisMetadata, error) {
	if err := c.wait(ctx); nil != err {
		return nil, err
	}

	var reply CrisisMetadata
	if err := util.FetchJSON(ctx, c.client, c.base+crisisPath, &reply); nil != err {
		c.log.Warnf("fetch crisis: %s", err)
		return nil, err
	}
	c.log.Debugf("fetch crisis: %q", reply.ID)
	return &reply, nil
}

// Submit - POST a transaction, only 201 Created is success
func (c *Client) Submit(ctx context.Context, tx transactionrecord.Transaction) error {
	if err := c.wait(ctx); nil != err {
		return err
	}

	body, err := json.Marshal(tx)
	if nil != err {
		return fault.ErrInvalidTransaction
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+transactionPath, bytes.NewReader(body))
	if nil != err {
		return fault.ErrInvalidURL
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(request)
	if nil != err {
		c.log.Debugf("submit: %s  network error: %s", tx.RelayHash, err)
		return fault.NetworkError(err.Error())
	}
	defer response.Body.Close()
	message, _ := ioutil.ReadAll(io.LimitReader(response.Body, 4096))

	if http.StatusCreated != response.StatusCode {
		c.log.Warnf("submit: %s  status: %d", tx.RelayHash, response.StatusCode)
		return fault.ApplicationError(fmt.Sprintf("status: %d %s", response.StatusCode, strings.TrimSpace(string(message))))
	}
	c.log.Infof("submit: %s  accepted", tx.RelayHash)
	return nil
}

// a cancelled wait is indistinguishable from an unreachable authority
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); nil != err {
		return fault.NetworkError(err.Error())
	}
	return nil
}
