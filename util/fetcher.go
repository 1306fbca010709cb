// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/krisys/krisys/fault"
)

// maximum response body accepted from a remote service
const maximumBodySize = 16 * 1024 * 1024

// FetchJSON - GET a JSON document and decode it into reply
//
// no response at all gives a fault.NetworkError; a response with a
// status other than 200 or an undecodable body gives a
// fault.ApplicationError
func FetchJSON(ctx context.Context, client *http.Client, url string, reply interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if nil != err {
		return fault.ErrInvalidURL
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if nil != err {
		return fault.NetworkError(err.Error())
	}
	defer response.Body.Close()

	body, err := ioutil.ReadAll(io.LimitReader(response.Body, maximumBodySize))
	if nil != err {
		return fault.NetworkError(err.Error())
	}

	if http.StatusOK != response.StatusCode {
		return fault.ApplicationError(fmt.Sprintf("status: %d %q on: %q", response.StatusCode, response.Status, url))
	}
	if err := json.Unmarshal(body, reply); nil != err {
		return fault.ApplicationError(fmt.Sprintf("decode: %s on: %q", err, url))
	}
	return nil
}
