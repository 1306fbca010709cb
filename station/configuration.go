// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package station

// defaults
const (
	DefaultRequestRate = 120     // requests per minute per client
	DefaultMaximumBody = 4 << 20 // bytes
)

// Configuration - configuration file data for the HTTP listener
type Configuration struct {
	Listen      []string `gluamapper:"listen" json:"listen"`
	Certificate string   `gluamapper:"certificate" json:"certificate"` // blank: plain HTTP
	PrivateKey  string   `gluamapper:"private_key" json:"private_key"`
	RequestRate int      `gluamapper:"request_rate" json:"request_rate"`
	MaximumBody int64    `gluamapper:"maximum_body" json:"maximum_body"`
}
