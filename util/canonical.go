// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"net"
	"strconv"
	"strings"

	"github.com/krisys/krisys/fault"
)

// CanonicalListenAddress - normalise one station "listen" entry
//
// "*:PORT" binds every interface and becomes "[::]:PORT"; otherwise
// the host must be a literal IP, names are not resolved
//
// examples:
//   *:8443          => [::]:8443
//   127.0.0.1:8443  => 127.0.0.1:8443
//   [0:0::1]:8443   => [::1]:8443
func CanonicalListenAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(address, "*:") {
		address = "[::]" + address[1:]
	}

	host, port, err := net.SplitHostPort(address)
	if nil != err {
		return "", fault.ErrInvalidIPAddress
	}

	ip := net.ParseIP(host)
	if nil == ip {
		return "", fault.ErrInvalidIPAddress
	}

	n, err := strconv.Atoi(port)
	if nil != err || n < 1 || n > 65535 {
		return "", fault.ErrInvalidPortNumber
	}

	return net.JoinHostPort(ip.String(), strconv.Itoa(n)), nil
}
