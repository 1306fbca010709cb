// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// krisys-station - offline relay station
//
// collects sync payloads from devices over HTTP and pushes the
// messages it holds to the authority whenever it can be reached
package main
