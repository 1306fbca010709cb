// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// krisys-cli - operator tool for a krisys data directory
//
// inspects and manipulates the local chain, queue and confirmation
// ledger, moves sync payloads by file, and provides the authority
// side helpers to generate keys and sign or verify blocks
package main
