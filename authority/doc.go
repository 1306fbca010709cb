// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package authority - access to the crisis authority
//
// the authority publishes the canonical chain and the crisis
// metadata, and accepts new transactions. Nothing it returns is
// trusted: blocks still pass through signature verification.
package authority
