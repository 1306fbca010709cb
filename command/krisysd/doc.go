// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// krisysd - device daemon
//
// keeps the local copy of the crisis chain current when the authority
// is reachable and delivers queued messages when it comes back
package main
