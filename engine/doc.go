// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package engine - one device's view of the crisis
//
// an Engine owns the chain store, the confirmation ledger, the
// outbound queue and the synchroniser for one storage handle and
// drives them from the authority when it can be reached and from
// peer payloads when it cannot
package engine
