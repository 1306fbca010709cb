// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package confirmation - relay hashes known to be on the canonical chain
//
// the ledger only grows: an entry is never removed except by Reset,
// and when two sources disagree about when a relay was confirmed the
// earlier time is kept
package confirmation
