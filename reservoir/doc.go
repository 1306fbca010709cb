// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package reservoir - outbound transactions waiting for delivery
//
// an entry is identified by its relay hash; it stays pending until a
// submit succeeds (sent) and is removed once the relay hash appears in
// the confirmation ledger. Retries are not capped, attempts are only
// counted.
package reservoir
