// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package synchronise - exchange of state between devices
//
// a sync payload carries a device's pending outbound messages, its
// confirmation ledger and a short suffix of its canonical chain. An
// incoming payload is untrusted: Sanitise validates every field and
// drops what fails, ImportPayload merges confirmations and queued
// messages, and MergeBlocks only ever appends blocks that verify and
// link onto the local tip.
//
// every step is idempotent so the same payload may be applied any
// number of times, in any order relative to other payloads
package synchronise
