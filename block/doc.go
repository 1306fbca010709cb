// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package block - the local cache of canonical blocks
//
// blocks are kept in ascending index order and persisted as a single
// JSON document; every block written through TryAppend or
// AcceptFragment has passed signature verification, and TryAppend
// additionally enforces hash linkage onto the current tip
package block
