// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - the persistence port
//
// every persisted structure (chain, queue, confirmations, device
// identity, cached crisis metadata) is a JSON blob stored under one of
// the fixed keys below; a Handle is the only thing the owning packages
// see so tests can use the memory implementation
//
// leveldb is the production backing store, with a short lived read
// cache in front of it
package storage
