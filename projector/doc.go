// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package projector - the wallet view of the chain and the queue
//
// a wallet is a set of member addresses; its view holds every
// canonical transaction that involves a member or is a global alert,
// followed by queued work that has not yet reached the chain, newest
// first and with each relay hash shown at most once
package projector
