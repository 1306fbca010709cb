// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"context"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/mode"
	"github.com/krisys/krisys/transactionrecord"
)

// RefreshResult - what one refresh changed
type RefreshResult struct {
	Fetched              int  `json:"fetched"`
	Verified             int  `json:"verified"`
	Replaced             bool `json:"replaced"`
	ConfirmationsChanged int  `json:"confirmationsChanged"`
	KeyChanged           bool `json:"keyChanged"`
}

// Refresh - bring local state up to date from the authority
//
// a network failure leaves the cached state untouched and moves the
// device to offline mode; the engine lock is only taken to apply what
// was fetched, so a slow authority never blocks readers or Reset
func (e *Engine) Refresh(ctx context.Context) (RefreshResult, error) {
	result := RefreshResult{}
	if nil == e.authority {
		return result, fault.ErrNoAuthority
	}

	e.stats.Refreshes.Increment()

	metadata, err := e.authority.FetchCrisisMetadata(ctx)
	if nil != err {
		return result, e.refreshFailed("crisis", err)
	}
	if nil != metadata {
		e.Lock()
		changed, err := e.adoptCrisis(metadata)
		e.Unlock()
		if nil != err {
			e.stats.RefreshFailures.Increment()
			return result, err
		}
		result.KeyChanged = changed
	}

	candidates, err := e.authority.FetchCanonicalCandidates(ctx)
	if nil != err {
		return result, e.refreshFailed("chain", err)
	}
	result.Fetched = len(candidates)

	if err := e.applyCandidates(candidates, &result); nil != err {
		e.stats.RefreshFailures.Increment()
		return result, err
	}

	mode.Set(mode.Online)
	e.log.Infof("refresh: fetched: %d  verified: %d  replaced: %t  confirmations: %d",
		result.Fetched, result.Verified, result.Replaced, result.ConfirmationsChanged)
	return result, nil
}

// verify, replace if not shorter, then retire confirmed queue entries
func (e *Engine) applyCandidates(candidates []blockrecord.Block, result *RefreshResult) error {
	e.Lock()
	defer e.Unlock()

	verified := contiguousPrefix(blockrecord.FilterCanonical(candidates, e.keys))
	result.Verified = len(verified)
	if len(verified) != len(candidates) {
		e.log.Warnf("refresh: %d of %d blocks rejected", len(candidates)-len(verified), len(candidates))
	}

	// never shrink the local chain
	if 0 != len(verified) && len(verified) >= e.chain.Height() {
		if err := e.chain.Replace(verified); nil != err {
			return err
		}
		result.Replaced = true
	}

	txs := make([]transactionrecord.Transaction, 0, len(verified))
	for _, b := range e.chain.Get() {
		txs = append(txs, b.Transactions...)
	}
	result.ConfirmationsChanged = e.ledger.SyncFromTransactions(txs, e.queue)
	return nil
}

func (e *Engine) refreshFailed(what string, err error) error {
	e.stats.RefreshFailures.Increment()
	if fault.IsErrNetwork(err) {
		mode.Set(mode.Offline)
	}
	e.log.Errorf("refresh: %s: %s", what, err)
	return err
}

// cache the crisis, adopt its key and identifier
func (e *Engine) adoptCrisis(metadata *authority.CrisisMetadata) (bool, error) {
	changed := false
	if "" != metadata.BlockPublicKey {
		key, err := blockrecord.NewTrustedKey(metadata.BlockPublicKey)
		if nil != err {
			e.log.Errorf("refresh: crisis key: %s", err)
			return false, err
		}
		changed = e.keys.Set(key)
		if changed {
			e.log.Warnf("trusted key changed to: %s", key.Fingerprint())
		}
	}
	if "" != metadata.ID {
		e.sync.SetCrisisID(metadata.ID)
	}
	e.saveCrisis(metadata)
	return changed, nil
}

// longest run from the first block where each block links to the last
func contiguousPrefix(blocks []blockrecord.Block) []blockrecord.Block {
	if 0 == len(blocks) {
		return blocks
	}
	blockrecord.SortBlocks(blocks)
	n := 1
	for ; n < len(blocks); n += 1 {
		if !blocks[n].Follows(blocks[n-1].Header()) {
			break
		}
	}
	return blocks[:n]
}
