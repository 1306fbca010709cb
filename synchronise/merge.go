// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise

import (
	"fmt"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/transactionrecord"
)

// ImportResult - effect of ImportPayload
type ImportResult struct {
	ConfirmationsChanged int
	Queued               int
	Pruned               int
}

// MergeResult - effect of MergeBlocks
type MergeResult struct {
	Accepted   int
	Duplicates int
	Forks      int
	Rejected   int
}

// IngestResult - everything Ingest did
type IngestResult struct {
	Report Report
	Import ImportResult
	Merge  MergeResult
}

// ImportPayload - merge confirmations then queued messages, then prune
func (s *Synchroniser) ImportPayload(p Payload) ImportResult {
	result := ImportResult{}

	result.ConfirmationsChanged = s.ledger.Merge(p.Confirmed.Map())
	result.Queued = s.queue.Merge(p.Queued)
	result.Pruned = s.queue.PruneConfirmed()

	queuedTotal.WithLabelValues("imported").Add(float64(result.Queued))
	confirmationsTotal.Add(float64(result.ConfirmationsChanged))

	if result.ConfirmationsChanged > 0 || result.Queued > 0 || result.Pruned > 0 {
		s.log.Infof("import from: %q  confirmations: %d  queued: %d  pruned: %d",
			p.DeviceID, result.ConfirmationsChanged, result.Queued, result.Pruned)
	}
	return result
}

// MergeBlocks - extend the local chain with verified, linked blocks
//
// requires a trusted key; an empty chain is bootstrapped from the
// verified subset, otherwise blocks are appended in index order when
// they link onto the tip. A differing, validly signed block at an
// existing index is a fork: it is reported and the local block kept.
func (s *Synchroniser) MergeBlocks(p Payload) (MergeResult, error) {
	result := MergeResult{}

	key := s.trustedKey()
	if nil == key {
		s.log.Warnf("block merge skipped: %s", fault.ErrMissingTrustedKey)
		return result, fault.ErrMissingTrustedKey
	}
	if 0 == len(p.Blocks) {
		return result, nil
	}

	incoming := blockrecord.Copy(p.Blocks)
	blockrecord.SortBlocks(incoming)

	accepted := []blockrecord.Block{}

	if s.chain.IsEmpty() {
		n, err := s.chain.AcceptFragment(incoming, key)
		if nil == err {
			result.Accepted = n
			result.Rejected = len(incoming) - n
			if n > 0 {
				s.confirmFrom(s.chain.Get())
			}
			s.countBlocks(result)
			return result, nil
		}
		if !fault.IsErrLinkage(err) {
			return result, err
		}
		// chain filled in concurrently, fall through to append
	}

	for _, b := range incoming {
		if existing, ok := s.chain.Lookup(b.BlockIndex); ok {
			if existing.Hash == b.Hash {
				result.Duplicates += 1
			} else if key.Verify(&b) {
				result.Forks += 1
				s.reportFork(existing, b, p.DeviceID)
			} else {
				result.Rejected += 1
			}
			continue
		}

		err := s.chain.TryAppend(b, key)
		if nil != err {
			s.log.Debugf("block: %d rejected: %s", b.BlockIndex, err)
			result.Rejected += 1
			continue
		}
		accepted = append(accepted, b)
	}

	result.Accepted = len(accepted)
	if result.Accepted > 0 {
		s.log.Infof("merge from: %q  appended: %d blocks", p.DeviceID, result.Accepted)
		s.confirmFrom(accepted)
	}
	s.countBlocks(result)
	return result, nil
}

// Ingest - sanitise, import and merge one raw payload
//
// a missing trusted key only skips the block merge
func (s *Synchroniser) Ingest(raw []byte) (IngestResult, error) {
	result := IngestResult{}

	p, report := s.Sanitise(raw)
	result.Report = report
	if nil != report.Rejected {
		payloadsTotal.WithLabelValues("rejected").Inc()
		s.log.Warnf("payload ignored: %s", report.Rejected)
		return result, report.Rejected
	}
	payloadsTotal.WithLabelValues("accepted").Inc()
	queuedTotal.WithLabelValues("dropped").Add(float64(report.QueuedDropped))
	queuedTotal.WithLabelValues("known").Add(float64(report.QueuedKnown))

	result.Import = s.ImportPayload(p)

	merge, err := s.MergeBlocks(p)
	result.Merge = merge
	if nil != err && fault.ErrMissingTrustedKey != err {
		return result, err
	}
	return result, nil
}

func (s *Synchroniser) trustedKey() *blockrecord.TrustedKey {
	if nil == s.keys {
		return nil
	}
	return s.keys.TrustedKey()
}

// relay hashes in newly canonical blocks retire queued work
func (s *Synchroniser) confirmFrom(blocks []blockrecord.Block) {
	txs := []transactionrecord.Transaction{}
	for _, b := range blocks {
		txs = append(txs, b.Transactions...)
	}
	s.ledger.SyncFromTransactions(txs, s.queue)
}

// log each distinct fork once
func (s *Synchroniser) reportFork(local blockrecord.Block, incoming blockrecord.Block, from string) {
	id := fmt.Sprintf("%d:%s:%s", local.BlockIndex, local.Hash, incoming.Hash)
	if !s.forks.AddIfAbsent(id) {
		return
	}
	s.forkCount.Increment()
	s.log.Warnf("%s at: %d  local: %s  incoming: %s  from: %q  keeping local",
		fault.ErrForkDetected, local.BlockIndex, local.Hash, incoming.Hash, from)
}

func (s *Synchroniser) countBlocks(r MergeResult) {
	blocksTotal.WithLabelValues("accepted").Add(float64(r.Accepted))
	blocksTotal.WithLabelValues("duplicate").Add(float64(r.Duplicates))
	blocksTotal.WithLabelValues("fork").Add(float64(r.Forks))
	blocksTotal.WithLabelValues("rejected").Add(float64(r.Rejected))
}
