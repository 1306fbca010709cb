// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/fault"
)

// Replace - overwrite the whole chain with a verified fetch
func (s *Store) Replace(blocks []blockrecord.Block) error {
	candidate := blockrecord.Copy(blocks)
	blockrecord.SortBlocks(candidate)

	s.Lock()
	defer s.Unlock()

	lastUpdated, err := s.persist(candidate)
	if nil != err {
		s.log.Errorf("replace: persist error: %s", err)
		return err
	}
	s.blocks = candidate
	s.lastUpdated = lastUpdated
	s.log.Infof("replace: %d blocks", len(candidate))
	return nil
}

// TryAppend - add one block on top of the tip
//
// an empty chain accepts any verified block; otherwise the block must
// link to the tip. Nothing changes when an error is returned.
func (s *Store) TryAppend(b blockrecord.Block, v blockrecord.Verifier) error {
	s.Lock()
	defer s.Unlock()

	if n := len(s.blocks); n > 0 {
		if !b.Follows(s.blocks[n-1].Header()) {
			return fault.ErrNonContiguous
		}
	}
	if nil == v || !v.Verify(&b) {
		return fault.ErrBadSignature
	}

	candidate := make([]blockrecord.Block, len(s.blocks), len(s.blocks)+1)
	copy(candidate, s.blocks)
	candidate = append(candidate, b)

	lastUpdated, err := s.persist(candidate)
	if nil != err {
		s.log.Errorf("append: %d  persist error: %s", b.BlockIndex, err)
		return err
	}
	s.blocks = candidate
	s.lastUpdated = lastUpdated
	s.log.Debugf("append: %d  hash: %s", b.BlockIndex, b.Hash)
	return nil
}

// AcceptFragment - bootstrap an empty chain from verified blocks
//
// contiguity cannot be checked without a known tip so the verified
// subset is adopted as is; returns the number of blocks adopted
func (s *Store) AcceptFragment(blocks []blockrecord.Block, v blockrecord.Verifier) (int, error) {
	verified := blockrecord.FilterCanonical(blocks, v)
	if 0 == len(verified) {
		return 0, nil
	}
	blockrecord.SortBlocks(verified)

	// duplicate indices from a confused peer, keep the first seen
	fragment := []blockrecord.Block{verified[0]}
	for _, b := range verified[1:] {
		if b.BlockIndex != fragment[len(fragment)-1].BlockIndex {
			fragment = append(fragment, b)
		}
	}

	s.Lock()
	defer s.Unlock()

	if 0 != len(s.blocks) {
		return 0, fault.ErrNonContiguous
	}

	lastUpdated, err := s.persist(fragment)
	if nil != err {
		s.log.Errorf("bootstrap: persist error: %s", err)
		return 0, err
	}
	s.blocks = fragment
	s.lastUpdated = lastUpdated
	s.log.Infof("bootstrap: %d blocks  tip: %d", len(fragment), fragment[len(fragment)-1].BlockIndex)
	return len(fragment), nil
}
