// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/krisys/krisys/transactionrecord"
)

// GenesisPreviousHash - previous_hash of block 0
var GenesisPreviousHash = strings.Repeat("0", 64)

// Block - a block as issued by the crisis authority
type Block struct {
	BlockIndex   uint64                          `json:"block_index"`   // 0..N gapless
	Timestamp    float64                         `json:"timestamp"`     // unix seconds
	Transactions []transactionrecord.Transaction `json:"transactions"`  // immutable
	PreviousHash string                          `json:"previous_hash"` // hash of block_index-1
	Hash         string                          `json:"hash"`          // authority computed
	Nonce        uint64                          `json:"nonce"`         // carried unchanged
	Signature    string                          `json:"signature"`     // armored detached
}

// Header - the signed portion of a block, also used as a chain tip
//
// field order is significant: it is the sorted key order of the
// canonical serialisation
type Header struct {
	BlockIndex   uint64 `json:"block_index"`
	Hash         string `json:"hash"`
	PreviousHash string `json:"previous_hash"`
}

// Header - extract the signed fields
func (b *Block) Header() Header {
	return Header{
		BlockIndex:   b.BlockIndex,
		Hash:         b.Hash,
		PreviousHash: b.PreviousHash,
	}
}

// Follows - true if b links directly onto tip
func (b *Block) Follows(tip Header) bool {
	return b.BlockIndex == tip.BlockIndex+1 && b.PreviousHash == tip.Hash
}

// CanonicalHeader - the exact bytes covered by the block signature
//
//   {"block_index":N,"hash":"H","previous_hash":"P"}
//
// keys sorted, no whitespace, no HTML escaping
func CanonicalHeader(b *Block) []byte {
	buffer := &bytes.Buffer{}
	enc := json.NewEncoder(buffer)
	enc.SetEscapeHTML(false)

	// a struct of one integer and two strings always encodes
	_ = enc.Encode(b.Header())

	return bytes.TrimSuffix(buffer.Bytes(), []byte{'\n'})
}

// SortBlocks - ascending by index, stable for duplicates
func SortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].BlockIndex < blocks[j].BlockIndex
	})
}

// Copy - duplicate a list so callers cannot alias store internals
func Copy(blocks []Block) []Block {
	if nil == blocks {
		return []Block{}
	}
	c := make([]Block, len(blocks))
	copy(c, blocks)
	return c
}

// Digest - SHA3-256 over the index, link and transaction identities,
// used when an authority tool issues a block
func Digest(index uint64, previousHash string, txs []transactionrecord.Transaction) string {
	h := sha3.New256()
	fmt.Fprintf(h, "%d|%s", index, previousHash)
	for _, tx := range txs {
		fmt.Fprintf(h, "|%s|%s", tx.TransactionID, tx.RelayHash)
	}
	return hex.EncodeToString(h.Sum(nil))
}
