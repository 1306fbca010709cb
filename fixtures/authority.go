// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"fmt"

	"golang.org/x/crypto/openpgp"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/msgcrypt"
	"github.com/krisys/krisys/transactionrecord"
)

// small keys keep test start up fast
const keyBits = 1024

// GenesisPreviousHash - previous_hash of block 0
var GenesisPreviousHash = blockrecord.GenesisPreviousHash

// Authority - a signing identity
type Authority struct {
	Entity     *openpgp.Entity
	PublicKey  string
	PrivateKey string
	Key        *blockrecord.TrustedKey
}

// NewAuthority - generate a fresh key pair
func NewAuthority(name string) (*Authority, error) {
	entity, err := msgcrypt.GenerateKey(name, "crisis authority", name+"@example.org", keyBits)
	if nil != err {
		return nil, err
	}
	public, err := msgcrypt.ArmorPublicKey(entity)
	if nil != err {
		return nil, err
	}
	private, err := msgcrypt.ArmorPrivateKey(entity)
	if nil != err {
		return nil, err
	}
	key, err := blockrecord.NewTrustedKey(public)
	if nil != err {
		return nil, err
	}
	return &Authority{
		Entity:     entity,
		PublicKey:  public,
		PrivateKey: private,
		Key:        key,
	}, nil
}

// Block - a signed block at index linked to previousHash
func (a *Authority) Block(index uint64, previousHash string, txs ...transactionrecord.Transaction) blockrecord.Block {
	if nil == txs {
		txs = []transactionrecord.Transaction{}
	}
	b := blockrecord.Block{
		BlockIndex:   index,
		Timestamp:    float64(1700000000 + index*60),
		Transactions: txs,
		PreviousHash: previousHash,
		Hash:         Hash(index, previousHash, txs),
	}
	if err := blockrecord.Sign(&b, a.Entity); nil != err {
		panic(fmt.Sprintf("fixture sign failed: %s", err))
	}
	return b
}

// Next - a signed block following tip
func (a *Authority) Next(tip blockrecord.Block, txs ...transactionrecord.Transaction) blockrecord.Block {
	return a.Block(tip.BlockIndex+1, tip.Hash, txs...)
}

// Chain - n linked blocks starting from index 0
func (a *Authority) Chain(n int) []blockrecord.Block {
	blocks := make([]blockrecord.Block, 0, n)
	previous := GenesisPreviousHash
	for i := 0; i < n; i += 1 {
		b := a.Block(uint64(i), previous)
		blocks = append(blocks, b)
		previous = b.Hash
	}
	return blocks
}

// Hash - deterministic digest of the block contents
func Hash(index uint64, previousHash string, txs []transactionrecord.Transaction) string {
	return blockrecord.Digest(index, previousHash, txs)
}

// Transaction - a message from one address to others
func Transaction(id string, relayHash string, from string, to ...string) transactionrecord.Transaction {
	if nil == to {
		to = []string{}
	}
	return transactionrecord.Transaction{
		TransactionID:    id,
		TimestampCreated: 1700000000,
		TimestampPosted:  1700000010,
		StationAddress:   from,
		MessageData:      "data-" + id,
		RelatedAddresses: to,
		RelayHash:        relayHash,
		TypeField:        transactionrecord.Message,
		PriorityLevel:    transactionrecord.DefaultPriority,
	}
}
