// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.


package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/msgcrypt"
	"github.com/krisys/krisys/transactionrecord"
)

type keyReply struct {
	Fingerprint string `json:"fingerprint"`
	PublicKey   string `json:"public_key_file"`
	PrivateKey  string `json:"private_key_file"`
}

type verifyReply struct {
	BlockIndex uint64 `json:"block_index"`
	Hash       string `json:"hash"`
	Valid      bool   `json:"valid"`
}

func runGenerateKey(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	name := c.String("name")
	if "" == name {
		return ErrMissingName
	}
	output := c.String("output")
	if "" == output {
		return ErrMissingOutput
	}

	entity, err := msgcrypt.GenerateKey(name, "krisys", c.String("email"), c.Int("bits"))
	if nil != err {
		return err
	}
	public, err := msgcrypt.ArmorPublicKey(entity)
	if nil != err {
		return err
	}
	private, err := msgcrypt.ArmorPrivateKey(entity)
	if nil != err {
		return err
	}
	key, err := blockrecord.NewTrustedKey(public)
	if nil != err {
		return err
	}

	reply := keyReply{
		Fingerprint: key.Fingerprint(),
		PublicKey:   output + ".pub",
		PrivateKey:  output + ".key",
	}
	if err := ioutil.WriteFile(reply.PublicKey, []byte(public), 0644); nil != err {
		return err
	}
	if err := ioutil.WriteFile(reply.PrivateKey, []byte(private), 0600); nil != err {
		return err
	}
	return printJson(m.w, reply)
}

func runSignBlock(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	keyFile := c.String("key")
	if "" == keyFile {
		return ErrMissingKey
	}
	armored, err := ioutil.ReadFile(keyFile)
	if nil != err {
		return err
	}
	signer, err := blockrecord.ReadSigningKey(string(armored), []byte(c.String("passphrase")))
	if nil != err {
		return err
	}

	txs := []transactionrecord.Transaction{}
	if file := c.String("transactions"); "" != file {
		data, err := ioutil.ReadFile(file)
		if nil != err {
			return err
		}
		if err := json.Unmarshal(data, &txs); nil != err {
			return err
		}
	}

	previous := c.String("previous")
	if "" == previous {
		previous = blockrecord.GenesisPreviousHash
	}
	index := c.Uint64("index")

	b := blockrecord.Block{
		BlockIndex:   index,
		Timestamp:    float64(time.Now().UnixNano()) / 1e9,
		Transactions: txs,
		PreviousHash: previous,
		Hash:         blockrecord.Digest(index, previous, txs),
	}
	if err := blockrecord.Sign(&b, signer); nil != err {
		return err
	}
	return printJson(m.w, b)
}

func runVerifyBlock(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	keyFile := c.String("key")
	if "" == keyFile {
		return ErrMissingKey
	}
	file := c.String("file")
	if "" == file {
		return ErrMissingFile
	}

	armored, err := ioutil.ReadFile(keyFile)
	if nil != err {
		return err
	}
	key, err := blockrecord.NewTrustedKey(string(armored))
	if nil != err {
		return err
	}

	data, err := ioutil.ReadFile(file)
	if nil != err {
		return err
	}
	blocks, err := decodeBlocks(data)
	if nil != err {
		return err
	}

	replies := make([]verifyReply, 0, len(blocks))
	failed := 0
	for i := range blocks {
		ok := key.Verify(&blocks[i])
		if !ok {
			failed += 1
		}
		replies = append(replies, verifyReply{
			BlockIndex: blocks[i].BlockIndex,
			Hash:       blocks[i].Hash,
			Valid:      ok,
		})
	}
	if err := printJson(m.w, replies); nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "key: %s  blocks: %d  failed: %d\n", key.Fingerprint(), len(blocks), failed)
	}
	if 0 != failed {
		return ErrUnverifiedBlocks
	}
	return nil
}

func runDecrypt(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	keyFile := c.String("key")
	if "" == keyFile {
		return ErrMissingKey
	}
	file := c.String("message")
	if "" == file {
		return ErrMissingMessage
	}

	key, err := ioutil.ReadFile(keyFile)
	if nil != err {
		return err
	}
	ciphertext, err := ioutil.ReadFile(file)
	if nil != err {
		return err
	}

	plaintext, err := msgcrypt.Decrypt(string(ciphertext), string(key), []byte(c.String("passphrase")))
	if nil != err {
		return err
	}
	fmt.Fprintf(m.w, "%s\n", plaintext)
	return nil
}

// accept either a single block object or a list of blocks
func decodeBlocks(data []byte) ([]blockrecord.Block, error) {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		blocks := []blockrecord.Block{}
		err := json.Unmarshal(data, &blocks)
		return blocks, err
	}
	b := blockrecord.Block{}
	if err := json.Unmarshal(data, &b); nil != err {
		return nil, err
	}
	return []blockrecord.Block{b}, nil
}
