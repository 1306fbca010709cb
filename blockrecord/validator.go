// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"bytes"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/openpgp"

	"github.com/krisys/krisys/fault"
)

// Verifier - decides if a block is canonical
type Verifier interface {
	Verify(block *Block) bool
}

// TrustedKey - the single authority signing key
type TrustedKey struct {
	armored     string
	keyring     openpgp.EntityList
	fingerprint string
}

// NewTrustedKey - parse an armored public key block
func NewTrustedKey(armored string) (*TrustedKey, error) {
	if "" == strings.TrimSpace(armored) {
		return nil, fault.ErrMissingTrustedKey
	}
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armored))
	if nil != err {
		return nil, err
	}
	if 0 == len(keyring) || nil == keyring[0].PrimaryKey {
		return nil, fault.ErrInvalidKey
	}
	return &TrustedKey{
		armored:     armored,
		keyring:     keyring,
		fingerprint: strings.ToUpper(hex.EncodeToString(keyring[0].PrimaryKey.Fingerprint[:])),
	}, nil
}

// Verify - a nil key verifies nothing
func (k *TrustedKey) Verify(block *Block) bool {
	if nil == k {
		return false
	}
	return Verify(block, k.keyring)
}

// Armored - the key text it was created from
func (k *TrustedKey) Armored() string {
	if nil == k {
		return ""
	}
	return k.armored
}

// Fingerprint - primary key fingerprint as upper case hex
func (k *TrustedKey) Fingerprint() string {
	if nil == k {
		return ""
	}
	return k.fingerprint
}

// Verify - check the detached signature over the canonical header
//
// any failure (no key, malformed signature, wrong signer, altered
// header) is reported as false
func Verify(block *Block, keyring openpgp.KeyRing) (ok bool) {
	if nil == block || nil == keyring || "" == block.Signature {
		return false
	}

	// malformed packets must not escape as a panic
	defer func() {
		if r := recover(); nil != r {
			ok = false
		}
	}()

	signed := bytes.NewReader(CanonicalHeader(block))
	_, err := openpgp.CheckArmoredDetachedSignature(keyring, signed, strings.NewReader(block.Signature))
	return nil == err
}

// FilterCanonical - keep only the blocks that verify, preserving order
func FilterCanonical(blocks []Block, v Verifier) []Block {
	canonical := make([]Block, 0, len(blocks))
	if nil == v {
		return canonical
	}
	for i := range blocks {
		if v.Verify(&blocks[i]) {
			canonical = append(canonical, blocks[i])
		}
	}
	return canonical
}
