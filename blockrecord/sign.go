// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"bytes"
	"strings"

	"golang.org/x/crypto/openpgp"

	"github.com/krisys/krisys/fault"
)

// Sign - set the block signature from a private key
func Sign(block *Block, signer *openpgp.Entity) error {
	if nil == signer || nil == signer.PrivateKey {
		return fault.ErrInvalidKey
	}

	buffer := &bytes.Buffer{}
	err := openpgp.ArmoredDetachSign(buffer, signer, bytes.NewReader(CanonicalHeader(block)), nil)
	if nil != err {
		return err
	}
	block.Signature = buffer.String()
	return nil
}

// ReadSigningKey - first private key in an armored key block,
// decrypted with passphrase if it is protected
func ReadSigningKey(armored string, passphrase []byte) (*openpgp.Entity, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armored))
	if nil != err {
		return nil, err
	}

	for _, entity := range keyring {
		if nil == entity.PrivateKey {
			continue
		}
		if entity.PrivateKey.Encrypted {
			err = entity.PrivateKey.Decrypt(passphrase)
			if nil != err {
				return nil, err
			}
		}
		return entity, nil
	}
	return nil, fault.ErrInvalidKey
}
