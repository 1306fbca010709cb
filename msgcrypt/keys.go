// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package msgcrypt

import (
	"bytes"
	"crypto"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	"golang.org/x/crypto/openpgp/packet"
	"golang.org/x/crypto/openpgp/s2k"
)

// DefaultKeyBits - RSA size for generated keys
const DefaultKeyBits = 2048

// GenerateKey - new RSA key pair with a single identity
func GenerateKey(name string, comment string, email string, bits int) (*openpgp.Entity, error) {
	if bits <= 0 {
		bits = DefaultKeyBits
	}
	config := &packet.Config{
		RSABits:       bits,
		DefaultHash:   crypto.SHA256,
		DefaultCipher: packet.CipherAES256,
	}
	entity, err := openpgp.NewEntity(name, comment, email, config)
	if nil != err {
		return nil, err
	}

	// without stated preferences an encrypting peer falls back to
	// RIPEMD-160 and CAST5
	hash, _ := s2k.HashToHashId(crypto.SHA256)
	for _, id := range entity.Identities {
		id.SelfSignature.PreferredHash = []uint8{hash}
		id.SelfSignature.PreferredSymmetric = []uint8{uint8(packet.CipherAES256)}
		err := id.SelfSignature.SignUserId(id.UserId.Id, entity.PrimaryKey, entity.PrivateKey, config)
		if nil != err {
			return nil, err
		}
	}
	return entity, nil
}

// ArmorPublicKey - export the public half
func ArmorPublicKey(entity *openpgp.Entity) (string, error) {
	buffer := &bytes.Buffer{}
	w, err := armor.Encode(buffer, openpgp.PublicKeyType, nil)
	if nil != err {
		return "", err
	}
	if err := entity.Serialize(w); nil != err {
		return "", err
	}
	if err := w.Close(); nil != err {
		return "", err
	}
	return buffer.String(), nil
}

// ArmorPrivateKey - export the unprotected private key
func ArmorPrivateKey(entity *openpgp.Entity) (string, error) {
	buffer := &bytes.Buffer{}
	w, err := armor.Encode(buffer, openpgp.PrivateKeyType, nil)
	if nil != err {
		return "", err
	}
	if err := entity.SerializePrivate(w, nil); nil != err {
		return "", err
	}
	if err := w.Close(); nil != err {
		return "", err
	}
	return buffer.String(), nil
}
