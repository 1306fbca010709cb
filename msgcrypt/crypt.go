// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package msgcrypt

import (
	"bytes"
	"io/ioutil"
	"strings"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/armor"
	// keys from other tools often state no hash preference and
	// openpgp then requires RIPEMD-160
	_ "golang.org/x/crypto/ripemd160"

	"github.com/krisys/krisys/fault"
)

const messageType = "PGP MESSAGE"

// Crypter - keyed encrypt/decrypt capability
type Crypter interface {
	Encrypt(plaintext string, recipientKey string) (string, error)
	Decrypt(ciphertext string, privateKey string, passphrase []byte) (string, error)
}

// OpenPGP - the production Crypter
type OpenPGP struct{}

// Encrypt - see package function
func (OpenPGP) Encrypt(plaintext string, recipientKey string) (string, error) {
	return Encrypt(plaintext, recipientKey)
}

// Decrypt - see package function
func (OpenPGP) Decrypt(ciphertext string, privateKey string, passphrase []byte) (string, error) {
	return Decrypt(ciphertext, privateKey, passphrase)
}

// Encrypt - armored message readable only by the holders of the
// private keys matching recipientKey
func Encrypt(plaintext string, recipientKey string) (string, error) {
	recipients, err := openpgp.ReadArmoredKeyRing(strings.NewReader(recipientKey))
	if nil != err {
		return "", err
	}
	if 0 == len(recipients) {
		return "", fault.ErrInvalidKey
	}

	buffer := &bytes.Buffer{}
	w, err := armor.Encode(buffer, messageType, nil)
	if nil != err {
		return "", err
	}

	pt, err := openpgp.Encrypt(w, recipients, nil, nil, nil)
	if nil != err {
		return "", fault.ErrEncryptionFailed
	}
	_, err = pt.Write([]byte(plaintext))
	if nil != err {
		return "", fault.ErrEncryptionFailed
	}
	if err := pt.Close(); nil != err {
		return "", fault.ErrEncryptionFailed
	}
	if err := w.Close(); nil != err {
		return "", fault.ErrEncryptionFailed
	}
	return buffer.String(), nil
}

// Decrypt - every failure is reported as fault.ErrDecryptionFailed
func Decrypt(ciphertext string, privateKey string, passphrase []byte) (string, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(privateKey))
	if nil != err || 0 == len(keyring) {
		return "", fault.ErrDecryptionFailed
	}

	if err := unlock(keyring, passphrase); nil != err {
		return "", fault.ErrDecryptionFailed
	}

	block, err := armor.Decode(strings.NewReader(ciphertext))
	if nil != err || messageType != block.Type {
		return "", fault.ErrDecryptionFailed
	}

	md, err := openpgp.ReadMessage(block.Body, keyring, nil, nil)
	if nil != err {
		return "", fault.ErrDecryptionFailed
	}

	plaintext, err := ioutil.ReadAll(md.UnverifiedBody)
	if nil != err {
		return "", fault.ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// decrypt any protected private keys in place
func unlock(keyring openpgp.EntityList, passphrase []byte) error {
	for _, entity := range keyring {
		if nil != entity.PrivateKey && entity.PrivateKey.Encrypted {
			if err := entity.PrivateKey.Decrypt(passphrase); nil != err {
				return err
			}
		}
		for _, subkey := range entity.Subkeys {
			if nil != subkey.PrivateKey && subkey.PrivateKey.Encrypted {
				if err := subkey.PrivateKey.Decrypt(passphrase); nil != err {
					return err
				}
			}
		}
	}
	return nil
}
