// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// FingerprintBytes - digest of a certificate
type FingerprintBytes [32]byte

// Fingerprint - SHA3-256 of a DER certificate
//
// stations print this at start so a device operator can pin it
func Fingerprint(certificate []byte) FingerprintBytes {
	return sha3.Sum256(certificate)
}

// String - lower case hex
func (f FingerprintBytes) String() string {
	return hex.EncodeToString(f[:])
}
