// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package station

import (
	"crypto/tls"
	"io/ioutil"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"

	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/util"
)

// self signed certificates last ten years
const certificateLifetime = 10 * 365 * 24 * time.Hour

// LoadCertificate - TLS configuration from PEM files and the SHA3
// fingerprint devices pin
func LoadCertificate(certificateFileName string, keyFileName string) (*tls.Config, util.FingerprintBytes, error) {
	var fingerprint util.FingerprintBytes

	if !util.EnsureFileExists(certificateFileName) {
		return nil, fingerprint, fault.ErrNotFound
	}
	if !util.EnsureFileExists(keyFileName) {
		return nil, fingerprint, fault.ErrNotFound
	}

	keyPair, err := tls.LoadX509KeyPair(certificateFileName, keyFileName)
	if nil != err {
		return nil, fingerprint, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{"http/1.1"},
	}
	return tlsConfiguration, util.Fingerprint(keyPair.Certificate[0]), nil
}

// MakeSelfSignedCertificate - create a certificate and key pair,
// refusing to overwrite either file
func MakeSelfSignedCertificate(name string, certificateFileName string, keyFileName string, override bool, extraHosts []string) error {
	if util.EnsureFileExists(certificateFileName) {
		return fault.ErrCertificateExists
	}
	if util.EnsureFileExists(keyFileName) {
		return fault.ErrKeyFileExists
	}

	org := "krisys station self signed cert for: " + name
	cert, key, err := certgen.NewTLSCertPair(org, time.Now().Add(certificateLifetime), override, extraHosts)
	if nil != err {
		return err
	}

	if err := ioutil.WriteFile(certificateFileName, cert, 0o666); nil != err {
		return err
	}
	if err := ioutil.WriteFile(keyFileName, key, 0o600); nil != err {
		_ = os.Remove(certificateFileName)
		return err
	}
	return nil
}
