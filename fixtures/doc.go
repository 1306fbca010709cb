// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - a throwaway crisis authority for tests
//
// generates an OpenPGP signing key and issues properly linked and
// signed blocks so package tests exercise the real verifier
package fixtures
