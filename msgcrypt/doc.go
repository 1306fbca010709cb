// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package msgcrypt - OpenPGP encryption of message bodies
//
// message_data is opaque to the rest of the system, this package is
// the only place that knows it is an armored OpenPGP message
package msgcrypt
