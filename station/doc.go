// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package station - HTTP relay point for devices without a route to
// the authority
//
// devices POST their sync payload to /mesh/sync and receive the
// station's payload in return; /station/flush pushes everything the
// station holds to the authority once it can be reached
package station
