// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// Errors are grouped into classes so callers can decide what to do
// without knowing the exact instance, e.g. a NetworkError means that
// an outbound transaction should be queued for a later retry while an
// ApplicationError must be shown to the user and never retried
package fault
