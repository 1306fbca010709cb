// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.


package main

import (
	"github.com/krisys/krisys/fault"
)

// common errors - keep in alphabetic order
const (
	ErrInvalidCount     = fault.InvalidError("count must not be negative")
	ErrMissingAddress   = fault.InvalidError("at least one address is required")
	ErrMissingFile      = fault.InvalidError("file name is required")
	ErrMissingKey       = fault.InvalidError("key file is required")
	ErrMissingMessage   = fault.InvalidError("message is required")
	ErrMissingName      = fault.InvalidError("identity name is required")
	ErrMissingOutput    = fault.InvalidError("output prefix is required")
	ErrMissingStation   = fault.InvalidError("from address is required")
	ErrUnverifiedBlocks = fault.InvalidError("one or more blocks failed verification")
)
