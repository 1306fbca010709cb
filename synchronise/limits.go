// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise

import (
	"time"
)

// PayloadVersion - the only payload layout understood
const PayloadVersion = 1

// ingest limits
const (
	MaxQueuedPerPayload     = 100
	MaxConfirmedPerPayload  = 500
	MaxPerOrigin            = 50
	MaxBlocksPerPayload     = 50
	MaxMessageLength        = 8192 // longer messages are dropped, not truncated
	MaxAddressesPerTx       = 16
	MaxAddressLength        = 128
	MaxStationAddressLength = 128
	MaxTypeFieldLength      = 32
	MaxIdentifierLength     = 128 // device, crisis, transaction and relay ids
)

// ExportBlockSuffix - number of chain blocks included in an export
const ExportBlockSuffix = 10

// UnknownOrigin - origin_device for entries that do not state one
const UnknownOrigin = "unknown"

// timestamps may be at most this far in the future
const futureAllowance = 24 * time.Hour
