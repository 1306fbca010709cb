// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority

import (
	"context"

	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/transactionrecord"
)

// ChainFetcher - obtain the authority's view of the chain, unverified
type ChainFetcher interface {
	FetchCanonicalCandidates(ctx context.Context) ([]blockrecord.Block, error)
}

// CrisisFetcher - obtain the current crisis description
type CrisisFetcher interface {
	FetchCrisisMetadata(ctx context.Context) (*CrisisMetadata, error)
}

// Submitter - post one transaction
//
// a fault.NetworkError means the authority could not be reached and
// the transaction should be queued; a fault.ApplicationError means it
// was refused and must not be retried
type Submitter interface {
	Submit(ctx context.Context, tx transactionrecord.Transaction) error
}

// Authority - everything a device needs from the authority
type Authority interface {
	ChainFetcher
	CrisisFetcher
	Submitter
}

// CrisisMetadata - description of the crisis a device belongs to
type CrisisMetadata struct {
	ID             string `json:"id,omitempty"` // older authorities omit it
	Name           string `json:"name"`
	Organization   string `json:"organization"`
	Contact        string `json:"contact"`
	Description    string `json:"description"`
	CreatedAt      string `json:"created_at"`
	BlockPublicKey string `json:"block_public_key"` // armored
}
