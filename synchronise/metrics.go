// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	payloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krisys_sync_payloads_total",
		Help: "Sync payloads ingested",
	}, []string{"result"})

	blocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krisys_sync_blocks_total",
		Help: "Blocks offered by peers",
	}, []string{"outcome"})

	queuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krisys_sync_queued_total",
		Help: "Queued messages offered by peers",
	}, []string{"outcome"})

	confirmationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "krisys_sync_confirmations_total",
		Help: "Confirmations learned from peers",
	})
)
