// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package station

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krisys_station_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "krisys_station_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "krisys_station_rate_limited_total",
		Help: "Requests refused by the per client limiter",
	})

	flushedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "krisys_station_flushed_total",
		Help: "Messages pushed to the authority by outcome",
	}, []string{"outcome"})
)
