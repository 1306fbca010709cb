// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"context"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/background"
	"github.com/krisys/krisys/fault"
)

// limits on background intervals
const (
	MinimumInterval = 5 * time.Second
	DefaultRefresh  = 60 * time.Second
	DefaultFlush    = 30 * time.Second
	requestTimeout  = 30 * time.Second
)

// Refresher - background process polling the authority
type Refresher struct {
	engine   *Engine
	log      *logger.L
	interval time.Duration
}

// Flusher - background process resubmitting the queue
//
// a station flushes everything it holds, a device stops at the first
// network failure
type Flusher struct {
	engine   *Engine
	log      *logger.L
	interval time.Duration
	station  bool
}

// NewRefresher - refresh every interval
func NewRefresher(e *Engine, interval time.Duration) *Refresher {
	return &Refresher{
		engine:   e,
		log:      logger.New("refresher"),
		interval: clampInterval(interval, DefaultRefresh),
	}
}

// NewFlusher - flush every interval
func NewFlusher(e *Engine, interval time.Duration, station bool) *Flusher {
	return &Flusher{
		engine:   e,
		log:      logger.New("flusher"),
		interval: clampInterval(interval, DefaultFlush),
		station:  station,
	}
}

// Processes - the standard set for a device or station
func (e *Engine) Processes(refresh time.Duration, flush time.Duration, station bool) background.Processes {
	return background.Processes{
		NewRefresher(e, refresh),
		NewFlusher(e, flush, station),
	}
}

// Run - loop until shutdown
func (r *Refresher) Run(args interface{}, shutdown <-chan struct{}) {
	log := r.log
	log.Infof("starting…  interval: %s", r.interval)

	ctx, cancel := shutdownContext(shutdown)
	defer cancel()

	r.once(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			r.once(ctx)
		}
	}
	log.Info("stopped")
}

func (r *Refresher) once(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, requestTimeout)
	defer cancel()

	if _, err := r.engine.Refresh(ctx); nil != err {
		r.log.Debugf("refresh error: %s", err)
		return
	}

	// back online: deliver what was held
	if 0 != r.engine.queue.PendingCount() {
		if _, err := r.engine.ProcessQueue(ctx); nil != err && !fault.IsErrNetwork(err) {
			r.log.Errorf("process queue error: %s", err)
		}
	}
}

// Run - loop until shutdown
func (f *Flusher) Run(args interface{}, shutdown <-chan struct{}) {
	log := f.log
	log.Infof("starting…  interval: %s  station: %t", f.interval, f.station)

	ctx, cancel := shutdownContext(shutdown)
	defer cancel()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			f.once(ctx)
		}
	}
	log.Info("stopped")
}

func (f *Flusher) once(parent context.Context) {
	if 0 == f.engine.queue.PendingCount() {
		return
	}

	ctx, cancel := context.WithTimeout(parent, requestTimeout)
	defer cancel()

	var err error
	if f.station {
		_, err = f.engine.Flush(ctx)
	} else {
		_, err = f.engine.ProcessQueue(ctx)
	}
	if nil != err {
		f.log.Debugf("flush error: %s", err)
	}
}

// context cancelled when shutdown closes
func shutdownContext(shutdown <-chan struct{}) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func clampInterval(interval time.Duration, fallback time.Duration) time.Duration {
	if 0 == interval {
		return fallback
	}
	if interval < MinimumInterval {
		return MinimumInterval
	}
	return interval
}
