// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.


package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/transactionrecord"
)

const unblockedWithin = 2 * time.Second

// run f in the background and report whether it finished in time
func finishes(f func()) bool {
	done := make(chan struct{})
	go func() {
		f()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(unblockedWithin):
		return false
	}
}

func TestSlowAuthorityDoesNotBlockRefreshReaders(t *testing.T) {
	a := setupTestLogger(t)
	defer teardownTestLogger()

	e, m, ctl := newEngine(t, a.Key)
	defer ctl.Finish()

	entered := make(chan struct{})
	release := make(chan struct{})
	m.EXPECT().FetchCrisisMetadata(gomock.Any()).DoAndReturn(
		func(ctx context.Context) (*authority.CrisisMetadata, error) {
			close(entered)
			<-release
			return crisis(a), nil
		})
	m.EXPECT().FetchCanonicalCandidates(gomock.Any()).DoAndReturn(
		func(ctx context.Context) ([]blockrecord.Block, error) {
			return a.Chain(2), nil
		})

	refreshed := make(chan error, 1)
	go func() {
		_, err := e.Refresh(context.Background())
		refreshed <- err
	}()
	<-entered

	assert.True(t, finishes(func() {
		_, err := e.Export()
		assert.Nil(t, err, "export error")
	}), "export waited for the authority")
	assert.True(t, finishes(func() {
		assert.Nil(t, e.Reset(), "reset error")
	}), "reset waited for the authority")
	assert.True(t, finishes(func() {
		_ = e.Status()
	}), "status waited for the authority")

	close(release)
	assert.Nil(t, <-refreshed, "refresh error")
	assert.Equal(t, 2, e.Chain().Height(), "refresh applied after the reset")
}

func TestSlowSubmitDoesNotBlockReset(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	e, m, ctl := newEngine(t, nil)
	defer ctl.Finish()

	queueOffline(t, e, m, "r1")

	entered := make(chan struct{})
	release := make(chan struct{})
	m.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, tx transactionrecord.Transaction) error {
			close(entered)
			<-release
			return nil
		})

	drained := make(chan error, 1)
	go func() {
		_, err := e.ProcessQueue(context.Background())
		drained <- err
	}()
	<-entered

	assert.True(t, finishes(func() {
		assert.Nil(t, e.Reset(), "reset error")
	}), "reset waited for submit")

	close(release)
	assert.Nil(t, <-drained, "process queue error")
	assert.Equal(t, 0, e.Queue().Count(), "queue empty")
	assert.True(t, e.Ledger().IsConfirmed("r1"), "late success still recorded")
}
