// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/fixtures"
)

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("no %s event", what)
	}
}

func TestFileWatcher(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	name := writeFile(t, filepath.Join(t.TempDir(), "authority.asc"), "initial")
	channel := WatcherChannel{
		change: make(chan struct{}, 1),
		remove: make(chan struct{}, 1),
	}

	w, err := newFileWatcher(name, logger.New("test"), channel)
	assert.Nil(t, err, "new watcher")
	assert.Nil(t, w.Start(), "start")
	defer w.Stop()

	writeFile(t, name, "changed")
	waitFor(t, channel.change, "change")

	assert.Nil(t, os.Remove(name), "remove")
	waitFor(t, channel.remove, "remove")
}

func TestFileWatcherMissingFile(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	_, err := newFileWatcher(filepath.Join(t.TempDir(), "none"), logger.New("test"), WatcherChannel{})
	assert.Equal(t, fault.ErrNotFound, err, "missing")
}

func TestLoadTrustedKey(t *testing.T) {
	setupTestLogger(t)
	defer teardownTestLogger()

	a, err := fixtures.NewAuthority("krisysd-test")
	assert.Nil(t, err, "authority")

	dir := t.TempDir()
	key, err := loadTrustedKey(writeFile(t, filepath.Join(dir, "good.asc"), a.PublicKey))
	assert.Nil(t, err, "load")
	assert.Equal(t, a.Key.Fingerprint(), key.Fingerprint(), "fingerprint")

	_, err = loadTrustedKey(writeFile(t, filepath.Join(dir, "bad.asc"), "garbage"))
	assert.NotNil(t, err, "garbage")

	_, err = loadTrustedKey(filepath.Join(dir, "missing.asc"))
	assert.NotNil(t, err, "missing")
}
