// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/authority/mocks"
	"github.com/krisys/krisys/blockrecord"
	"github.com/krisys/krisys/engine"
	"github.com/krisys/krisys/fixtures"
	"github.com/krisys/krisys/mode"
	"github.com/krisys/krisys/storage"
)

const testingDirName = "testing"

var (
	testNow       = time.Unix(1700000000, 0)
	testAuthority *fixtures.Authority
	testImposter  *fixtures.Authority
)

func fixedClock() time.Time {
	return testNow
}

func removeDir(dirName string) {
	dirPath, _ := filepath.Abs(dirName)
	_ = os.RemoveAll(dirPath)
}

func setupTestLogger(t *testing.T) *fixtures.Authority {
	removeDir(testingDirName)
	_ = os.Mkdir(testingDirName, 0o700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
	_ = mode.Initialise()
	mode.Set(mode.Offline)

	if nil == testAuthority {
		a, err := fixtures.NewAuthority("engine-test")
		if nil != err {
			t.Fatalf("authority error: %s", err)
		}
		testAuthority = a
	}
	return testAuthority
}

func teardownTestLogger() {
	logger.Finalise()
	removeDir(testingDirName)
}

func imposter(t *testing.T) *fixtures.Authority {
	if nil == testImposter {
		a, err := fixtures.NewAuthority("imposter")
		if nil != err {
			t.Fatalf("authority error: %s", err)
		}
		testImposter = a
	}
	return testImposter
}

func crisis(a *fixtures.Authority) *authority.CrisisMetadata {
	return &authority.CrisisMetadata{
		ID:             "crisis-1",
		Name:           "Flood",
		Organization:   "Relief",
		Contact:        "ops@example.org",
		Description:    "river flood",
		CreatedAt:      "2023-11-14T22:13:20Z",
		BlockPublicKey: a.PublicKey,
	}
}

// engine on a fresh memory store with a mock authority
func newEngine(t *testing.T, key *blockrecord.TrustedKey) (*engine.Engine, *mocks.MockAuthority, *gomock.Controller) {
	ctl := gomock.NewController(t)
	m := mocks.NewMockAuthority(ctl)

	e, err := engine.New(&engine.Configuration{
		Handle:    storage.NewMemory(),
		Authority: m,
		Key:       key,
		DeviceID:  "device-a",
		CrisisID:  "crisis-1",
	})
	if nil != err {
		t.Fatalf("new engine error: %s", err)
	}
	e.SetClock(fixedClock)
	return e, m, ctl
}
