// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package station_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"

	"github.com/krisys/krisys/authority"
	"github.com/krisys/krisys/authority/mocks"
	"github.com/krisys/krisys/engine"
	"github.com/krisys/krisys/fixtures"
	"github.com/krisys/krisys/mode"
	"github.com/krisys/krisys/station"
	"github.com/krisys/krisys/storage"
)

const testingDirName = "testing"

var (
	testNow       = time.Unix(1700000000, 0)
	testAuthority *fixtures.Authority
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

	if nil == testAuthority {
		a, err := fixtures.NewAuthority("station-test")
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

// newEngine - a memory backed engine; a nil controller gives an
// engine without an authority
func newEngine(t *testing.T, deviceID string, ctl *gomock.Controller) (*engine.Engine, *mocks.MockAuthority) {
	var m *mocks.MockAuthority
	var a authority.Authority
	if nil != ctl {
		m = mocks.NewMockAuthority(ctl)
		a = m
	}
	e, err := engine.New(&engine.Configuration{
		Handle:    storage.NewMemory(),
		Authority: a,
		Key:       testAuthority.Key,
		DeviceID:  deviceID,
		CrisisID:  "crisis-1",
	})
	if nil != err {
		t.Fatalf("new engine error: %s", err)
	}
	e.SetClock(fixedClock)
	return e, m
}

func serve(router http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if "" == body {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func newRouter(e *engine.Engine) http.Handler {
	return station.NewRouter(&station.Configuration{RequestRate: 6000}, e, "http://authority.example:5000")
}
