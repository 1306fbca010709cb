// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord_test

import (
	"testing"

	"github.com/krisys/krisys/fixtures"
)

var testAuthority *fixtures.Authority

// one key pair for the whole package, generation is slow
func authority(t *testing.T) *fixtures.Authority {
	if nil == testAuthority {
		a, err := fixtures.NewAuthority("test-authority")
		if nil != err {
			t.Fatalf("authority error: %s", err)
		}
		testAuthority = a
	}
	return testAuthority
}
