// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mode - process wide connectivity state
//
// Offline means the authority could not be reached on the last
// attempt and the device is working from cached data
package mode

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/fault"
)

// Mode - type to hold the mode
type Mode int

// all possible modes
const (
	Stopped Mode = iota
	Offline
	Online
	maximum
)

var globalData struct {
	sync.RWMutex
	log     *logger.L
	mode    Mode
	changed time.Time

	// set once during initialise
	initialised bool
}

// Initialise - set up the mode system, start offline until the
// authority has been reached
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("mode")
	globalData.log.Info("starting…")

	globalData.mode = Offline
	globalData.changed = time.Now()

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - shutdown mode handling
func Finalise() error {
	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	Set(Stopped)

	// finally...
	globalData.Lock()
	globalData.initialised = false
	globalData.Unlock()

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// Set - change mode, only transitions are logged
func Set(mode Mode) {
	if mode < Stopped || mode >= maximum {
		if nil != globalData.log {
			globalData.log.Errorf("ignore invalid set: %d", mode)
		}
		return
	}

	globalData.Lock()
	previous := globalData.mode
	if previous != mode {
		globalData.mode = mode
		globalData.changed = time.Now()
	}
	globalData.Unlock()

	if previous != mode && nil != globalData.log {
		globalData.log.Infof("set: %s", mode)
		if Offline == mode {
			globalData.log.Warn("authority unreachable: using cached data")
		}
	}
}

// Is - detect mode
func Is(mode Mode) bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return mode == globalData.mode
}

// IsNot - detect mode
func IsNot(mode Mode) bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return mode != globalData.mode
}

// Since - time of the last transition
func Since() time.Time {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.changed
}

// String - current mode represented as a string
func String() string {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.mode.String()
}

// String - mode represented as a string
func (m Mode) String() string {
	switch m {
	case Stopped:
		return "Stopped"
	case Offline:
		return "Offline"
	case Online:
		return "Online"
	default:
		return "*Unknown*"
	}
}
