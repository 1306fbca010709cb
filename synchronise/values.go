// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package synchronise

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// decode one untrusted JSON object keeping numbers as json.Number
func decodeObject(raw json.RawMessage) (map[string]interface{}, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]interface{}
	if err := dec.Decode(&obj); nil != err || nil == obj {
		return nil, false
	}
	return obj, true
}

// finite number from a JSON number or a numeric string
func number(v interface{}) (float64, bool) {
	var f float64
	var err error
	switch n := v.(type) {
	case json.Number:
		f, err = strconv.ParseFloat(string(n), 64)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, false
	}
	if nil != err || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// number within [low, high]
func numberInRange(v interface{}, low float64, high float64) (float64, bool) {
	f, ok := number(v)
	if !ok || f < low || f > high {
		return 0, false
	}
	return f, true
}

// whole number within [low, high]
func integerInRange(v interface{}, low float64, high float64) (int64, bool) {
	f, ok := numberInRange(v, low, high)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// millisecond timestamp within [0, high], fractions dropped
func millis(v interface{}, high float64) (int64, bool) {
	f, ok := numberInRange(v, 0, high)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// string value, not present or not a string gives false
func text(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// truncate to at most limit characters
func clamp(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count += 1
	}
	return s
}

// identifier: kept verbatim, so a padded or blank value is refused
// rather than rewritten into some other peer's key
func identifier(v interface{}) (string, bool) {
	s, ok := text(v)
	if !ok {
		return "", false
	}
	if "" == s || len(s) > MaxIdentifierLength || s != strings.TrimSpace(s) {
		return "", false
	}
	return s, true
}
