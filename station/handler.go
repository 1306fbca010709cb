// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package station

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/krisys/krisys/engine"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/mode"
)

// the argument passed to the handlers
type handler struct {
	log          *logger.L
	engine       *engine.Engine
	authorityURL string
	start        time.Time
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	type reply struct {
		Role   string `json:"role"`
		Status string `json:"status"`
		Mode   string `json:"mode"`
		Uptime string `json:"uptime"`
	}
	sendReply(w, http.StatusOK, reply{
		Role:   "station",
		Status: "ok",
		Mode:   mode.String(),
		Uptime: time.Since(h.start).Round(time.Second).String(),
	})
}

// ingest a device payload and answer with the station's own
//
// an unusable payload is logged and the station payload is still
// returned so the device can learn from it
func (h *handler) sync(w http.ResponseWriter, r *http.Request) {
	raw, err := ioutil.ReadAll(r.Body)
	if nil != err {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		sendError(w, "bad request", http.StatusBadRequest)
		return
	}

	id := RequestID(r.Context())
	result, err := h.engine.Import(raw)
	if nil != err {
		h.log.Warnf("sync: %s  from: %s  rejected: %s", id, clientAddress(r), err)
	} else {
		h.log.Infof("sync: %s  from: %s  queued: %d  confirmations: %d  blocks: %d  dropped: %d",
			id, clientAddress(r),
			result.Import.Queued, result.Import.ConfirmationsChanged,
			result.Merge.Accepted, result.Report.QueuedDropped+result.Report.ConfirmedDropped+result.Report.BlocksDropped)
	}

	payload, err := h.engine.Export()
	if nil != err {
		h.log.Errorf("sync: %s  export error: %s", id, err)
		sendInternalServerError(w)
		return
	}
	sendJSON(w, http.StatusOK, payload)
}

// FlushReply - response to /station/flush
type FlushReply struct {
	Status     string   `json:"status"`
	Message    string   `json:"message,omitempty"`
	CentralURL string   `json:"central_url,omitempty"`
	Attempted  int      `json:"attempted"`
	Success    int      `json:"success"`
	Failed     int      `json:"failed"`
	Pruned     int      `json:"pruned"`
	Errors     []string `json:"errors"`
}

func (h *handler) flush(w http.ResponseWriter, r *http.Request) {
	if 0 == h.engine.Queue().PendingCount() {
		sendReply(w, http.StatusOK, FlushReply{
			Status:  "ok",
			Message: "No pending messages to flush",
			Errors:  []string{},
		})
		return
	}

	result, err := h.engine.Flush(r.Context())
	if fault.ErrNoAuthority == err {
		sendError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if nil != err {
		h.log.Errorf("flush: %s  error: %s", RequestID(r.Context()), err)
		sendInternalServerError(w)
		return
	}

	flushedTotal.WithLabelValues("success").Add(float64(result.Success))
	flushedTotal.WithLabelValues("failed").Add(float64(result.Failed))

	sendReply(w, http.StatusOK, FlushReply{
		Status:     "ok",
		CentralURL: h.authorityURL,
		Attempted:  result.Attempted,
		Success:    result.Success,
		Failed:     result.Failed,
		Pruned:     result.Pruned,
		Errors:     result.Errors,
	})
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	sendReply(w, http.StatusOK, h.engine.Status())
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	sendNotFound(w)
}

func (h *handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	sendMethodNotAllowed(w)
}

func sendReply(w http.ResponseWriter, code int, data interface{}) {
	text, err := json.Marshal(data)
	if nil != err {
		sendInternalServerError(w)
		return
	}
	sendJSON(w, code, text)
}

func sendJSON(w http.ResponseWriter, code int, text []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(text)
}

// selected errors as required above
func sendNotFound(w http.ResponseWriter) {
	sendError(w, "not found", http.StatusNotFound)
}
func sendMethodNotAllowed(w http.ResponseWriter) {
	sendError(w, "method not allowed", http.StatusMethodNotAllowed)
}
func sendInternalServerError(w http.ResponseWriter) {
	sendError(w, "internal server error", http.StatusInternalServerError)
}

// to compose JSON error messages
type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// output an error with a JSON body
func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		// manually composed error just incase JSON fails
		http.Error(w, `{"code":500,"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}
	sendJSON(w, code, text)
}
