// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package station

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// maximum distinct clients tracked before the limiter table is reset
const maximumClients = 4096

// clientLimiter - token bucket per remote address
type clientLimiter struct {
	sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newClientLimiter(requestsPerMinute int) *clientLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestRate
	}
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    requestsPerMinute,
	}
}

func (c *clientLimiter) get(client string) *rate.Limiter {
	c.Lock()
	defer c.Unlock()

	l, ok := c.limiters[client]
	if !ok {
		if len(c.limiters) >= maximumClients {
			c.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(c.rate, c.burst)
		c.limiters[client] = l
	}
	return l
}

func (c *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.get(clientAddress(r)).Allow() {
			rateLimitedTotal.Inc()
			sendError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// remote IP without port; devices connect directly so forwarding
// headers are not trusted
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if nil != err {
		return r.RemoteAddr
	}
	return host
}

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDHeader - echoed, or generated when absent
const RequestIDHeader = "X-Request-ID"

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if "" == id || len(id) > 128 {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID - the id assigned to the request carried by ctx
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func bodyLimit(maximum int64) func(http.Handler) http.Handler {
	if maximum <= 0 {
		maximum = DefaultMaximumBody
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if nil != r.Body {
				r.Body = http.MaxBytesReader(w, r.Body, maximum)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// status capturing writer for metrics
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// route templates keep the label set small
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); nil != current {
			if template, err := current.GetPathTemplate(); nil == err {
				route = template
			}
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
