// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package station

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/krisys/krisys/engine"
	"github.com/krisys/krisys/fault"
	"github.com/krisys/krisys/util"
)

const (
	readWriteTimeout = 30 * time.Second
	maxHeaderBytes   = 1 << 20
)

// Server - the station's HTTP listeners
type Server struct {
	log         *logger.L
	listen      []string
	tlsConfig   *tls.Config
	fingerprint util.FingerprintBytes
	router      *mux.Router
	servers     []*http.Server
}

// New - validate the configuration and build the router; nothing is
// listening until Start
func New(configuration *Configuration, e *engine.Engine, authorityURL string) (*Server, error) {
	log := logger.New("station")

	if 0 == len(configuration.Listen) {
		return nil, fault.ErrListenDisabled
	}

	listen := make([]string, 0, len(configuration.Listen))
	for _, address := range configuration.Listen {
		canonical, err := util.CanonicalListenAddress(address)
		if nil != err {
			log.Errorf("listen: %q  error: %s", address, err)
			return nil, err
		}
		listen = append(listen, canonical)
	}

	s := &Server{
		log:    log,
		listen: listen,
	}

	if "" != configuration.Certificate {
		tlsConfig, fingerprint, err := LoadCertificate(configuration.Certificate, configuration.PrivateKey)
		if nil != err {
			log.Errorf("certificate: %q  error: %s", configuration.Certificate, err)
			return nil, err
		}
		s.tlsConfig = tlsConfig
		s.fingerprint = fingerprint
		log.Infof("SHA3-256 fingerprint: %s", fingerprint)
	}

	s.router = NewRouter(configuration, e, authorityURL)
	return s, nil
}

// NewRouter - all station routes with their middleware
func NewRouter(configuration *Configuration, e *engine.Engine, authorityURL string) *mux.Router {
	h := &handler{
		log:          logger.New("station-http"),
		engine:       e,
		authorityURL: authorityURL,
		start:        time.Now(),
	}

	limiter := newClientLimiter(configuration.RequestRate)

	r := mux.NewRouter()
	r.Use(requestID, instrument, limiter.middleware, bodyLimit(configuration.MaximumBody))

	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/mesh/sync", h.sync).Methods(http.MethodPost)
	r.HandleFunc("/station/flush", h.flush).Methods(http.MethodPost)
	r.HandleFunc("/station/status", h.status).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(h.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)
	return r
}

// Handler - the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Fingerprint - of the TLS certificate, zero for plain HTTP
func (s *Server) Fingerprint() util.FingerprintBytes {
	return s.fingerprint
}

// Start - bind every listen address then serve in the background
func (s *Server) Start() error {
	listeners := make([]net.Listener, 0, len(s.listen))
	for _, address := range s.listen {
		ln, err := net.Listen("tcp", address)
		if nil != err {
			for _, l := range listeners {
				_ = l.Close()
			}
			s.log.Errorf("listen: %q  error: %s", address, err)
			return err
		}
		if nil != s.tlsConfig {
			ln = tls.NewListener(ln, s.tlsConfig)
		}
		listeners = append(listeners, ln)
	}

	for i, ln := range listeners {
		server := &http.Server{
			Handler:        s.router,
			ReadTimeout:    readWriteTimeout,
			WriteTimeout:   readWriteTimeout,
			MaxHeaderBytes: maxHeaderBytes,
		}
		s.servers = append(s.servers, server)

		s.log.Infof("starting server on: %q  tls: %t", s.listen[i], nil != s.tlsConfig)
		go func(server *http.Server, ln net.Listener) {
			if err := server.Serve(ln); nil != err && http.ErrServerClosed != err {
				s.log.Errorf("serve error: %s", err)
			}
		}(server, ln)
	}
	return nil
}

// Stop - graceful shutdown of all listeners
func (s *Server) Stop(ctx context.Context) {
	for _, server := range s.servers {
		if err := server.Shutdown(ctx); nil != err {
			s.log.Warnf("shutdown error: %s", err)
		}
	}
	s.servers = nil
}
