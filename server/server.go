// Copyright 2025 The refsync Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server is a small HTTP exposition surface used by `refsync run
// --listen` to let operators scrape sync metrics while an orchestration is
// running.
package server

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/refsync/refsync/logger"
	"github.com/refsync/refsync/metrics"
)

// Config controls whether and where the exposition server listens.
type Config struct {
	Enabled bool          `config:"enabled"`
	Address string        `config:"address"`
	Timeout time.Duration `config:"timeout"`
}

// Server is a minimal mux-routed HTTP server.
type Server struct {
	config Config
	router *mux.Router
	server *http.Server
}

// New returns a Server, or a nil pointer when config.Enabled is false;
// callers must check before using it.
func New(config Config) *Server {
	if !config.Enabled {
		return nil
	}

	router := mux.NewRouter()
	return &Server{
		config: config,
		router: router,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}
}

// ListenAndServe blocks, serving registered routes until the listener
// fails.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	logger.Infof("server listening on %s", s.config.Address)
	return s.server.Serve(l)
}

// RegisterGetRoute registers a GET handler at path.
func (s *Server) RegisterGetRoute(path string, f http.HandlerFunc) {
	s.router.Methods(http.MethodGet).Path(path).HandlerFunc(f)
}

// RegisterDefaultRoutes wires the standard `/metrics` and `/healthz`
// routes used by `refsync run --listen`.
func (s *Server) RegisterDefaultRoutes() {
	metricsHandler := promhttp.Handler()
	s.RegisterGetRoute("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.ObserveUptime()
		metricsHandler.ServeHTTP(w, r)
	})
	s.RegisterGetRoute("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
