// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"testing"

	"github.com/mia-platform/trendprep/internal/server"
)

var _ server.Server = &Server{}

type Route struct {
	Method  string
	Path    string
	Handler server.Handler
}

// Server records the registered routes and simulates the start and stop
// lifecycle without listening on a real socket.
type Server struct {
	tb               testing.TB
	RegisteredRoutes []Route

	startedChan chan struct{}
	closedChan  chan struct{}
}

func NewFakeServer(tb testing.TB) *Server {
	tb.Helper()

	return &Server{
		tb:          tb,
		startedChan: make(chan struct{}),
		closedChan:  make(chan struct{}),
	}
}

func (s *Server) AddRoute(method string, path string, handler server.Handler) {
	s.tb.Helper()
	s.RegisteredRoutes = append(s.RegisteredRoutes, Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
}

func (s *Server) Start() error {
	s.tb.Helper()
	close(s.startedChan)
	<-s.closedChan
	return nil
}

func (s *Server) Stop() error {
	s.tb.Helper()
	close(s.closedChan)
	return nil
}

func (s *Server) StartAsync(_ context.Context) {
	s.tb.Helper()
}

// StartedServer is closed when Start has been invoked.
func (s *Server) StartedServer() <-chan struct{} {
	s.tb.Helper()
	return s.startedChan
}
