// Package pprof runs the profiling endpoints on their own listener, kept off
// the public API port.
package pprof

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"
)

const (
	pprofURL        = "/debug/pprof/"
	cmdlineURL      = "/debug/pprof/cmdline"
	profileURL      = "/debug/pprof/profile"
	symbolURL       = "/debug/pprof/symbol"
	traceURL        = "/debug/pprof/trace"
	goroutineURL    = "/debug/pprof/goroutine"
	heapURL         = "/debug/pprof/heap"
	threadcreateURL = "/debug/pprof/threadcreate"
	blockURL        = "/debug/pprof/block"
)

// Config holds the profiling server's listen parameters.
type Config struct {
	Host              string
	Port              int
	ReadHeaderTimeout time.Duration
}

// Server serves the pprof handlers.
type Server struct {
	address           string
	readHeaderTimeout time.Duration
	httpServer        *http.Server
}

// NewServer creates a profiling server from cfg.
func NewServer(cfg Config) *Server {
	return &Server{
		address:           fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		readHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// Run starts the server and blocks until it stops.
func (s *Server) Run(_ context.Context) error {
	router := http.NewServeMux()
	router.HandleFunc(pprofURL, pprof.Index)
	router.HandleFunc(cmdlineURL, pprof.Cmdline)
	router.HandleFunc(profileURL, pprof.Profile)
	router.HandleFunc(symbolURL, pprof.Symbol)
	router.HandleFunc(traceURL, pprof.Trace)
	router.Handle(goroutineURL, pprof.Handler("goroutine"))
	router.Handle(heapURL, pprof.Handler("heap"))
	router.Handle(threadcreateURL, pprof.Handler("threadcreate"))
	router.Handle(blockURL, pprof.Handler("block"))

	s.httpServer = &http.Server{
		Addr:              s.address,
		Handler:           router,
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	return s.httpServer.ListenAndServe()
}

// Close shuts the server down.
func (s *Server) Close() error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}
