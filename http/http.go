package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// ShutdownTimeout is the time given to servers to drain their connections
// once the context passed to ListenAndServe is done.
var ShutdownTimeout = 5 * time.Second

// ListenAndServe runs servers until ctx is done, then shuts them down
// gracefully. It returns once every server stopped.
func ListenAndServe(ctx context.Context, servers ...*http.Server) {
	var wg sync.WaitGroup
	wg.Add(len(servers))

	for _, s := range servers {
		go func(s *http.Server) {
			defer wg.Done()
			serve(s)
		}(s)
	}

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return

	case <-ctx.Done():
		shutdown(servers)
		<-stopped
	}
}

func serve(s *http.Server) {
	start := time.Now()
	logs.WithTag("addr", s.Addr).Info("starting server")

	err := s.ListenAndServe()
	entry := logs.WithTag("addr", s.Addr).
		WithTag("uptime", time.Since(start).String())

	if err == nil || err == http.ErrServerClosed {
		entry.Info("server stopped")
		return
	}
	entry.Error(errors.New("server failed").Wrap(err))
}

func shutdown(servers []*http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(len(servers))

	for _, s := range servers {
		go func(s *http.Server) {
			defer wg.Done()

			logs.WithTag("addr", s.Addr).
				WithTag("timeout", ShutdownTimeout.String()).
				Debug("shutting down server")

			if err := s.Shutdown(ctx); err != nil {
				logs.WithTag("addr", s.Addr).
					Warn(errors.New("graceful shutdown failed, closing connections").Wrap(err))
				s.Close()
			}
		}(s)
	}

	wg.Wait()
}

// MetricsPathFormatter drops the path label of redirects, bad requests and
// unknown routes so that arbitrary paths do not create new metric series.
func MetricsPathFormatter(statusCode int, path string) string {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusMethodNotAllowed:
		return ""

	default:
		return path
	}
}
