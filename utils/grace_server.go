package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 60 * time.Second
	shutdownGrace       = 30 * time.Second
)

// GraceServer serves HTTP on addr until SIGTERM or SIGINT, then drains
// in-flight requests before returning. A nil error means a clean shutdown.
func GraceServer(addr string, handler http.Handler) error {
	srv := newServer(addr, handler)
	return serveUntilSignal(srv, srv.ListenAndServe)
}

// GraceServerTLS is the TLS variant of GraceServer.
func GraceServerTLS(addr, certFile, keyFile string, handler http.Handler) error {
	srv := newServer(addr, handler)
	return serveUntilSignal(srv, func() error {
		return srv.ListenAndServeTLS(certFile, keyFile)
	})
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}
}

// serveUntilSignal runs listen on its own goroutine and blocks until either
// the listener fails or a termination signal arrives, at which point the
// server gets shutdownGrace to finish open requests.
func serveUntilSignal(srv *http.Server, listen func() error) error {
	errCh := make(chan error, 1)
	go func() {
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		Sugar.Infof("received %s, shutting down HTTP server", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	Sugar.Info("HTTP server shutdown complete")
	return nil
}
