package utils

import (
	"fmt"
	"net"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/microblog/config"
)

func initGraceLogger(t *testing.T) {
	t.Helper()
	config.SetForTesting(config.AppConfig{SecretKey: "test-secret", LogLevel: "error"})
	require.NoError(t, InitLogger(config.Get()))
}

func TestGraceServerShutsDownOnSignal(t *testing.T) {
	initGraceLogger(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	done := make(chan error, 1)
	go func() {
		done <- GraceServer(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
	}()

	url := fmt.Sprintf("http://%s/", addr)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after SIGTERM")
	}
}

func TestGraceServerReportsListenFailure(t *testing.T) {
	initGraceLogger(t)

	// occupy a port so the server cannot bind it
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	assert.Error(t, GraceServer(ln.Addr().String(), http.NewServeMux()))
}
