package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func TestServeUntilCancelled(t *testing.T) {
	var order []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	srv := New(Config{Address: "127.0.0.1:0", ShutdownTimeout: time.Second}, handler,
		WithLogger(log.New(io.Discard)),
		OnShutdown("sessions", func() error { order = append(order, "sessions"); return nil }),
		OnShutdown("coordinator", func() error { order = append(order, "coordinator"); return nil }),
	)

	ln := listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.Equal(t, []string{"sessions", "coordinator"}, order)

	_, err = http.Get("http://" + ln.Addr().String() + "/ping")
	assert.Error(t, err)
}

func TestShutdownRunsEveryStep(t *testing.T) {
	boom := errors.New("boom")
	ran := 0
	srv := New(Config{}, http.NotFoundHandler(),
		WithLogger(log.New(io.Discard)),
		OnShutdown("first", func() error { ran++; return boom }),
		OnShutdown("second", func() error { ran++; return nil }),
	)

	err := srv.Shutdown()
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "first")
	assert.Equal(t, 2, ran)
}

func TestListenFailure(t *testing.T) {
	ln := listen(t)
	defer ln.Close()

	srv := New(Config{Address: ln.Addr().String()}, http.NotFoundHandler(), WithLogger(log.New(io.Discard)))
	err := srv.ListenAndServe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot listen")
}

func TestDefaults(t *testing.T) {
	srv := New(Config{Address: ":4000"}, http.NotFoundHandler())
	assert.Equal(t, ":4000", srv.Addr())
	assert.Equal(t, DefaultConfig().ShutdownTimeout, srv.config.ShutdownTimeout)
}
