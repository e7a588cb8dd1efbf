package sse

import (
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_WriteEvent(t *testing.T) {
	w := httptest.NewRecorder()
	s, err := NewStream(w)
	require.NoError(t, err)

	require.NoError(t, s.WriteEvent("tree", "3", map[string]int{"version": 3}))
	require.NoError(t, s.WriteKeepAlive())

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "id: 3\nevent: tree\ndata: {\"version\":3}\n\n: keepalive\n\n", w.Body.String())
}

type countingWriter struct {
	calls atomic.Int32
	failAt int32
}

func (c *countingWriter) WriteKeepAlive() error {
	if c.calls.Add(1) >= c.failAt {
		return errors.New("closed")
	}
	return nil
}

func TestTickerKeepAlive_StopsOnWriteError(t *testing.T) {
	k := NewTickerKeepAlive(5 * time.Millisecond)
	w := &countingWriter{failAt: 3}

	stopped := k.Start(w, slog.New(slog.NewTextHandler(io.Discard, nil)))

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop after write failure")
	}
	assert.Equal(t, int32(3), w.calls.Load())
	k.Stop()
	k.Stop()
}

func TestTickerKeepAlive_Stop(t *testing.T) {
	k := NewTickerKeepAlive(time.Hour)
	stopped := k.Start(&countingWriter{failAt: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	k.Stop()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop")
	}
}
