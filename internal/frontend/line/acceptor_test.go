package line

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/stag/internal/config"
	"github.com/cory-johannsen/stag/internal/testutil"
)

// upperHandler answers every line with its upper-case form.
type upperHandler struct {
	calls atomic.Int32
}

func (h *upperHandler) Handle(_ context.Context, line string) string {
	h.calls.Add(1)
	return strings.ToUpper(line)
}

func startAcceptor(t *testing.T, handler Handler) *Acceptor {
	t.Helper()
	cfg := config.ListenerConfig{
		Host:         "127.0.0.1",
		Port:         0, // random port
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	acc := NewAcceptor(cfg, handler, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() {
		errCh <- acc.ListenAndServe()
	}()

	// Wait for the acceptor to start listening
	deadline := time.After(2 * time.Second)
	for !acc.IsRunning() || acc.Addr() == "" {
		select {
		case <-deadline:
			t.Fatal("acceptor did not start in time")
		case err := <-errCh:
			t.Fatalf("acceptor exited early: %v", err)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	t.Cleanup(func() {
		acc.Stop()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("acceptor did not stop in time")
		}
	})
	return acc
}

func TestAcceptor_AnswersOneLinePerConnection(t *testing.T) {
	handler := &upperHandler{}
	acc := startAcceptor(t, handler)

	assert.Equal(t, "SIMON: LOOK", testutil.Exchange(t, acc.Addr(), "simon: look"))
	assert.Equal(t, "SION: INV", testutil.Exchange(t, acc.Addr(), "sion: inv"))
	assert.Equal(t, int32(2), handler.calls.Load())
}

func TestAcceptor_ConcurrentClients(t *testing.T) {
	handler := &upperHandler{}
	acc := startAcceptor(t, handler)

	const numClients = 8
	var wg sync.WaitGroup
	responses := make([]string, numClients)
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i] = testutil.Exchange(t, acc.Addr(), "p: look")
		}(i)
	}
	wg.Wait()

	for _, r := range responses {
		assert.Equal(t, "P: LOOK", r)
	}
	assert.Equal(t, int32(numClients), handler.calls.Load())
}

func TestAcceptor_ClientHangsUpWithoutCommand(t *testing.T) {
	handler := &upperHandler{}
	acc := startAcceptor(t, handler)

	c := testutil.NewLineClient(t, acc.Addr())
	c.Close()

	require.Equal(t, "X: Y", testutil.Exchange(t, acc.Addr(), "x: y"))
	assert.Equal(t, int32(1), handler.calls.Load())
}

func TestAcceptor_StopIsIdempotent(t *testing.T) {
	acc := startAcceptor(t, HandlerFunc(func(context.Context, string) string { return "" }))
	acc.Stop()
	assert.False(t, acc.IsRunning())
	acc.Stop()
}
