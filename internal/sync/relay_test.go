package sync

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/relay"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRelay(t *testing.T) (*relay.Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := relay.NewHub()
	router := gin.New()
	router.GET("/ws", relay.NewHandler(hub, "", true).Serve)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return hub, server
}

func TestRelayConn_ExchangesUpdates(t *testing.T) {
	hub, server := setupRelay(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice, err := DialRelay(ctx, server.URL, nil)
	require.NoError(t, err)
	bob, err := DialRelay(ctx, server.URL, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 5*time.Millisecond)

	aliceGot := make(chan string, 8)
	bobGot := make(chan string, 8)
	go alice.Run(ctx, func(code string) { aliceGot <- code })
	go bob.Run(ctx, func(code string) { bobGot <- code })

	require.NoError(t, alice.SendCodeUpdate("one"))
	require.NoError(t, alice.SendCodeUpdate("two"))

	for _, want := range []string{"one", "two"} {
		select {
		case got := <-bobGot:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("bob never received %q", want)
		}
	}

	select {
	case got := <-aliceGot:
		t.Fatalf("alice received her own update %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelayConn_RunStopsWithContext(t *testing.T) {
	hub, server := setupRelay(t)
	ctx, cancel := context.WithCancel(context.Background())

	conn, err := DialRelay(ctx, server.URL, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- conn.Run(ctx, func(string) {}) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.ErrorIs(t, conn.SendCodeUpdate("late"), ErrClosed)
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestDialRelay_Unreachable(t *testing.T) {
	_, err := DialRelay(context.Background(), "http://127.0.0.1:1", nil)
	assert.Error(t, err)
}
