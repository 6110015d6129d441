package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"minisocial/cmd/internal/auth/guard"
	"minisocial/cmd/internal/social"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withIdentity stands in for guard.Middleware.
func withIdentity(userID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID != "" {
			r = r.WithContext(guard.WithIdentity(r.Context(), guard.Identity{UserID: userID}))
		}
		next.ServeHTTP(w, r)
	})
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGateway_StreamsEvents(t *testing.T) {
	t.Parallel()

	hub := NewHub(discardLogger())
	gw := NewGateway(discardLogger(), hub, DefaultConfig())
	srv := httptest.NewServer(withIdentity("user-1", gw))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	waitFor(t, func() bool { return hub.Len() == 1 })

	hub.Publish(social.Event{Type: social.EventPostCreated, PostID: "p1", UserID: "user-2"})

	var got social.Event
	require.NoError(t, wsjson.Read(ctx, conn, &got))
	assert.Equal(t, social.EventPostCreated, got.Type)
	assert.Equal(t, "p1", got.PostID)
	assert.Equal(t, "user-2", got.UserID)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "done"))
	waitFor(t, func() bool { return hub.Len() == 0 })
}

func TestGateway_RequiresIdentity(t *testing.T) {
	t.Parallel()

	hub := NewHub(discardLogger())
	srv := httptest.NewServer(withIdentity("", NewGateway(discardLogger(), hub, DefaultConfig())))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, hub.Len())
}

func TestGateway_HubCloseEndsSession(t *testing.T) {
	t.Parallel()

	hub := NewHub(discardLogger())
	srv := httptest.NewServer(withIdentity("user-1", NewGateway(discardLogger(), hub, DefaultConfig())))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv), nil)
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	waitFor(t, func() bool { return hub.Len() == 1 })
	hub.Close()

	var ev social.Event
	err = wsjson.Read(ctx, conn, &ev)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MINISOCIAL_FEED_SEND_QUEUE", "16")
	t.Setenv("MINISOCIAL_FEED_PING_INTERVAL", "5s")
	t.Setenv("MINISOCIAL_FEED_WRITE_TIMEOUT", "bogus")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, 16, cfg.SendQueue)
	assert.Equal(t, 5*time.Second, cfg.PingInterval)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
}
