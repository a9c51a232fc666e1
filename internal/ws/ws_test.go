package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRedisEvent(t *testing.T) {
	out, err := wrapRedisEvent(`{"event":"updated","auction_id":"a1","data":{"make":"Ford"}}`)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(out, &env))
	assert.Equal(t, "auctions/updated", env.Event)
	assert.JSONEq(t, `{"auction_id":"a1","data":{"make":"Ford"}}`, string(env.Body))

	out, err = wrapRedisEvent(`{"auction_id":"a1"}`)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &env))
	assert.Equal(t, "auctions/unknown", env.Event)

	_, err = wrapRedisEvent(`not json`)
	assert.Error(t, err)
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestDispatchReachesAuctionAndAllListeners(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", NewWsServer(hub).Handle)
	srv := httptest.NewServer(r)
	defer srv.Close()

	one := dial(t, srv, "?auction_id=a1")
	all := dial(t, srv, "")
	other := dial(t, srv, "?auction_id=a2")

	require.Eventually(t, func() bool {
		return hub.Count("a1") == 1 && hub.Count(AllAuctions) == 1 && hub.Count("a2") == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.dispatch("auc:a1:events", `{"event":"created","auction_id":"a1"}`)

	assert.Equal(t, "auctions/created", readEnvelope(t, one).Event)
	assert.Equal(t, "auctions/created", readEnvelope(t, all).Event)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestDispatchIgnoresMalformedChannel(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.dispatch("bogus", `{}`)
		hub.dispatch("auc::events", `{}`)
	})
}

func TestLeaveOnClientClose(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", NewWsServer(hub).Handle)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv, "?auction_id=a9")
	require.Eventually(t, func() bool { return hub.Count("a9") == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count("a9") == 0 }, 2*time.Second, 10*time.Millisecond)
}
