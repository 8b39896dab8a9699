package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesConnectedClients(t *testing.T) {
	gin.SetMode(gin.TestMode)

	b := NewBroadcaster()
	r := gin.New()
	r.GET("/ws", b.Handler)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, time.Millisecond)

	b.Broadcast("metrics:update", "Acme", map[string]int{"followers": 100})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), `"type":"metrics:update"`)
	require.Contains(t, string(msg), `"companyName":"Acme"`)
}

func TestDisconnectedClientIsDropped(t *testing.T) {
	gin.SetMode(gin.TestMode)

	b := NewBroadcaster()
	r := gin.New()
	r.GET("/ws", b.Handler)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, time.Second, time.Millisecond)
}
