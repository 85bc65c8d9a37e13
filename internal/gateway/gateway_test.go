package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holdem-tourney/internal/codec"
	"holdem-tourney/table"
)

func startServer(t *testing.T) (*Gateway, *httptest.Server) {
	t.Helper()
	g := New(zerolog.Nop())
	srv := httptest.NewServer(g.Routes())
	t.Cleanup(func() {
		srv.Close()
		g.Close()
	})
	return g, srv
}

func dial(t *testing.T, g *Gateway, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	before := g.Count()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return g.Count() == before+1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func event(tableID string, seq uint64) table.Event {
	return table.Event{
		Seq:     seq,
		Type:    table.EventHandStarted,
		TableID: tableID,
		HandID:  tableID + "_r1",
		At:      time.Now().UTC(),
	}
}

func TestGateway_BroadcastsProtoFrames(t *testing.T) {
	g, srv := startServer(t)
	conn := dial(t, g, srv, "")

	g.OnEvent(event("t1", 1))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)
	got, err := codec.DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Seq)
	assert.Equal(t, "t1_r1", got.HandID)
}

func TestGateway_JSONFramesAndTableFilter(t *testing.T) {
	g, srv := startServer(t)
	conn := dial(t, g, srv, "?format=json&table=t2")

	g.OnEvent(event("t1", 1))
	g.OnEvent(event("t2", 2))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, typ)
	got, err := codec.DecodeEventJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.TableID, "events of other tables are filtered")
	assert.Equal(t, uint64(2), got.Seq)
}

func TestGateway_DisconnectRemovesSpectator(t *testing.T) {
	g, srv := startServer(t)
	conn := dial(t, g, srv, "")
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return g.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	// nobody listening
	g.OnEvent(event("t1", 1))
}

func TestGateway_RejectsUnknownFormat(t *testing.T) {
	_, srv := startServer(t)
	resp, err := http.Get(srv.URL + "/ws?format=xml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGateway_Health(t *testing.T) {
	_, srv := startServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}
