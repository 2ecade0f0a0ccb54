package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/simulation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testTelemetry() config.TelemetryConfig {
	cfg := config.Default().Telemetry
	cfg.Addr = "127.0.0.1:0"
	cfg.BroadcastHz = 1000
	cfg.Burst = 100
	return cfg
}

func newTestServer(t *testing.T, cfg config.TelemetryConfig) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(HubConfigFrom(cfg), nil)
	srv := httptest.NewServer(NewHTTPServer(cfg, hub, nil).Handler())
	return hub, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readSnapshot(t *testing.T, conn *websocket.Conn) simulation.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var snap simulation.Snapshot
	require.NoError(t, json.Unmarshal(msg, &snap))
	return snap
}

func TestSnapshotEndpoint(t *testing.T) {
	hub, srv := newTestServer(t, testTelemetry())
	defer srv.Close()
	defer hub.Close()

	resp, err := srv.Client().Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	hub.Publish(simulation.Snapshot{Time: 1.5, Count: 2, Capacity: 5})

	resp, err = srv.Client().Get(srv.URL + "/snapshot")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap simulation.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	assert.Equal(t, 1.5, snap.Time)
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, 5, snap.Capacity)
}

func TestHealthz(t *testing.T) {
	hub, srv := newTestServer(t, testTelemetry())
	defer srv.Close()
	defer hub.Close()

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["clients"])
}

func TestWebsocketStreamsSnapshots(t *testing.T) {
	hub, srv := newTestServer(t, testTelemetry())
	defer srv.Close()

	hub.Publish(simulation.Snapshot{Step: 1})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, uint64(1), readSnapshot(t, conn).Step, "latest state on connect")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.True(t, hub.Publish(simulation.Snapshot{Step: 2, Collecting: true}))
	snap := readSnapshot(t, conn)
	assert.Equal(t, uint64(2), snap.Step)
	assert.True(t, snap.Collecting)

	require.NoError(t, hub.Close())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
	assert.False(t, hub.Publish(simulation.Snapshot{Step: 3}), "closed hubs ignore publishes")
}

func TestPublishIsRateLimited(t *testing.T) {
	cfg := testTelemetry()
	cfg.BroadcastHz = 1
	cfg.Burst = 1
	hub := NewHub(HubConfigFrom(cfg), nil)
	defer hub.Close()

	assert.True(t, hub.Publish(simulation.Snapshot{Step: 1}))
	assert.False(t, hub.Publish(simulation.Snapshot{Step: 2}))

	// throttled snapshots still replace the latest state
	msg, err := hub.Latest()
	require.NoError(t, err)
	var snap simulation.Snapshot
	require.NoError(t, json.Unmarshal(msg, &snap))
	assert.Equal(t, uint64(2), snap.Step)
}

func TestMaxClients(t *testing.T) {
	cfg := testTelemetry()
	cfg.MaxClients = 1
	hub, srv := newTestServer(t, cfg)
	defer srv.Close()

	first, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer first.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	second, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer second.Close()
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = second.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater))
	assert.Equal(t, 1, hub.Clients())

	require.NoError(t, hub.Close())
}

func TestOriginCheck(t *testing.T) {
	cfg := testTelemetry()
	cfg.AllowedOrigins = []string{"http://hud.local"}
	hub, srv := newTestServer(t, cfg)
	defer srv.Close()
	defer hub.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), http.Header{"Origin": {"http://elsewhere"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), http.Header{"Origin": {"http://hud.local"}})
	require.NoError(t, err)
	_ = conn.Close()
}

func TestCORSHeaders(t *testing.T) {
	cfg := testTelemetry()
	cfg.AllowedOrigins = []string{"http://hud.local"}
	hub, srv := newTestServer(t, cfg)
	defer srv.Close()
	defer hub.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://hud.local")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "http://hud.local", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStartStop(t *testing.T) {
	cfg := testTelemetry()
	hub := NewHub(HubConfigFrom(cfg), nil)
	s := NewHTTPServer(cfg, hub, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.ErrorIs(t, s.Stop(ctx), ErrServerNotRunning)
	require.NoError(t, s.Start(ctx))
	assert.ErrorIs(t, s.Start(ctx), ErrServerAlreadyRunning)
	require.NotEmpty(t, s.Addr())

	transport := &http.Transport{}
	client := &http.Client{Transport: transport}
	resp, err := client.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	transport.CloseIdleConnections()

	require.NoError(t, s.Stop(ctx))
	assert.Empty(t, s.Addr())
	assert.ErrorIs(t, hub.Close(), ErrServerClosed)
}
