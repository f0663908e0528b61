package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/gray-logic-energy/internal/dispatch"
	"github.com/nerrad567/gray-logic-energy/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-energy/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-energy/internal/model"
)

type fakeMessages []dispatch.Message

func (f fakeMessages) Messages() []dispatch.Message { return f }

type fakeChecker struct{ err error }

func (f fakeChecker) HealthCheck(context.Context) error { return f.err }

func testDeps(store *model.Store) Deps {
	return Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:   logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test"),
		Store:    store,
		Gatherer: prometheus.NewRegistry(),
		Version:  "test",
	}
}

// testServer creates a Server over a fresh store with an initialised hub.
func testServer(t *testing.T) (*Server, *model.Store) {
	t.Helper()

	store := model.NewStore()
	srv, err := New(testDeps(store))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Hub().Run(ctx)

	return srv, store
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
}

// ─── Construction ──────────────────────────────────────────────────

func TestNew_RequiresLoggerAndStore(t *testing.T) {
	deps := testDeps(model.NewStore())
	deps.Logger = nil
	if _, err := New(deps); err == nil {
		t.Error("New() without logger should fail")
	}

	deps = testDeps(nil)
	if _, err := New(deps); err == nil {
		t.Error("New() without store should fail")
	}
}

// ─── Health Endpoint Tests ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv, "/api/v1/health")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	decode(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

func TestHealth_ContentType(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv, "/api/v1/health")
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
}

func TestHealth_Degraded(t *testing.T) {
	srv, _ := testServer(t)
	srv.checks = map[string]HealthChecker{
		"mqtt":     fakeChecker{err: errors.New("not connected")},
		"influxdb": fakeChecker{},
	}

	w := get(t, srv, "/api/v1/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var resp struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	decode(t, w, &resp)
	if resp.Status != "degraded" {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.Components["mqtt"] != "not connected" {
		t.Errorf("components[mqtt] = %q, want error text", resp.Components["mqtt"])
	}
	if resp.Components["influxdb"] != "ok" {
		t.Errorf("components[influxdb] = %q, want ok", resp.Components["influxdb"])
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv, "/api/v1/health")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/model", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q, want %q", got, "http://localhost:3000")
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != allowedMethods {
		t.Errorf("ACAM = %q, want %q", got, allowedMethods)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	srv, _ := testServer(t)
	srv.cfg.CORS.AllowedOrigins = []string{"http://panel.local"}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("ACAO = %q, want empty", got)
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv, "/api/v1/nonexistent")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/model", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

// ─── Model Endpoint Tests ──────────────────────────────────────────

func TestModel_Empty(t *testing.T) {
	srv, _ := testServer(t)

	w := get(t, srv, "/api/v1/model")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp ModelResponse
	decode(t, w, &resp)
	if resp.Global.GridMeterID != nil {
		t.Errorf("grid_meter_id = %v, want null before hierarchy", *resp.Global.GridMeterID)
	}
	if resp.Counters == nil || len(resp.Counters) != 0 {
		t.Errorf("counters = %v, want empty array", resp.Counters)
	}
}

func TestModel_Populated(t *testing.T) {
	srv, store := testServer(t)

	store.EnsureCounter(0)
	store.EnsureCounter(3)
	store.SetGridMeterID(0)
	store.UpdateCounter(0, func(c *model.Counter) { c.Power = -1200 })
	store.EnsurePvSystem(1)
	store.UpdatePvSystem(1, func(p *model.PvSystem) { p.Power = 3400 })
	store.EnsureBattery(2)
	store.EnsureChargePoint(4)
	store.SetPVBatteryPriority("ev_mode")
	store.UpdateSummaries(func(src *model.SourceSummary, _ *model.UsageSummary) {
		src.PV.Power = 3400
	})

	var resp ModelResponse
	decode(t, get(t, srv, "/api/v1/model"), &resp)

	if resp.Global.GridMeterID == nil || *resp.Global.GridMeterID != 0 {
		t.Errorf("grid_meter_id = %v, want 0", resp.Global.GridMeterID)
	}
	if resp.Global.PVBatteryPriority != "ev_mode" {
		t.Errorf("pv_battery_priority = %q, want ev_mode", resp.Global.PVBatteryPriority)
	}
	if len(resp.Counters) != 2 {
		t.Fatalf("counters = %d, want 2", len(resp.Counters))
	}
	if !resp.Counters[0].GridMeter || resp.Counters[1].GridMeter {
		t.Errorf("grid_meter flags = %v/%v, want true/false", resp.Counters[0].GridMeter, resp.Counters[1].GridMeter)
	}
	if resp.Counters[0].Power == nil || *resp.Counters[0].Power != -1200 {
		t.Errorf("counter 0 power = %v, want -1200", resp.Counters[0].Power)
	}
	if len(resp.PvSystems) != 1 || resp.PvSystems[0].Name != "Inverter 1" {
		t.Errorf("pv_systems = %+v, want one named Inverter 1", resp.PvSystems)
	}
	if len(resp.Batteries) != 1 || len(resp.ChargePoints) != 1 {
		t.Errorf("batteries/charge_points = %d/%d, want 1/1", len(resp.Batteries), len(resp.ChargePoints))
	}
	if p := resp.Summary.Sources.PV.Power; p == nil || *p != 3400 {
		t.Errorf("summary pv power = %v, want 3400", p)
	}
}

func TestModel_NonFiniteAsNull(t *testing.T) {
	srv, store := testServer(t)

	store.EnsureCounter(1)
	store.UpdateCounter(1, func(c *model.Counter) {
		c.Power = math.NaN()
		c.EnergyImported = math.Inf(1)
	})

	w := get(t, srv, "/api/v1/counters/1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var resp map[string]any
	decode(t, w, &resp)
	if resp["power"] != nil {
		t.Errorf("power = %v, want null", resp["power"])
	}
	if resp["energy_imported"] != nil {
		t.Errorf("energy_imported = %v, want null", resp["energy_imported"])
	}
	if resp["energy_exported"] != float64(0) {
		t.Errorf("energy_exported = %v, want 0", resp["energy_exported"])
	}
}

func TestCounters(t *testing.T) {
	srv, store := testServer(t)
	store.EnsureCounter(5)
	store.EnsureCounter(2)

	var resp struct {
		Counters []CounterResponse `json:"counters"`
		Count    int               `json:"count"`
	}
	decode(t, get(t, srv, "/api/v1/counters"), &resp)

	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Counters[0].ID != 2 || resp.Counters[1].ID != 5 {
		t.Errorf("order = %d,%d, want 2,5", resp.Counters[0].ID, resp.Counters[1].ID)
	}
}

func TestGetCounter_Errors(t *testing.T) {
	srv, _ := testServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/counters/abc", http.StatusBadRequest},
		{"/api/v1/counters/-1", http.StatusBadRequest},
		{"/api/v1/counters/9", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, srv, tt.path)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var e Error
			decode(t, w, &e)
			if e.Status != tt.want {
				t.Errorf("error status = %d, want %d", e.Status, tt.want)
			}
		})
	}
}

func TestCollections(t *testing.T) {
	srv, store := testServer(t)
	store.EnsurePvSystem(0)
	store.EnsureBattery(1)
	store.EnsureBattery(2)
	store.EnsureChargePoint(3)

	tests := []struct {
		path  string
		key   string
		count int
	}{
		{"/api/v1/pv", "pv_systems", 1},
		{"/api/v1/batteries", "batteries", 2},
		{"/api/v1/chargepoints", "charge_points", 1},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var resp map[string]json.RawMessage
			decode(t, get(t, srv, tt.path), &resp)

			var items []map[string]any
			if err := json.Unmarshal(resp[tt.key], &items); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.key, err)
			}
			if len(items) != tt.count {
				t.Errorf("%s = %d items, want %d", tt.key, len(items), tt.count)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	srv, store := testServer(t)
	store.UpdateSummaries(func(src *model.SourceSummary, use *model.UsageSummary) {
		src.GridIn = model.Flow{Power: 500, Energy: 1200}
		use.House = model.Flow{Power: 800}
	})

	var resp SummaryResponse
	decode(t, get(t, srv, "/api/v1/summary"), &resp)

	if e := resp.Sources.GridIn.Energy; e == nil || *e != 1200 {
		t.Errorf("grid_in energy = %v, want 1200", e)
	}
	if p := resp.Usage.House.Power; p == nil || *p != 800 {
		t.Errorf("house power = %v, want 800", p)
	}
}

// ─── Messages Endpoint Tests ───────────────────────────────────────

func TestMessages(t *testing.T) {
	srv, _ := testServer(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	srv.messages = fakeMessages{
		{Topic: "openWB/counter/0/get/power", Payload: "100", ReceivedAt: base},
		{Topic: "openWB/pv/get/power", Payload: "-2000", ReceivedAt: base.Add(time.Second)},
		{Topic: "openWB/counter/1/get/power", Payload: "200", ReceivedAt: base.Add(2 * time.Second)},
	}

	tests := []struct {
		name      string
		query     string
		wantTopic []string
	}{
		{"all newest first", "", []string{"openWB/counter/1/get/power", "openWB/pv/get/power", "openWB/counter/0/get/power"}},
		{"limit", "?limit=1", []string{"openWB/counter/1/get/power"}},
		{"topic filter case-insensitive", "?topic=COUNTER", []string{"openWB/counter/1/get/power", "openWB/counter/0/get/power"}},
		{"filter and limit", "?topic=counter&limit=1", []string{"openWB/counter/1/get/power"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp struct {
				Messages []MessageResponse `json:"messages"`
				Count    int               `json:"count"`
			}
			decode(t, get(t, srv, "/api/v1/messages"+tt.query), &resp)

			if resp.Count != len(tt.wantTopic) {
				t.Fatalf("count = %d, want %d", resp.Count, len(tt.wantTopic))
			}
			for i, want := range tt.wantTopic {
				if resp.Messages[i].Topic != want {
					t.Errorf("messages[%d] = %q, want %q", i, resp.Messages[i].Topic, want)
				}
			}
		})
	}
}

func TestMessages_InvalidLimit(t *testing.T) {
	srv, _ := testServer(t)

	for _, q := range []string{"?limit=0", "?limit=abc", "?limit=5000"} {
		if w := get(t, srv, "/api/v1/messages"+q); w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", q, w.Code)
		}
	}
}

func TestMessages_NoSource(t *testing.T) {
	srv, _ := testServer(t)

	var resp struct {
		Messages []MessageResponse `json:"messages"`
	}
	decode(t, get(t, srv, "/api/v1/messages"), &resp)
	if resp.Messages == nil || len(resp.Messages) != 0 {
		t.Errorf("messages = %v, want empty array", resp.Messages)
	}
}

// ─── System & Metrics Tests ────────────────────────────────────────

func TestSystem(t *testing.T) {
	srv, store := testServer(t)
	store.EnsureCounter(0)
	store.SetGridMeterID(0)
	srv.messages = fakeMessages{{Topic: "a"}, {Topic: "b"}}

	var resp SystemMetrics
	decode(t, get(t, srv, "/api/v1/system"), &resp)

	if resp.Version != "test" {
		t.Errorf("version = %q, want test", resp.Version)
	}
	if resp.Runtime.Goroutines <= 0 {
		t.Errorf("goroutines = %d, want > 0", resp.Runtime.Goroutines)
	}
	if resp.Model.Counters != 1 || !resp.Model.HasGridMeter {
		t.Errorf("model = %+v, want 1 counter with grid meter", resp.Model)
	}
	if resp.MessagesHeld != 2 {
		t.Errorf("messages_held = %d, want 2", resp.MessagesHeld)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	store := model.NewStore()
	reg := prometheus.NewRegistry()
	reg.MustRegister(model.NewCollector(store))
	store.EnsureCounter(7)

	deps := testDeps(store)
	deps.Gatherer = reg
	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	w := get(t, srv, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `energymon_counter_power_watts{id="7",name="Counter 7"}`) {
		t.Errorf("metrics output missing counter series:\n%s", w.Body.String())
	}
}

// ─── WebSocket Hub Tests ───────────────────────────────────────────

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	hub := NewHub(config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func newTestClient(hub *Hub, channels ...string) *WSClient {
	client := &WSClient{
		id:            "test-client",
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	for _, ch := range channels {
		client.subscriptions[ch] = struct{}{}
	}
	hub.Register(client)
	return client
}

func receive(t *testing.T, client *WSClient) WSMessage {
	t.Helper()
	select {
	case msg := <-client.send:
		var wsMsg WSMessage
		if err := json.Unmarshal(msg, &wsMsg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return wsMsg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast message")
	}
	return WSMessage{}
}

func TestHub_BroadcastToSubscribed(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub, ChannelModelUpdated)

	hub.Broadcast(ChannelModelUpdated, map[string]any{"topic": "openWB/pv/get/power"})

	if msg := receive(t, client); msg.EventType != ChannelModelUpdated {
		t.Errorf("event_type = %q, want %q", msg.EventType, ChannelModelUpdated)
	}
}

func TestHub_NoMessageForUnsubscribed(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub, ChannelCommandError)

	hub.Broadcast(ChannelModelUpdated, map[string]any{"topic": "x"})

	select {
	case <-client.send:
		t.Error("unsubscribed client should not receive message")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_ClientCount(t *testing.T) {
	hub := newTestHub(t)

	if hub.ClientCount() != 0 {
		t.Errorf("initial client count = %d, want 0", hub.ClientCount())
	}

	client := newTestClient(hub)
	if hub.ClientCount() != 1 {
		t.Errorf("after register count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Errorf("after unregister count = %d, want 0", hub.ClientCount())
	}

	// Second unregister must not double-close the send channel.
	hub.Unregister(client)
}

func TestHub_PublishUpdate(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub, ChannelModelUpdated)

	hub.PublishUpdate(dispatch.Update{Category: dispatch.CategoryPV, Topic: "openWB/pv/1/get/power"})

	msg := receive(t, client)
	payload, ok := msg.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload = %T, want object", msg.Payload)
	}
	if payload["category"] != dispatch.CategoryPV.String() {
		t.Errorf("category = %v, want %q", payload["category"], dispatch.CategoryPV.String())
	}
	if payload["topic"] != "openWB/pv/1/get/power" {
		t.Errorf("topic = %v", payload["topic"])
	}
}

func TestHub_PublishCommandError(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(hub, ChannelCommandError)

	hub.PublishCommandError(dispatch.CommandError{
		Command: "addChargepoint",
		Data:    json.RawMessage(`{"id":1}`),
		Error:   "boom",
	})

	msg := receive(t, client)
	payload, ok := msg.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload = %T, want object", msg.Payload)
	}
	if payload["command"] != "addChargepoint" || payload["error"] != "boom" {
		t.Errorf("payload = %v", payload)
	}
}

// ─── Server Lifecycle & WebSocket Integration Tests ────────────────

// startServer starts a real server on an ephemeral port.
func startServer(t *testing.T) (*Server, string) {
	t.Helper()

	srv, err := New(testDeps(model.NewStore()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	t.Cleanup(func() { srv.Close() })

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	return srv, srv.Addr()
}

func connectWebSocket(t *testing.T, addr string) *websocket.Conn {
	t.Helper()
	ws, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/v1/ws", nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return ws
}

func TestServer_StartAndClose(t *testing.T) {
	srv, addr := startServer(t)

	resp, err := http.Get("http://" + addr + "/api/v1/health")
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // Draining test response
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health check status = %d, want 200", resp.StatusCode)
	}

	if err := srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() on running server = %v", err)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}

	if _, err := http.Get("http://" + addr + "/api/v1/health"); err == nil {
		t.Error("server still responding after Close()")
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	_, addr := startServer(t)

	deps := testDeps(model.NewStore())
	host, port := splitAddr(t, addr)
	deps.Config.Host = host
	deps.Config.Port = port

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := srv.Start(context.Background()); err == nil {
		srv.Close()
		t.Fatal("Start() on a bound port should fail")
	}
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort(%q): %v", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("port %q: %v", portStr, err)
	}
	return host, port
}

func TestServer_HealthCheck_NotStarted(t *testing.T) {
	srv, _ := testServer(t)

	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start should fail")
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() before Start = %v, want nil", err)
	}
}

func TestWebSocket_SubscribeAndBroadcast(t *testing.T) {
	srv, addr := startServer(t)

	ws := connectWebSocket(t, addr)
	defer ws.Close()

	if err := ws.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "sub-1",
		Payload: WSSubscribePayload{Channels: []string{ChannelModelUpdated}},
	}); err != nil {
		t.Fatalf("write subscribe: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // Test deadline
	var resp WSMessage
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read subscribe response: %v", err)
	}
	if resp.Type != WSTypeResponse || resp.ID != "sub-1" {
		t.Errorf("subscribe response = %+v", resp)
	}

	srv.Hub().PublishUpdate(dispatch.Update{Category: dispatch.CategoryCounter, Topic: "openWB/counter/0/get/power"})

	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if resp.Type != WSTypeEvent {
		t.Errorf("broadcast type = %s, want event", resp.Type)
	}
	if resp.EventType != ChannelModelUpdated {
		t.Errorf("broadcast event_type = %s, want %s", resp.EventType, ChannelModelUpdated)
	}
}

func TestWebSocket_Unsubscribe(t *testing.T) {
	_, addr := startServer(t)

	ws := connectWebSocket(t, addr)
	defer ws.Close()

	if err := ws.WriteJSON(WSMessage{
		Type:    WSTypeUnsubscribe,
		ID:      "unsub-1",
		Payload: WSSubscribePayload{Channels: []string{ChannelCommandError}},
	}); err != nil {
		t.Fatalf("write unsubscribe: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // Test deadline
	var resp WSMessage
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read unsubscribe response: %v", err)
	}
	if resp.Type != WSTypeResponse {
		t.Errorf("unsubscribe response type = %s, want response", resp.Type)
	}
}

func TestWebSocket_Ping(t *testing.T) {
	_, addr := startServer(t)

	ws := connectWebSocket(t, addr)
	defer ws.Close()

	if err := ws.WriteJSON(WSMessage{Type: WSTypePing, ID: "ping-1"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // Test deadline
	var resp WSMessage
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if resp.Type != WSTypePong {
		t.Errorf("response type = %s, want pong", resp.Type)
	}
	if resp.ID != "ping-1" {
		t.Errorf("response ID = %s, want ping-1", resp.ID)
	}
}

func TestWebSocket_InvalidMessages(t *testing.T) {
	_, addr := startServer(t)

	ws := connectWebSocket(t, addr)
	defer ws.Close()

	tests := []struct {
		name  string
		frame string
	}{
		{"invalid JSON", "not json"},
		{"unknown type", `{"type":"publish","id":"x"}`},
		{"bad subscribe payload", `{"type":"subscribe","id":"y","payload":{"channels":"model.updated"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(tt.frame)); err != nil {
				t.Fatalf("write: %v", err)
			}
			ws.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // Test deadline
			var resp WSMessage
			if err := ws.ReadJSON(&resp); err != nil {
				t.Fatalf("read: %v", err)
			}
			if resp.Type != WSTypeError {
				t.Errorf("response type = %s, want error", resp.Type)
			}
		})
	}
}
