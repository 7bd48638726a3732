package screen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ekaya/cafelive/internal/config"
	"github.com/ekaya/cafelive/internal/greeting"
	"github.com/ekaya/cafelive/internal/model"
	"github.com/ekaya/cafelive/internal/notify"
)

// mockBackend serves the REST endpoints and the duplex stream from a
// single httptest server, the way the real backend does.
type mockBackend struct {
	t      *testing.T
	server *httptest.Server

	mu     sync.Mutex
	orders []apiOrderJSON
	conns  []*websocket.Conn

	listCalls   atomic.Int64
	cancelCalls atomic.Int64

	// cancelResult controls the /cancel response. Default: accept.
	cancelResult func(id string) (bool, string)
}

type apiOrderJSON struct {
	ID        int64  `json:"id"`
	Masa      string `json:"masa"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func newMockBackend(t *testing.T) *mockBackend {
	b := &mockBackend{t: t}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		b.mu.Lock()
		b.conns = append(b.conns, conn)
		b.mu.Unlock()

		// Answer application pings; other inbound traffic is ignored.
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if strings.Contains(string(data), "ping") {
				conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`))
			}
		}
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		b.listCalls.Add(1)
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"orders": b.orders})
	})
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[2] != "cancel" {
			http.NotFound(w, r)
			return
		}
		b.cancelCalls.Add(1)

		cancelled, reason := true, ""
		if b.cancelResult != nil {
			cancelled, reason = b.cancelResult(parts[1])
		}

		b.mu.Lock()
		order := b.orders[0]
		if cancelled {
			order.Status = "cancelled"
			b.orders[0] = order
		}
		b.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]any{
			"cancelled": cancelled,
			"reason":    reason,
			"order":     order,
		})
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *mockBackend) setOrders(orders ...apiOrderJSON) {
	b.mu.Lock()
	b.orders = orders
	b.mu.Unlock()
}

// push sends a raw event on every open stream.
func (b *mockBackend) push(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, conn := range b.conns {
		conn.WriteMessage(websocket.TextMessage, []byte(event))
	}
}

func testOrder(id int64, table string, age time.Duration) apiOrderJSON {
	return apiOrderJSON{
		ID:        id,
		Masa:      table,
		Status:    "pending",
		CreatedAt: time.Now().Add(-age).Format(time.RFC3339),
	}
}

func startSession(t *testing.T, b *mockBackend, opts Options) *Session {
	t.Helper()

	if opts.Config == nil {
		cfg := config.Default(b.server.URL)
		cfg.Stream.PingInterval = 50 * time.Millisecond
		cfg.Stream.LivenessTimeout = time.Second
		cfg.Stream.ReconnectBaseDelay = 10 * time.Millisecond
		cfg.Stream.ReconnectMaxDelay = 50 * time.Millisecond
		cfg.Refresh.Debounce = 30 * time.Millisecond
		cfg.Refresh.Interval = 0
		opts.Config = cfg
	}
	if opts.Kind == "" {
		opts.Kind = KindKitchen
	}
	if opts.Sink == nil {
		opts.Sink = notify.Nop{}
	}

	s, err := NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { s.Stop(context.Background()) })
	return s
}

// waitForView polls the view channel until pred holds or the deadline
// passes, returning the last view seen.
func waitForView(t *testing.T, s *Session, pred func(ViewState) bool) ViewState {
	t.Helper()

	deadline := time.After(3 * time.Second)
	var last ViewState
	for {
		select {
		case v := <-s.Views():
			last = v
			if pred(v) {
				return v
			}
		case <-deadline:
			t.Fatalf("view condition not met; last view: %+v", last)
		}
	}
}

func openGreetingStore(t *testing.T) *greeting.Store {
	t.Helper()

	store, err := greeting.Open(filepath.Join(t.TempDir(), "greetings.db"), 12*time.Hour)
	if err != nil {
		t.Fatalf("open greeting store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSession_InitialSnapshot(t *testing.T) {
	backend := newMockBackend(t)
	backend.setOrders(testOrder(41, "5", time.Minute))

	s := startSession(t, backend, Options{})

	view := waitForView(t, s, func(v ViewState) bool {
		return v.Conn == StatusLive && len(v.Orders) == 1
	})
	if view.Orders[0].ID != 41 {
		t.Errorf("order id = %d, want 41", view.Orders[0].ID)
	}
}

func TestSession_OrderEventRefreshesAndAlerts(t *testing.T) {
	backend := newMockBackend(t)
	backend.setOrders(testOrder(41, "5", time.Minute))

	var alerts atomic.Int64
	sink := notify.Func(func(orderID int64, tableID string) {
		if orderID == 42 && tableID == "5" {
			alerts.Add(1)
		}
	})

	s := startSession(t, backend, Options{Sink: sink})
	waitForView(t, s, func(v ViewState) bool { return len(v.Orders) == 1 })

	// The delta names the order but carries no payload the client
	// trusts: the full snapshot replaces the collection.
	backend.setOrders(testOrder(41, "5", time.Minute), testOrder(42, "5", 0))
	backend.push(`{"type":"order","data":{"id":42,"masa":"5"}}`)

	view := waitForView(t, s, func(v ViewState) bool { return len(v.Orders) == 2 })
	if view.Orders[0].ID != 41 || view.Orders[1].ID != 42 {
		t.Errorf("order ids = %d,%d, want 41,42", view.Orders[0].ID, view.Orders[1].ID)
	}
	if alerts.Load() != 1 {
		t.Errorf("alerts = %d, want 1", alerts.Load())
	}
}

func TestSession_EventStormCoalesces(t *testing.T) {
	backend := newMockBackend(t)
	backend.setOrders(testOrder(41, "5", time.Minute))

	s := startSession(t, backend, Options{})
	waitForView(t, s, func(v ViewState) bool { return len(v.Orders) == 1 })

	before := backend.listCalls.Load()
	for i := 0; i < 20; i++ {
		backend.push(`{"type":"status","data":{"id":41}}`)
	}
	waitForView(t, s, func(v ViewState) bool { return true })
	time.Sleep(200 * time.Millisecond)

	extra := backend.listCalls.Load() - before
	if extra < 1 || extra > 3 {
		t.Errorf("refreshes after 20 rapid deltas = %d, want coalesced (1..3)", extra)
	}
}

func TestSession_CancelWithinWindow(t *testing.T) {
	backend := newMockBackend(t)
	backend.setOrders(testOrder(41, "5", 30*time.Second))

	s := startSession(t, backend, Options{})
	waitForView(t, s, func(v ViewState) bool { return len(v.Orders) == 1 })

	outcome, err := s.CancelOrder(context.Background(), 41)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if outcome != CancelAccepted {
		t.Errorf("outcome = %s, want accepted", outcome)
	}
	if backend.cancelCalls.Load() != 1 {
		t.Errorf("cancel requests = %d, want 1", backend.cancelCalls.Load())
	}

	waitForView(t, s, func(v ViewState) bool {
		return len(v.Orders) == 1 && v.Orders[0].Status == model.StatusCancelled
	})
}

func TestSession_CancelRefusedLocallyAfterWindow(t *testing.T) {
	backend := newMockBackend(t)
	backend.setOrders(testOrder(41, "5", 10*time.Minute))

	s := startSession(t, backend, Options{})
	waitForView(t, s, func(v ViewState) bool { return len(v.Orders) == 1 })

	outcome, err := s.CancelOrder(context.Background(), 41)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if outcome != CancelRefusedLocally {
		t.Errorf("outcome = %s, want refused_locally", outcome)
	}

	// The stale countdown never reaches the network.
	if backend.cancelCalls.Load() != 0 {
		t.Errorf("cancel requests = %d, want 0", backend.cancelCalls.Load())
	}
}

func TestSession_CancelRejectedByServer(t *testing.T) {
	backend := newMockBackend(t)
	// Eligible on the client's clock, but the backend disagrees.
	backend.setOrders(testOrder(41, "5", 118*time.Second))
	backend.cancelResult = func(string) (bool, string) {
		return false, "window closed"
	}

	s := startSession(t, backend, Options{})
	waitForView(t, s, func(v ViewState) bool { return len(v.Orders) == 1 })

	outcome, err := s.CancelOrder(context.Background(), 41)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if outcome != CancelRejectedByServer {
		t.Errorf("outcome = %s, want rejected_by_server", outcome)
	}
}

func TestSession_CancelUnknownOrder(t *testing.T) {
	backend := newMockBackend(t)
	backend.setOrders(testOrder(41, "5", time.Minute))

	s := startSession(t, backend, Options{})
	waitForView(t, s, func(v ViewState) bool { return len(v.Orders) == 1 })

	if _, err := s.CancelOrder(context.Background(), 999); err == nil {
		t.Error("expected error for unknown order")
	}
}

func TestSession_AdvanceRejectsIllegalTransition(t *testing.T) {
	backend := newMockBackend(t)
	order := testOrder(41, "5", time.Minute)
	order.Status = "paid"
	backend.setOrders(order)

	s := startSession(t, backend, Options{})
	waitForView(t, s, func(v ViewState) bool { return len(v.Orders) == 1 })

	if err := s.AdvanceOrder(context.Background(), 41, model.StatusPreparing); err == nil {
		t.Error("expected error advancing a paid order")
	}
}

func TestSession_SessionInvalidOnAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ws/") {
			upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
		http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := config.Default(server.URL)
	cfg.Refresh.Debounce = 30 * time.Millisecond
	cfg.Refresh.Interval = 0

	s, err := NewSession(Options{Config: cfg, Kind: KindKitchen, Sink: notify.Nop{}})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	waitForView(t, s, func(v ViewState) bool { return v.SessionInvalid })
}

func TestSession_GreetingShownOncePerTTL(t *testing.T) {
	backend := newMockBackend(t)
	backend.setOrders()

	store := openGreetingStore(t)

	s := startSession(t, backend, Options{
		Kind:    KindTable,
		TableID: "5",
		Greeter: store,
	})
	view := waitForView(t, s, func(v ViewState) bool { return v.Conn == StatusLive })
	if !view.ShowGreeting {
		t.Error("first session should show the greeting")
	}
	s.Stop(context.Background())

	s2 := startSession(t, backend, Options{
		Kind:    KindTable,
		TableID: "5",
		Greeter: store,
	})
	view = waitForView(t, s2, func(v ViewState) bool { return v.Conn == StatusLive })
	if view.ShowGreeting {
		t.Error("second session within the TTL should not greet again")
	}
}
