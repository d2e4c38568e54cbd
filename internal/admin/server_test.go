package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/assetlink/assetlink/internal/client"
	"github.com/assetlink/assetlink/internal/eventlog"
	"github.com/assetlink/assetlink/internal/testutil/testlog"
)

func newServer(t *testing.T) (*Server, *client.Client) {
	t.Helper()
	c, err := client.New(client.Config{Host: "127.0.0.1", Port: 4040})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return New("127.0.0.1:0", c, nil), c
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Router().ServeHTTP(w, req)
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return w, body
}

func TestHealthRoute(t *testing.T) {
	testlog.Start(t)

	s, _ := newServer(t)
	w, body := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status: %d", w.Code)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestStatusRouteReflectsClientState(t *testing.T) {
	testlog.Start(t)

	s, _ := newServer(t)
	w, body := get(t, s, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status code: %d", w.Code)
	}
	if body["state"] != "disconnected" {
		t.Fatalf("unexpected state: %v", body)
	}
	if body["connected"] != false || body["authenticated"] != false {
		t.Fatalf("unexpected flags: %v", body)
	}
}

func TestEventsRouteServesHistory(t *testing.T) {
	testlog.Start(t)

	s, c := newServer(t)
	c.Events().Record(eventlog.Event{
		Direction: eventlog.DirectionSystem,
		Text:      "probe",
		Status:    eventlog.StatusSuccess,
	})

	w, body := get(t, s, "/events")
	if w.Code != http.StatusOK {
		t.Fatalf("events status: %d", w.Code)
	}
	events, ok := body["events"].([]any)
	if !ok || len(events) != 1 {
		t.Fatalf("unexpected events payload: %v", body)
	}
	first := events[0].(map[string]any)
	if first["direction"] != "system" || first["text"] != "probe" {
		t.Fatalf("unexpected event: %v", first)
	}
}

func TestMetricsRouteExposesPrometheus(t *testing.T) {
	testlog.Start(t)

	s, _ := newServer(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", w.Code)
	}
}
