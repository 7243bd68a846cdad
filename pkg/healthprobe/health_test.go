package healthprobe

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestNew(t *testing.T) {
	hc := New()

	if hc == nil {
		t.Fatal("New() returned nil")
	}
	if time.Since(hc.startTime) > time.Second {
		t.Errorf("start time is too old: %v", hc.startTime)
	}
	if hc.ready.Load() {
		t.Error("HealthChecker should not be ready by default")
	}
}

func TestSetReady_Toggle(t *testing.T) {
	hc := New()

	hc.SetReady(true)
	if !hc.ready.Load() {
		t.Error("should be ready after SetReady(true)")
	}

	hc.SetReady(false)
	if hc.ready.Load() {
		t.Error("should not be ready after SetReady(false)")
	}
}

func TestHealth_Handler(t *testing.T) {
	hc := New()
	handler := hc.Health()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health handler status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}

	var healthResp HealthResponse
	err := json.NewDecoder(resp.Body).Decode(&healthResp)
	if err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if healthResp.Status != "healthy" {
		t.Errorf("status = %s, want healthy", healthResp.Status)
	}
	if healthResp.Uptime == "" {
		t.Error("uptime is empty")
	}
}

func TestReady_StateChanges(t *testing.T) {
	hc := New()
	handler := hc.Ready()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("initial ready status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}

	var notReady HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&notReady); err != nil {
		t.Fatalf("failed to decode ready response: %v", err)
	}
	if notReady.Status != "not_ready" || notReady.Message == "" {
		t.Errorf("unexpected not-ready response %+v", notReady)
	}

	hc.SetReady(true)
	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("ready status after SetReady(true) = %d, want %d", w.Code, http.StatusOK)
	}

	hc.SetReady(false)
	req = httptest.NewRequest(http.MethodGet, "/ready", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status after SetReady(false) = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestHealthChecker_ConcurrentAccess(t *testing.T) {
	hc := New()
	handler := hc.Ready()

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			hc.SetReady(i%2 == 0)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			handler(w, req)
		}
		done <- true
	}()

	<-done
	<-done
}
