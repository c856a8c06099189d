package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/confhelper-go/internal/core/domain"
)

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

	var resp Response
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("GET %s: decode: %v\n%s", path, err, rec.Body.String())
		}
	}
	return rec, resp
}

func validSnapshot() *Snapshot {
	return &Snapshot{
		Valid:       true,
		Fingerprint: "00000000deadbeef",
		Contexts:    []string{"app", "env"},
		Config:      map[string]any{"name": "one", "password": "***REDACTED***"},
	}
}

func TestRouter_BeforeFirstBuild(t *testing.T) {
	h := NewRouter(RouterConfig{Status: &Status{}})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/healthz", http.StatusOK, CodeOK},
		{"/readyz", http.StatusServiceUnavailable, domain.CodeValidation},
		{"/status", http.StatusServiceUnavailable, domain.CodeRuntime},
		{"/config", http.StatusServiceUnavailable, domain.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, resp := get(t, h, tt.path)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.RequestID == "" || resp.RequestID != rec.Header().Get(HeaderRequestID) {
				t.Errorf("request_id = %q, header %q", resp.RequestID, rec.Header().Get(HeaderRequestID))
			}
			if resp.Timestamp == 0 {
				t.Error("timestamp not set")
			}
		})
	}
}

func TestRouter_ValidBuild(t *testing.T) {
	status := &Status{}
	status.Publish(validSnapshot())
	h := NewRouter(RouterConfig{Status: status})

	rec, resp := get(t, h, "/readyz")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
	if data := resp.Data.(map[string]any); data["fingerprint"] != "00000000deadbeef" {
		t.Errorf("readyz data = %v", data)
	}

	rec, resp = get(t, h, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status status = %d", rec.Code)
	}
	data := resp.Data.(map[string]any)
	if data["valid"] != true || data["fingerprint"] != "00000000deadbeef" {
		t.Errorf("status data = %v", data)
	}
	if _, ok := data["config"]; ok {
		t.Error("status must not embed the configuration")
	}
	if _, ok := data["updated_at"]; !ok {
		t.Error("status lacks updated_at")
	}

	rec, resp = get(t, h, "/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("config status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Config-Fingerprint"); got != "00000000deadbeef" {
		t.Errorf("X-Config-Fingerprint = %q", got)
	}
	cfg := resp.Data.(map[string]any)
	if cfg["name"] != "one" || cfg["password"] != "***REDACTED***" {
		t.Errorf("config data = %v", cfg)
	}
}

func TestRouter_InvalidAfterValid(t *testing.T) {
	status := &Status{}
	status.Publish(validSnapshot())
	status.Publish(&Snapshot{Contexts: []string{"app"}, Error: "port out of range", ErrorCode: domain.CodeValidation})
	h := NewRouter(RouterConfig{Status: status})

	if rec, _ := get(t, h, "/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rec.Code)
	}

	_, resp := get(t, h, "/status")
	data := resp.Data.(map[string]any)
	if data["valid"] != false || data["error"] != "port out of range" || data["error_code"] != domain.CodeValidation {
		t.Errorf("status data = %v", data)
	}

	// The last valid configuration stays available.
	rec, resp := get(t, h, "/config")
	if rec.Code != http.StatusOK {
		t.Fatalf("config status = %d, want 200", rec.Code)
	}
	if cfg := resp.Data.(map[string]any); cfg["name"] != "one" {
		t.Errorf("config data = %v", cfg)
	}
}

func TestRouter_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "confhelper_builds_total 3\n")
	})

	t.Run("mounted", func(t *testing.T) {
		rec, _ := get(t, NewRouter(RouterConfig{Metrics: metrics}), "/metrics")
		if rec.Code != http.StatusOK || rec.Body.String() != "confhelper_builds_total 3\n" {
			t.Errorf("GET /metrics = %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("absent", func(t *testing.T) {
		rec, _ := get(t, NewRouter(RouterConfig{}), "/metrics")
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET /metrics = %d, want 404", rec.Code)
		}
	})
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(RouterConfig{}).ServeHTTP(rec, httptest.NewRequest("POST", "/config", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /config = %d, want 405", rec.Code)
	}
}

func TestStatus_Publish(t *testing.T) {
	var s Status
	if s.Current() != nil || s.LastValid() != nil {
		t.Fatal("zero Status should be empty")
	}

	s.Publish(nil)
	if s.Current() != nil {
		t.Fatal("Publish(nil) must be ignored")
	}

	bad := &Snapshot{Error: "broken"}
	s.Publish(bad)
	if s.Current() != bad || s.LastValid() != nil {
		t.Error("invalid snapshot must not become the last valid one")
	}
	if bad.UpdatedAt.IsZero() {
		t.Error("Publish should stamp UpdatedAt")
	}

	stamp := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	good := &Snapshot{Valid: true, UpdatedAt: stamp}
	s.Publish(good)
	if s.Current() != good || s.LastValid() != good {
		t.Error("valid snapshot should be current and last valid")
	}
	if !good.UpdatedAt.Equal(stamp) {
		t.Errorf("UpdatedAt overwritten: %v", good.UpdatedAt)
	}
}
