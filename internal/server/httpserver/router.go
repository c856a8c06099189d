package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/confhelper-go/internal/core/domain"
	"github.com/yndnr/confhelper-go/internal/telemetry/logger"
)

// CodeOK is the envelope code of every successful response.
const CodeOK = "OK"

// Response is the envelope of every JSON response.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Status *Status

	// Metrics serves /metrics when set.
	Metrics http.Handler

	// Logger receives access and panic logs; nil discards them.
	Logger logger.Logger

	// AccessLog enables per-request logging.
	AccessLog bool
}

type router struct {
	status *Status
}

// NewRouter builds the status handler with its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	status := cfg.Status
	if status == nil {
		status = &Status{}
	}
	rt := &router{status: status}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.handleHealth)
	mux.HandleFunc("GET /readyz", rt.handleReady)
	mux.HandleFunc("GET /status", rt.handleStatus)
	mux.HandleFunc("GET /config", rt.handleConfig)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	middlewares := []Middleware{RequestID(), RequestLogger(log), Recover()}
	if cfg.AccessLog {
		middlewares = append(middlewares, AccessLog())
	}
	return Chain(mux, middlewares...)
}

func (rt *router) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (rt *router) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := rt.status.Current()
	if snap == nil || !snap.Valid {
		writeError(w, r, http.StatusServiceUnavailable, domain.CodeValidation, "configuration not ready")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":      "ready",
		"fingerprint": snap.Fingerprint,
	})
}

func (rt *router) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := rt.status.Current()
	if snap == nil {
		writeError(w, r, http.StatusServiceUnavailable, domain.CodeRuntime, "no build yet")
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (rt *router) handleConfig(w http.ResponseWriter, r *http.Request) {
	snap := rt.status.LastValid()
	if snap == nil {
		writeError(w, r, http.StatusServiceUnavailable, domain.CodeValidation, "no valid configuration")
		return
	}
	w.Header().Set("X-Config-Fingerprint", snap.Fingerprint)
	writeJSON(w, r, http.StatusOK, snap.Config)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, r, status, &Response{
		Code:    CodeOK,
		Message: "Success",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	writeEnvelope(w, r, status, &Response{Code: code, Message: message})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	resp.RequestID = GetRequestIDFromContext(r.Context())
	resp.Timestamp = time.Now().UnixMilli()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; a failed write means the client left.
	_ = json.NewEncoder(w).Encode(resp)
}
