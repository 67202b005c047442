package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/runtimecfg/internal/definition"
	"github.com/eugenenazirov/runtimecfg/internal/runtimeconfig"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves the client-visible view of the resolved configuration.
type Handler struct {
	def     definition.Definition
	runtime *runtimeconfig.RuntimeConfig

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler for a definition and its resolved settings.
func NewHandler(def definition.Definition, runtime *runtimeconfig.RuntimeConfig, opts ...HandlerOption) *Handler {
	h := &Handler{
		def:     def,
		runtime: runtime,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRuntimeConfig(w http.ResponseWriter, r *http.Request) {
	_ = r
	if h.runtime == nil {
		writeInternalError(w, errors.New("runtime configuration not resolved"))
		return
	}

	resp := runtimeConfigResponse{
		Public: h.runtime,
		App: appResponse{
			CompatibilityDate: h.def.CompatibilityDate,
			Modules:           h.def.Modules,
			Devtools:          h.def.Devtools,
		},
	}
	if h.def.AuthEnabled() && h.def.Auth != nil {
		redirect := h.def.Auth.RedirectOptions
		resp.App.Auth = &authResponse{RedirectOptions: redirect}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("path"))
	if target == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "path query parameter is required", "e.g. /api/redirect?path=/playlists")
		return
	}

	if !h.def.AuthEnabled() || h.def.Auth == nil {
		writeJSON(w, http.StatusNotFound, redirectResponse{
			Path:    target,
			Guarded: false,
			Reason:  "auth module disabled",
		})
		return
	}

	redirect := h.def.Auth.RedirectOptions
	resp := redirectResponse{
		Path:    target,
		Guarded: redirect.Guards(target),
	}
	if resp.Guarded {
		resp.Login = redirect.Login
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type runtimeConfigResponse struct {
	Public *runtimeconfig.RuntimeConfig `json:"public"`
	App    appResponse                  `json:"app"`
}

type appResponse struct {
	CompatibilityDate string        `json:"compatibilityDate,omitempty"`
	Modules           []string      `json:"modules"`
	Devtools          bool          `json:"devtools"`
	Auth              *authResponse `json:"auth,omitempty"`
}

type authResponse struct {
	RedirectOptions definition.RedirectOptions `json:"redirectOptions"`
}

type redirectResponse struct {
	Path    string `json:"path"`
	Guarded bool   `json:"guarded"`
	Login   string `json:"login,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
