package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eugenenazirov/devops-api/internal/config"
	"github.com/eugenenazirov/devops-api/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves the informational endpoints from a resolved configuration
// and the component storage.
type Handler struct {
	cfg     config.Config
	storage storage.Storage

	clock     func() time.Time
	startedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler. Uptime is measured from this call.
func NewHandler(cfg config.Config, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		cfg:     cfg,
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startedAt = h.clock()
	return h
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) error {
	resp := rootResponse{
		Message: fmt.Sprintf("Welcome to the %s!", h.cfg.AppName),
		Version: h.cfg.AppVersion,
		Debug:   h.cfg.Debug,
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	resp := healthResponse{
		Status: "ok",
		Uptime: h.clock().Sub(h.startedAt).Seconds(),
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *Handler) handleConfig(w http.ResponseWriter, _ *http.Request) error {
	resp := configResponse{
		AppName:    h.cfg.AppName,
		AppVersion: h.cfg.AppVersion,
		Debug:      h.cfg.Debug,
		Host:       h.cfg.Host,
		Port:       h.cfg.Port,
		LogLevel:   string(h.cfg.LogLevel),
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *Handler) handleComponent(w http.ResponseWriter, _ *http.Request) error {
	c, err := h.storage.GetComponent()
	if err != nil {
		if errors.Is(err, storage.ErrNoComponent) {
			return NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	writeJSON(w, http.StatusOK, c)
	return nil
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Debug   bool   `json:"debug"`
}

type healthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

// configResponse omits the reload flag.
type configResponse struct {
	AppName    string `json:"app_name"`
	AppVersion string `json:"app_version"`
	Debug      bool   `json:"debug"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	LogLevel   string `json:"log_level"`
}
