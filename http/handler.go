package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sagarc03/confguard"
)

// DefaultMaxBodyBytes is the request body limit used when HandlerConfig
// leaves MaxBodyBytes unset.
const DefaultMaxBodyBytes int64 = 1 << 20

type Service interface {
	CheckBytes(ctx context.Context, name string, data []byte) (confguard.Report, error)
	History(ctx context.Context, q confguard.RunQuery) ([]confguard.Run, error)
	Run(ctx context.Context, id uuid.UUID) (confguard.Run, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	MaxBodyBytes int64
	CORS         CORSConfig
	// Metrics enables GET /metrics and request instrumentation when set.
	Metrics *Metrics
}

// Handler serves the validation and run history endpoints.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)

	if h.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.config.Metrics.handler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.With(BodyLimitMiddleware(h.config.MaxBodyBytes)).Post("/validate", h.handleValidate)
		r.Get("/runs", h.handleListRuns)
		r.Get("/runs/{id}", h.handleGetRun)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			HandleError(w, ErrBodyTooLarge)
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_body", "Could not read request body")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "request"
	}

	report, err := h.service.CheckBytes(r.Context(), name, data)
	if err != nil {
		if report.ID == uuid.Nil {
			HandleError(w, fmt.Errorf("validate: %w", err))
			return
		}
		slog.Warn("validation completed but run was not recorded", "name", name, "error", err)
	}

	if h.config.Metrics != nil {
		h.config.Metrics.ObserveReport(report)
	}

	_ = WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	query := confguard.RunQuery{Path: r.URL.Query().Get("path")}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		query.Limit = limit
	}

	runs, err := h.service.History(r.Context(), query)
	if err != nil {
		HandleError(w, err)
		return
	}

	if runs == nil {
		runs = []confguard.Run{}
	}

	_ = WriteJSON(w, http.StatusOK, struct {
		Runs []confguard.Run `json:"runs"`
	}{Runs: runs})
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "Run id must be a UUID")
		return
	}

	run, err := h.service.Run(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, run)
}
