package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/coderoom-server/internal/core"
	"github.com/vovakirdan/coderoom-server/internal/execengine"
	"github.com/vovakirdan/coderoom-server/internal/service/execution"
	"github.com/vovakirdan/coderoom-server/internal/store"
)

const (
	serviceName    = "backend"
	serviceVersion = 1

	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Executor runs code and lists the runtimes it can run.
type Executor interface {
	Run(ctx context.Context, language, code, stdin string) (*execution.Result, error)
	Runtimes(ctx context.Context) ([]execengine.Runtime, error)
}

// StatsProvider reports live hub counters.
type StatsProvider interface {
	Stats() core.Stats
}

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	exec  Executor
	stats StatsProvider
	runs  store.RunStore
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance. runs may be nil when
// the audit log is disabled.
func NewAPIHandlers(exec Executor, stats StatsProvider, runs store.RunStore, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		exec:  exec,
		stats: stats,
		runs:  runs,
		log:   logger,
	}
}

// RunRequest represents the run request body.
type RunRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Stdin    string `json:"stdin"`
}

// RunResponse is returned for every run outcome.
type RunResponse struct {
	Out string `json:"out"`
	Err string `json:"err"`
}

// HealthResponse represents the health check body.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     int    `json:"version"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

// RunRecordResponse is one audited run.
type RunRecordResponse struct {
	ID         int64  `json:"id"`
	Language   string `json:"language"`
	Version    string `json:"version"`
	Result     string `json:"result"`
	DurationMs int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Root answers liveness probes with plain text.
// GET /
func (h *APIHandlers) Root(c *gin.Context) {
	c.String(http.StatusOK, "Backend is running!!")
}

// Health reports service identity and hub counters.
// GET /api/health
func (h *APIHandlers) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Service: serviceName, Version: serviceVersion}
	if h.stats != nil {
		st := h.stats.Stats()
		resp.Rooms = st.Rooms
		resp.Connections = st.Connections
	}
	c.JSON(http.StatusOK, resp)
}

// Run executes code through the execution service.
// POST /api/run
func (h *APIHandlers) Run(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid run request")
		// Same {out, err} reply shape as the execution errors.
		c.JSON(http.StatusBadRequest, RunResponse{Err: "invalid request body"})
		return
	}

	res, err := h.exec.Run(c.Request.Context(), req.Language, req.Code, req.Stdin)
	if err != nil {
		c.JSON(runStatus(err), RunResponse{Err: err.Error()})
		return
	}
	c.JSON(http.StatusOK, RunResponse{Out: res.Out, Err: res.Err})
}

func runStatus(err error) int {
	var execErr *execution.Error
	if !errors.As(err, &execErr) {
		return http.StatusInternalServerError
	}
	switch execErr.Code {
	case execution.CodeUnsupportedLanguage:
		return http.StatusBadRequest
	case execution.CodeServiceError, execution.CodeNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Runtimes lists the engine runtimes from the catalog cache.
// GET /api/runtimes
func (h *APIHandlers) Runtimes(c *gin.Context) {
	rts, err := h.exec.Runtimes(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to list runtimes")
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "runtime catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, rts)
}

// Runs lists recent audited executions.
// GET /api/runs?limit=N
func (h *APIHandlers) Runs(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "run audit log is disabled"})
		return
	}

	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = min(n, maxRunsLimit)
	}

	records, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list runs")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]RunRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, RunRecordResponse{
			ID:         r.ID,
			Language:   r.Language,
			Version:    r.Version,
			Result:     r.Result,
			DurationMs: r.DurationMs,
			CreatedAt:  r.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, resp)
}
