package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fantasy-tools/fpl-optimizer/internal/catalog"
	"github.com/fantasy-tools/fpl-optimizer/internal/config"
	"github.com/fantasy-tools/fpl-optimizer/internal/pipeline"
	"github.com/fantasy-tools/fpl-optimizer/internal/solver"
)

// RecordFetcher supplies the candidate pool. Implemented by the FPL client.
type RecordFetcher interface {
	FetchRecords(ctx context.Context) ([]catalog.Record, error)
}

// OptimizeRequest carries optional overrides for one optimization run.
type OptimizeRequest struct {
	Budget           *float64 `json:"budget,omitempty"`
	MaxPerClub       *int     `json:"max_per_club,omitempty"`
	FormWeight       *float64 `json:"form_weight,omitempty"`
	TimeLimitSeconds *int     `json:"time_limit_seconds,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// OptimizeHandler handles squad optimization requests.
type OptimizeHandler struct {
	fetcher RecordFetcher
	config  *config.Config
	logger  *logrus.Logger
}

// NewOptimizeHandler creates a new optimization handler.
func NewOptimizeHandler(fetcher RecordFetcher, cfg *config.Config, logger *logrus.Logger) *OptimizeHandler {
	return &OptimizeHandler{
		fetcher: fetcher,
		config:  cfg,
		logger:  logger,
	}
}

// Optimize runs the full selection pipeline and returns squad, lineup and
// captain.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "invalid request format: " + err.Error(),
				Code:  "INVALID_REQUEST",
			})
			return
		}
	}

	records, err := h.fetcher.FetchRecords(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	formWeight := h.config.FormWeight
	if req.FormWeight != nil {
		formWeight = *req.FormWeight
	}
	cat, err := catalog.Load(records, catalog.DeriveConfig{FormWeight: formWeight})
	if err != nil {
		h.respondError(c, err)
		return
	}

	rules := pipeline.RulesFromConfig(h.config)
	if req.Budget != nil {
		rules.Roster.Budget = *req.Budget
	}
	if req.MaxPerClub != nil {
		rules.Roster.MaxPerClub = *req.MaxPerClub
	}

	timeout := time.Duration(h.config.SolveTimeoutSeconds) * time.Second
	if req.TimeLimitSeconds != nil {
		timeout = time.Duration(*req.TimeLimitSeconds) * time.Second
	}

	p := pipeline.New(solver.Options{
		TimeLimit: timeout,
		Workers:   h.config.SolverWorkers,
	})
	result, err := p.Run(c.Request.Context(), cat, rules)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *OptimizeHandler) respondError(c *gin.Context, err error) {
	var (
		configErr     *pipeline.ConfigError
		validationErr *catalog.ValidationError
		formatErr     *catalog.DataFormatError
		engineErr     *solver.EngineError
	)
	switch {
	case errors.As(err, &configErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "CONFIG_ERROR"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
	case errors.As(err, &formatErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error(), Code: "DATA_FORMAT_ERROR"})
	case errors.Is(err, solver.ErrInfeasible):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "INFEASIBLE"})
	case errors.Is(err, solver.ErrTimedOutNoSolution):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: err.Error(), Code: "TIMED_OUT_NO_SOLUTION"})
	case errors.As(err, &engineErr):
		h.logger.WithError(err).Error("Solver engine failure")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "ENGINE_ERROR"})
	default:
		h.logger.WithError(err).Error("Optimization request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL_ERROR"})
	}
}
