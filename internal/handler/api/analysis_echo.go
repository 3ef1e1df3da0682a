package api

import (
	"time"

	models "CorrNet/internal/domain/models"
	domrepo "CorrNet/internal/domain/repository"
	"CorrNet/internal/usecase"
	xhttp "CorrNet/pkg/http"
	xlogger "CorrNet/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler exposes the analysis pipeline over HTTP.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.NetworkAnalyzer
	runs     *usecase.RunsUseCase
	candles  *usecase.CandlesUseCase

	defaultCorrThreshold float64
	defaultFlowThreshold float64
}

type Option func(*AnalysisEchoHandler)

// WithDefaultThresholds sets the thresholds used when a run request omits
// them. An explicit 0 in the request is honored, not replaced.
func WithDefaultThresholds(correlation, flow float64) Option {
	return func(h *AnalysisEchoHandler) {
		h.defaultCorrThreshold = correlation
		h.defaultFlowThreshold = flow
	}
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analyzer *usecase.NetworkAnalyzer, runs *usecase.RunsUseCase, candles *usecase.CandlesUseCase, opts ...Option) *AnalysisEchoHandler {
	h := &AnalysisEchoHandler{
		logger:   logger,
		analyzer: analyzer,
		runs:     runs,
		candles:  candles,

		defaultCorrThreshold: 0.6,
		defaultFlowThreshold: 0.05,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func thresholdOrDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/analysis")
	g.POST("/run", h.Run)
	g.GET("/summary", h.Summary)
	g.GET("/edges", h.Edges)
	g.GET("/clusters", h.Clusters)
	g.GET("/report", h.Report)
	e.GET("/api/candles", h.Candles)
}

func (h *AnalysisEchoHandler) Run(c echo.Context) error {
	req := &models.RunAnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.Run(c.Request().Context(), usecase.RunParams{
		Hours:                req.Hours,
		MaxAssets:            req.MaxAssets,
		CorrelationThreshold: thresholdOrDefault(req.CorrelationThreshold, h.defaultCorrThreshold),
		FlowThreshold:        thresholdOrDefault(req.FlowThreshold, h.defaultFlowThreshold),
		Interval:             req.Interval,
	})
	if err != nil {
		h.logger.Error("analysis run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Summary(c echo.Context) error {
	req := &models.ClustersRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.runs.Get(c.Request().Context(), req.RunID)
	if err != nil {
		h.logger.Error("summary lookup error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"run_id":  res.RunID,
		"summary": res.Summary,
	})
}

func (h *AnalysisEchoHandler) Edges(c echo.Context) error {
	req := &models.EdgesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.runs.Get(c.Request().Context(), req.RunID)
	if err != nil {
		h.logger.Error("edges lookup error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	corr := res.CorrelationEdges
	flow := res.FlowEdges
	if len(corr) > req.Limit {
		corr = corr[:req.Limit]
	}
	if len(flow) > req.Limit {
		flow = flow[:req.Limit]
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"run_id":            res.RunID,
		"correlation_pairs": corr,
		"te_connections":    flow,
	})
}

func (h *AnalysisEchoHandler) Clusters(c echo.Context) error {
	req := &models.ClustersRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.runs.Get(c.Request().Context(), req.RunID)
	if err != nil {
		h.logger.Error("clusters lookup error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"run_id":             res.RunID,
		"asset_combinations": res.Clusters,
	})
}

func (h *AnalysisEchoHandler) Report(c echo.Context) error {
	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	md, runID, err := h.runs.Report(c.Request().Context(), req.RunID)
	if err != nil {
		h.logger.Error("report render error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/markdown; charset=utf-8")
	c.Response().Header().Set("X-Run-ID", runID)
	return c.String(200, md)
}

func (h *AnalysisEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	// Explicit from/to (RFC3339 or unix seconds) take precedence over the hours window.
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Now().UTC())
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), to.Add(-time.Duration(req.Hours)*time.Hour))

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		From:      from,
		To:        to,
		Timeframe: tf,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("candles usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}
