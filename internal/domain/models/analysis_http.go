package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type RunAnalysisRequest struct {
	Hours     int    `query:"hours" json:"hours" default:"72" validate:"gte=1,lte=720"`
	MaxAssets int    `query:"max_assets" json:"max_assets" default:"20" validate:"gte=2,lte=100"`
	Interval  string `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 1h"`

	// Thresholds are pointers: 0 is a valid value (keep every pair), so the
	// handler falls back to configured defaults only when the field is absent.
	CorrelationThreshold *float64 `query:"correlation" json:"correlation" validate:"omitempty,gte=0,lte=1"`
	FlowThreshold        *float64 `query:"te" json:"te" validate:"omitempty,gte=0"`
}

type EdgesRequest struct {
	RunID string `query:"run_id" json:"run_id"`
	Limit int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=500"`
}

type ClustersRequest struct {
	RunID string `query:"run_id" json:"run_id"`
}

type ReportRequest struct {
	RunID string `query:"run_id" json:"run_id"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Hours  int    `query:"hours" json:"hours" default:"72" validate:"gte=1,lte=720"`
	TF     string `query:"tf" json:"tf" default:"1h" validate:"oneof=1m 5m 1h"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}
