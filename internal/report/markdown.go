// Package report renders completed analysis runs as Markdown documents.
package report

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"CorrNet/internal/domain/models"
	domsvc "CorrNet/internal/domain/service"
)

// topN caps the per-section edge listings so reports stay readable on
// dense networks.
const topN = 20

// EstimatorInfo describes the oracle configuration echoed into the
// technical-notes section.
type EstimatorInfo struct {
	Estimator  string
	KraskovK   int
	NumThreads string
	NPermMax   int
}

// MarkdownRenderer implements service.ReportRenderer using text/template.
type MarkdownRenderer struct {
	tmpl *template.Template
	info EstimatorInfo
	now  func() time.Time
}

type Option func(*MarkdownRenderer)

// WithClock overrides the timestamp source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(r *MarkdownRenderer) { r.now = now }
}

func NewMarkdownRenderer(info EstimatorInfo, opts ...Option) *MarkdownRenderer {
	r := &MarkdownRenderer{
		tmpl: template.Must(template.New("report").Funcs(funcMap).Parse(reportTemplate)),
		info: info,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var funcMap = template.FuncMap{
	"f3": func(v float64) string { return fmt.Sprintf("%.3f", v) },
	"f4": func(v float64) string { return fmt.Sprintf("%.4f", v) },
	"inc": func(i int) int { return i + 1 },
	"join": func(xs []string) string { return strings.Join(xs, ", ") },
	"pval": func(p *float64) string {
		if p == nil {
			return ""
		}
		return fmt.Sprintf(", p=%.4f", *p)
	},
}

type reportData struct {
	GeneratedAt string
	Res         *models.AnalysisResult
	CorrTop     []models.CorrelationEdge
	FlowTop     []models.FlowEdge
	Info        EstimatorInfo
}

func (r *MarkdownRenderer) RenderMarkdown(res *models.AnalysisResult) (string, error) {
	if res == nil {
		return "", fmt.Errorf("nil result")
	}
	data := reportData{
		GeneratedAt: r.now().UTC().Format("2006-01-02 15:04:05"),
		Res:         res,
		CorrTop:     capCorr(res.CorrelationEdges, topN),
		FlowTop:     capFlow(res.FlowEdges, topN),
		Info:        r.info,
	}
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return sb.String(), nil
}

func capCorr(es []models.CorrelationEdge, n int) []models.CorrelationEdge {
	if len(es) > n {
		return es[:n]
	}
	return es
}

func capFlow(es []models.FlowEdge, n int) []models.FlowEdge {
	if len(es) > n {
		return es[:n]
	}
	return es
}

const reportTemplate = `# Crypto Market Network Analysis Report

Generated: {{.GeneratedAt}}
Run: {{.Res.RunID}}

## Data Overview

- Assets analysed: {{.Res.Summary.TotalAssets}}
- Time window: {{.Res.LookbackHours}} hours
- Observations: {{.Res.Observations}}
- Network density: {{f3 .Res.Summary.NetworkDensity}}

## Highly Correlated Pairs

{{if .CorrTop}}Found {{.Res.Summary.CorrelationPairs}} highly correlated asset pairs:

{{range $i, $e := .CorrTop}}{{inc $i}}. {{$e.AssetA}} <-> {{$e.AssetB}} (correlation: {{f4 $e.Correlation}})
{{end}}{{else}}No highly correlated asset pairs found.
{{end}}
## Information Flow Connections

{{if .FlowTop}}Found {{.Res.Summary.FlowConnections}} transfer entropy connections:

{{range $i, $e := .FlowTop}}{{inc $i}}. {{$e.Source}} -> {{$e.Target}} (TE: {{f4 $e.Strength}}{{pval $e.PValue}})
{{end}}{{else}}No significant transfer entropy connections found.
{{end}}
## Asset Clusters

{{if .Res.Clusters}}Found {{.Res.Summary.Clusters}} asset clusters:

{{range $i, $c := .Res.Clusters}}{{inc $i}}. {{$c.Origin}} cluster: {{join $c.Assets}} (size: {{$c.Size}}, strength: {{$c.Strength}})
{{end}}{{else}}No significant asset clusters found.
{{end}}
## Technical Notes

Information-flow estimation runs on a native-Python estimator service:

- Estimator: {{.Info.Estimator}}
- Kraskov k: {{.Info.KraskovK}}
- Threads: {{.Info.NumThreads}}
- Permutations (max stat): {{.Info.NPermMax}}

## Disclaimer

This analysis is derived from historical data and is not investment advice.
`

var _ domsvc.ReportRenderer = (*MarkdownRenderer)(nil)
