package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	domrepo "CorrNet/internal/domain/repository"
	domsvc "CorrNet/internal/domain/service"
	"CorrNet/pkg/logger"
	"CorrNet/pkg/queue"
)

// ReportJob renders a Markdown report for a completed run and writes it to
// the configured output directory. It runs on the Redis queue so report
// rendering never blocks the analysis path.
type ReportJob struct {
	runs     domrepo.RunStore
	renderer domsvc.ReportRenderer
	outDir   string
	lgr      *logger.Logger
}

func NewReportJob(runs domrepo.RunStore, renderer domsvc.ReportRenderer, outDir string, lgr *logger.Logger) *ReportJob {
	return &ReportJob{runs: runs, renderer: renderer, outDir: outDir, lgr: lgr}
}

func (j *ReportJob) Name() string { return "report_render" }
func (j *ReportJob) Type() string { return "report_render" }

// ReportPayload is the queue message body for report rendering.
type ReportPayload struct {
	RunID string `json:"run_id"`
}

func (j *ReportJob) Handle(ctx context.Context, payload interface{}) error {
	raw, ok := payload.(json.RawMessage)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", payload)
	}
	var p ReportPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("decode report payload: %w", err)
	}
	if p.RunID == "" {
		return fmt.Errorf("run_id required")
	}

	res, err := j.runs.GetRun(ctx, p.RunID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", p.RunID, err)
	}
	md, err := j.renderer.RenderMarkdown(res)
	if err != nil {
		return fmt.Errorf("render report %s: %w", p.RunID, err)
	}

	if err := os.MkdirAll(j.outDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(j.outDir, fmt.Sprintf("network_report_%s.md", p.RunID))
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	j.lgr.Info("report rendered", logger.String("run_id", p.RunID), logger.String("path", path))
	return nil
}

var _ queue.Job = (*ReportJob)(nil)
