package usecase

import (
	"context"
	"fmt"

	"CorrNet/internal/domain/models"
	domrepo "CorrNet/internal/domain/repository"
	domsvc "CorrNet/internal/domain/service"
)

// RunsUseCase serves stored analysis runs back to the API. An empty run id
// means "latest".
type RunsUseCase struct {
	runs     domrepo.RunStore
	renderer domsvc.ReportRenderer
}

func NewRunsUseCase(runs domrepo.RunStore, renderer domsvc.ReportRenderer) *RunsUseCase {
	return &RunsUseCase{runs: runs, renderer: renderer}
}

func (uc *RunsUseCase) Get(ctx context.Context, runID string) (*models.AnalysisResult, error) {
	if runID == "" {
		return uc.runs.LatestRun(ctx)
	}
	return uc.runs.GetRun(ctx, runID)
}

// Report renders the Markdown report for a run and returns it with the
// resolved run id.
func (uc *RunsUseCase) Report(ctx context.Context, runID string) (string, string, error) {
	res, err := uc.Get(ctx, runID)
	if err != nil {
		return "", "", fmt.Errorf("load run: %w", err)
	}
	md, err := uc.renderer.RenderMarkdown(res)
	if err != nil {
		return "", "", fmt.Errorf("render report: %w", err)
	}
	return md, res.RunID, nil
}
