package analysis

import (
	"sort"

	"CorrNet/internal/domain/models"
)

// InformationFlowAdapter thresholds and ranks the directed edge list produced
// by the external transfer-entropy estimator. The estimator's output is
// treated as given: no deduplication, and the optional p-value is carried
// through untouched (thresholding is strength-only).
type InformationFlowAdapter struct{}

func NewInformationFlowAdapter() *InformationFlowAdapter { return &InformationFlowAdapter{} }

// FilterAndRank keeps edges whose strength reaches the threshold and sorts
// them descending by strength. Ties keep the estimator-provided order. An
// empty input is a valid outcome and yields an empty sequence, not an error.
func (a *InformationFlowAdapter) FilterAndRank(raw []models.FlowEdge, threshold float64) []models.FlowEdge {
	out := []models.FlowEdge{}
	for _, e := range raw {
		if e.Strength >= threshold {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Strength > out[j].Strength
	})
	return out
}
