package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	models "CorrNet/internal/domain/models"
	xhttp "CorrNet/pkg/http"

	"github.com/labstack/echo/v4"
)

func bindRunRequest(t *testing.T, body string) (*models.RunAnalysisRequest, interface{}) {
	t.Helper()
	e := echo.New()
	r := httptest.NewRequest(http.MethodPost, "/api/analysis/run", strings.NewReader(body))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	c := e.NewContext(r, w)

	req := &models.RunAnalysisRequest{}
	verr := xhttp.ReadAndValidateRequest(c, req)
	return req, verr
}

func TestRunRequestZeroThresholdsSurviveBinding(t *testing.T) {
	req, verr := bindRunRequest(t, `{"correlation": 0, "te": 0}`)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if req.CorrelationThreshold == nil || *req.CorrelationThreshold != 0 {
		t.Fatalf("correlation = %v, want explicit 0", req.CorrelationThreshold)
	}
	if req.FlowThreshold == nil || *req.FlowThreshold != 0 {
		t.Fatalf("te = %v, want explicit 0", req.FlowThreshold)
	}
	if got := thresholdOrDefault(req.CorrelationThreshold, 0.6); got != 0 {
		t.Fatalf("resolved correlation threshold = %g, want 0", got)
	}
	if got := thresholdOrDefault(req.FlowThreshold, 0.05); got != 0 {
		t.Fatalf("resolved te threshold = %g, want 0", got)
	}
}

func TestRunRequestAbsentThresholdsUseDefaults(t *testing.T) {
	req, verr := bindRunRequest(t, `{"hours": 48}`)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if req.CorrelationThreshold != nil || req.FlowThreshold != nil {
		t.Fatalf("absent thresholds should bind as nil, got %v / %v",
			req.CorrelationThreshold, req.FlowThreshold)
	}
	if got := thresholdOrDefault(req.CorrelationThreshold, 0.6); got != 0.6 {
		t.Fatalf("resolved correlation threshold = %g, want 0.6", got)
	}
	if got := thresholdOrDefault(req.FlowThreshold, 0.05); got != 0.05 {
		t.Fatalf("resolved te threshold = %g, want 0.05", got)
	}
	if req.Hours != 48 {
		t.Fatalf("hours = %d, want 48", req.Hours)
	}
	if req.MaxAssets != 20 || req.Interval != "1h" {
		t.Fatalf("defaults not applied: %+v", req)
	}
}

func TestRunRequestRejectsOutOfRangeThreshold(t *testing.T) {
	if _, verr := bindRunRequest(t, `{"correlation": 1.5}`); verr == nil {
		t.Fatal("expected validation error for correlation=1.5")
	}
	if _, verr := bindRunRequest(t, `{"te": -0.1}`); verr == nil {
		t.Fatal("expected validation error for te=-0.1")
	}
}
