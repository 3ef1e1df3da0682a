// Package analysis implements the relationship-graph construction and
// cluster-extraction pipeline: return-matrix preprocessing, correlation graph
// building, flow-edge thresholding, cluster fusion and run summarization.
//
// Every stage consumes immutable inputs and produces a new immutable output,
// so results can be reused across report generations without locking.
package analysis

import "fmt"

// InsufficientDataError reports that too few assets or aligned observations
// survived alignment to form a return matrix.
type InsufficientDataError struct {
	Stage        string
	Assets       int
	Observations int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data (assets=%d observations=%d)", e.Stage, e.Assets, e.Observations)
}

// DegenerateSeriesError reports a zero-variance asset column that would make
// standardization divide by zero.
type DegenerateSeriesError struct {
	Stage string
	Asset string
}

func (e *DegenerateSeriesError) Error() string {
	return fmt.Sprintf("%s: degenerate series for asset %s (zero variance)", e.Stage, e.Asset)
}

// OracleFailureError reports that the external transfer-entropy estimator
// failed or returned malformed data.
type OracleFailureError struct {
	Stage string
	Err   error
}

func (e *OracleFailureError) Error() string {
	return fmt.Sprintf("%s: oracle failure: %v", e.Stage, e.Err)
}

func (e *OracleFailureError) Unwrap() error { return e.Err }
