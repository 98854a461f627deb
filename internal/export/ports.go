// Package export publishes analysis summaries to external destinations.
package export

import (
	"context"

	"finsight/internal/services"
)

// ReportSink receives finished analysis reports.
type ReportSink interface {
	// AppendReport writes one summary row and returns a destination reference.
	AppendReport(ctx context.Context, report services.Report) (string, error)
}
