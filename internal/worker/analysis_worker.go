// Package worker runs the periodic and queue-triggered analysis passes.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finsight/internal/amqp"
	"finsight/internal/export"
	"finsight/internal/services"
)

// UserLister enumerates users that have data worth analyzing.
type UserLister interface {
	ListUsers(ctx context.Context) ([]string, error)
}

// AnalysisWorker consumes analysis requests and runs scheduled passes,
// persisting each composite report and optionally exporting a summary row.
type AnalysisWorker struct {
	service *services.AnalyticsService
	users   UserLister
	sink    export.ReportSink
}

// NewAnalysisWorker builds a worker. sink may be nil; export is then skipped.
func NewAnalysisWorker(service *services.AnalyticsService, users UserLister, sink export.ReportSink) *AnalysisWorker {
	return &AnalysisWorker{
		service: service,
		users:   users,
		sink:    sink,
	}
}

// HandleRequest processes one queued analysis request.
func (w *AnalysisWorker) HandleRequest(ctx context.Context, msg *amqp.AnalysisRequestMessage) error {
	return w.analyzeUser(ctx, msg.UserID)
}

// RunScheduled analyzes every known user. Per-user failures are logged and
// do not abort the pass.
func (w *AnalysisWorker) RunScheduled(ctx context.Context) error {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(users) == 0 {
		slog.InfoContext(ctx, "No users to analyze")
		return nil
	}

	slog.InfoContext(ctx, "Starting scheduled analysis pass", "users", len(users))
	start := time.Now()

	failures := 0
	for _, userID := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.analyzeUser(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "Scheduled analysis failed", "user_id", userID, "error", err)
			failures++
		}
	}

	slog.InfoContext(ctx, "Scheduled analysis pass completed",
		"users", len(users),
		"failures", failures,
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}

func (w *AnalysisWorker) analyzeUser(ctx context.Context, userID string) error {
	report, err := w.service.PersistSummary(ctx, userID)
	if err != nil {
		return fmt.Errorf("analyze user %s: %w", userID, err)
	}

	slog.InfoContext(ctx, "Analysis report generated",
		"user_id", userID,
		"health_score", report.Health.OverallScore,
		"rating", report.Health.Rating,
		"anomalies", report.Anomalies.Count)

	// Independent sequence-level cross-check on the z-score detectors.
	flagged, err := w.service.OutlierScan(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Outlier scan failed", "user_id", userID, "error", err)
	} else {
		for category, reason := range flagged {
			slog.WarnContext(ctx, "Outlier pattern flagged",
				"user_id", userID,
				"category", category,
				"reason", reason)
		}
	}

	if w.sink != nil {
		ref, err := w.sink.AppendReport(ctx, report)
		if err != nil {
			// Export is best effort; the report is already persisted.
			slog.ErrorContext(ctx, "Report export failed", "user_id", userID, "error", err)
		} else {
			slog.InfoContext(ctx, "Report exported", "user_id", userID, "ref", ref)
		}
	}

	return nil
}
