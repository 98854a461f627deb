package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finsight/internal/services"
)

// SheetsSink appends one summary row per report to a Google Sheet.
type SheetsSink struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ReportSink = (*SheetsSink)(nil)

// NewSheetsSinkFromEnv creates a sink using environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Sheet name from GOOGLE_SHEET_NAME
// (default "Reports").
func NewSheetsSinkFromEnv(ctx context.Context) (*SheetsSink, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Reports"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &SheetsSink{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// AppendReport writes a summary row: timestamp, user, health score, rating,
// net worth, anomaly count and annual savings potential.
func (s *SheetsSink) AppendReport(ctx context.Context, report services.Report) (string, error) {
	if s.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row := reportRow(report)

	rng := fmt.Sprintf("%s!A:G", s.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append report row to sheet %s: %w", s.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"user_id", report.UserID,
		"range", ref,
		"health_score", report.Health.OverallScore)

	return ref, nil
}

// reportRow flattens a report into the exported sheet columns.
func reportRow(report services.Report) []any {
	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now().UTC()
	}
	return []any{
		generated.Format(time.RFC3339),
		report.UserID,
		report.Health.OverallScore,
		string(report.Health.Rating),
		report.NetWorth.NetWorth,
		report.Anomalies.Count,
		report.Savings.TotalPotentialAnnualSaved,
	}
}
