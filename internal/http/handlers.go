package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/core"
)

// DefaultUserID is assumed when a request carries no user.
const DefaultUserID = "default"

type createTransactionRequest struct {
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
}

type setBudgetRequest struct {
	UserID   string `json:"user_id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
}

type setAccountRequest struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

type analysisRequest struct {
	UserID      string  `json:"user_id"`
	BudgetLimit float64 `json:"budget_limit,omitempty"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	tx := core.Transaction{
		Date:        core.Date{Time: day},
		Description: req.Description,
		Amount:      core.Money{Cents: cents},
		Category:    req.Category,
		Kind:        core.Kind(strings.ToUpper(req.Kind)),
	}

	userID := userOrDefault(req.UserID)
	id, err := s.api.CreateTransaction(r.Context(), userID, tx)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.summaryCache.Delete(userID)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "status": "created"})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req setBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit: "+err.Error())
		return
	}

	userID := userOrDefault(req.UserID)
	if err := s.api.SetBudget(r.Context(), userID, req.Category, core.Money{Cents: cents}); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.summaryCache.Delete(userID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "saved"})
}

func (s *Server) handleSetAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req setAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cents, err := core.ParseDecimalToCents(req.Balance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid balance: "+err.Error())
		return
	}

	account := core.Account{
		Name:    req.Name,
		Type:    core.AccountType(strings.ToUpper(req.Type)),
		Balance: core.Money{Cents: cents},
	}

	userID := userOrDefault(req.UserID)
	if err := s.api.SetAccount(r.Context(), userID, account); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.summaryCache.Delete(userID)
	writeJSON(w, http.StatusOK, map[string]any{"status": "saved"})
}

func (s *Server) handleSpendingAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := analysisUser(w, r)
	if !ok {
		return
	}

	patterns, err := s.api.SpendingAnalysis(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "spending_patterns": patterns})
}

func (s *Server) handleBudgetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := analysisUser(w, r)
	if !ok {
		return
	}

	status, err := s.api.BudgetAnalysis(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "budget_status": status})
}

func (s *Server) handleFinancialHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := analysisUser(w, r)
	if !ok {
		return
	}

	health, err := s.api.FinancialHealth(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "health": health})
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	userID, ok := analysisUser(w, r)
	if !ok {
		return
	}

	netWorth, err := s.api.NetWorth(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "net_worth": netWorth})
}

func (s *Server) handleSpendingOptimization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := userOrDefault(req.UserID)
	optimization, err := s.api.OptimizeSavings(r.Context(), userID, req.BudgetLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "optimization": optimization})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	userID, ok := analysisUser(w, r)
	if !ok {
		return
	}

	res, err := s.api.Anomalies(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, softResultBody(userID, "anomalies", res.Value, res.Kind, res.Detail))
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	userID, ok := analysisUser(w, r)
	if !ok {
		return
	}

	res, err := s.api.Predictions(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, softResultBody(userID, "predictions", res.Value, res.Kind, res.Detail))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := userOrDefault(r.URL.Query().Get("user_id"))

	if report, found := s.summaryCache.Get(userID); found {
		slog.DebugContext(r.Context(), "Summary served from cache", "user_id", userID)
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.api.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.summaryCache.Set(userID, report)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := userOrDefault(r.URL.Query().Get("user_id"))
	report, err := s.api.LatestReport(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "no stored report for user")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// analysisUser resolves the target user for a POST analysis endpoint. The
// body is optional; an absent or empty user falls back to DefaultUserID.
func analysisUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return "", false
	}

	var req analysisRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return "", false
		}
	}
	return userOrDefault(req.UserID), true
}

func userOrDefault(userID string) string {
	if strings.TrimSpace(userID) == "" {
		return DefaultUserID
	}
	return userID
}

func softResultBody(userID, field string, value any, kind analytics.ErrorKind, detail string) map[string]any {
	body := map[string]any{
		"user_id": userID,
		"status":  kind.String(),
		field:     value,
	}
	if detail != "" {
		body["detail"] = detail
	}
	return body
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyAccountName):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
