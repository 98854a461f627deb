// Package services orchestrates storage, the analytics engine and the
// message queue behind the HTTP API and the worker.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finsight/internal/amqp"
	"finsight/internal/analytics"
	"finsight/internal/core"
)

// healthWindowDays is the trailing window used to derive monthly income and
// expenses for the health score.
const healthWindowDays = 30

// Store is the persistence port the service depends on.
type Store interface {
	InsertTransaction(ctx context.Context, userID string, tx core.Transaction) (int64, error)
	ListTransactions(ctx context.Context, userID string, days int) ([]core.Transaction, error)
	UpsertBudget(ctx context.Context, userID, category string, limit core.Money) error
	ListBudgets(ctx context.Context, userID string) (map[string]core.Money, error)
	UpsertAccount(ctx context.Context, userID string, account core.Account) error
	ListAccounts(ctx context.Context, userID string) ([]core.Account, error)
	SaveReport(ctx context.Context, userID string, payload []byte) (int64, error)
	LatestReport(ctx context.Context, userID string) ([]byte, time.Time, error)
}

// Publisher sends analysis requests to the worker queue.
type Publisher interface {
	PublishAnalysisRequest(ctx context.Context, userID, trigger string) error
}

// Report is the composite analysis snapshot produced by Summary and
// persisted by the worker.
type Report struct {
	UserID           string                               `json:"user_id"`
	GeneratedAt      time.Time                            `json:"generated_at"`
	SpendingPatterns map[string]analytics.SpendingPattern `json:"spending_patterns"`
	BudgetStatus     map[string]analytics.BudgetStatus    `json:"budget_status"`
	Health           analytics.HealthScore                `json:"health"`
	NetWorth         analytics.NetWorthSummary            `json:"net_worth"`
	Predictions      analytics.PredictionResult           `json:"predictions"`
	PredictionNote   string                               `json:"prediction_note,omitempty"`
	Anomalies        analytics.AnomalyReport              `json:"anomalies"`
	AnomalyNote      string                               `json:"anomaly_note,omitempty"`
	Savings          analytics.SavingsOptimization        `json:"savings"`
}

// AnalyticsService wires the pure engine to storage and the queue.
type AnalyticsService struct {
	store      Store
	publisher  Publisher
	analyzer   *analytics.Analyzer
	predictor  *analytics.Predictor
	detector   *analytics.AnomalyDetector
	optimizer  *analytics.SavingsOptimizer
	windowDays int
	now        func() time.Time
}

// NewAnalyticsService builds a service around the given ports. publisher may
// be nil; analysis requests are then skipped. Non-positive thresholds and
// window select the engine defaults.
func NewAnalyticsService(store Store, publisher Publisher, anomalyThreshold, detectorThreshold float64, windowDays int) *AnalyticsService {
	if windowDays <= 0 {
		windowDays = analytics.DefaultPatternWindowDays
	}
	return &AnalyticsService{
		store:      store,
		publisher:  publisher,
		analyzer:   analytics.NewAnalyzer(anomalyThreshold),
		predictor:  analytics.NewPredictor(),
		detector:   analytics.NewAnomalyDetector(detectorThreshold),
		optimizer:  analytics.NewSavingsOptimizer(),
		windowDays: windowDays,
		now:        time.Now,
	}
}

// CreateTransaction validates and stores a transaction, then requests a
// fresh analysis pass. A publish failure does not fail the write.
func (s *AnalyticsService) CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, fmt.Errorf("validate transaction: %w", err)
	}

	id, err := s.store.InsertTransaction(ctx, userID, tx)
	if err != nil {
		return 0, fmt.Errorf("store transaction: %w", err)
	}

	s.requestAnalysis(ctx, userID, amqp.TriggerTransaction)
	return id, nil
}

// SetBudget stores a category ceiling and requests a fresh analysis pass.
func (s *AnalyticsService) SetBudget(ctx context.Context, userID, category string, limit core.Money) error {
	if category == "" {
		return core.ErrEmptyCategory
	}
	if err := limit.Validate(); err != nil {
		return fmt.Errorf("validate budget limit: %w", err)
	}

	if err := s.store.UpsertBudget(ctx, userID, category, limit); err != nil {
		return fmt.Errorf("store budget: %w", err)
	}

	s.requestAnalysis(ctx, userID, amqp.TriggerBudget)
	return nil
}

// SetAccount stores an account.
func (s *AnalyticsService) SetAccount(ctx context.Context, userID string, account core.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("validate account: %w", err)
	}
	if err := s.store.UpsertAccount(ctx, userID, account); err != nil {
		return fmt.Errorf("store account: %w", err)
	}
	return nil
}

func (s *AnalyticsService) requestAnalysis(ctx context.Context, userID, trigger string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnalysisRequest(ctx, userID, trigger); err != nil {
		slog.WarnContext(ctx, "Failed to publish analysis request",
			"error", err, "user_id", userID, "trigger", trigger)
	}
}

// SpendingAnalysis evaluates per-category spending patterns over the
// configured window.
func (s *AnalyticsService) SpendingAnalysis(ctx context.Context, userID string) (map[string]analytics.SpendingPattern, error) {
	txs, err := s.store.ListTransactions(ctx, userID, s.windowDays)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return s.analyzer.AnalyzeSpendingPatterns(txs, s.windowDays), nil
}

// BudgetAnalysis compares current-month spend against the stored budgets.
func (s *AnalyticsService) BudgetAnalysis(ctx context.Context, userID string) (map[string]analytics.BudgetStatus, error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	budgets, err := s.loadBudgetDollars(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.analyzer.AnalyzeBudgetPerformance(txs, budgets), nil
}

// FinancialHealth derives the score inputs from accounts and the last 30
// days of transactions: assets and liabilities from account balances by
// type, monthly income and expenses from transaction sums.
func (s *AnalyticsService) FinancialHealth(ctx context.Context, userID string) (analytics.HealthScore, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return analytics.HealthScore{}, fmt.Errorf("load accounts: %w", err)
	}
	recent, err := s.store.ListTransactions(ctx, userID, healthWindowDays)
	if err != nil {
		return analytics.HealthScore{}, fmt.Errorf("load transactions: %w", err)
	}

	assets, liabilities := splitBalances(accounts)
	totalAssets := sumValues(assets)
	totalLiabilities := sumValues(liabilities)

	var income, expenses float64
	for _, tx := range recent {
		switch tx.Kind {
		case core.Income:
			income += tx.Amount.Dollars()
		case core.Expense:
			expenses += tx.Amount.Dollars()
		}
	}

	debtRatio := 0.0
	if totalAssets > 0 {
		debtRatio = totalLiabilities / totalAssets
	}

	netWorth := totalAssets - totalLiabilities
	return s.analyzer.FinancialHealthScore(netWorth, income, expenses, debtRatio), nil
}

// NetWorth aggregates account balances into the net-worth summary.
func (s *AnalyticsService) NetWorth(ctx context.Context, userID string) (analytics.NetWorthSummary, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return analytics.NetWorthSummary{}, fmt.Errorf("load accounts: %w", err)
	}
	assets, liabilities := splitBalances(accounts)
	return s.analyzer.NetWorth(assets, liabilities), nil
}

// Predictions estimates next-period spending per category.
func (s *AnalyticsService) Predictions(ctx context.Context, userID string) (analytics.Result[analytics.PredictionResult], error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return analytics.Result[analytics.PredictionResult]{}, fmt.Errorf("load transactions: %w", err)
	}
	return s.predictor.PredictSpending(txs), nil
}

// Anomalies screens recent transactions for unusual spending.
func (s *AnalyticsService) Anomalies(ctx context.Context, userID string) (analytics.Result[analytics.AnomalyReport], error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return analytics.Result[analytics.AnomalyReport]{}, fmt.Errorf("load transactions: %w", err)
	}
	return s.detector.DetectAnomalies(txs), nil
}

// OutlierScan screens each category's full amount history with the
// isolation ensemble, as an independent cross-check on the z-score
// detectors. Returns flagged categories mapped to a reason.
func (s *AnalyticsService) OutlierScan(ctx context.Context, userID string) (map[string]string, error) {
	txs, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	flagged := make(map[string]string)
	for category, points := range analytics.GroupByCategory(txs, core.Expense, time.Time{}) {
		xs := make([]float64, len(points))
		for i, p := range points {
			xs[i] = p.Amount
		}
		if detected, reason := analytics.DetectOutliers(xs); detected {
			flagged[category] = reason
		}
	}
	return flagged, nil
}

// OptimizeSavings suggests category reductions. A non-positive budgetLimit
// defaults to the sum of the user's stored budgets.
func (s *AnalyticsService) OptimizeSavings(ctx context.Context, userID string, budgetLimit float64) (analytics.SavingsOptimization, error) {
	txs, err := s.store.ListTransactions(ctx, userID, s.windowDays)
	if err != nil {
		return analytics.SavingsOptimization{}, fmt.Errorf("load transactions: %w", err)
	}
	if budgetLimit <= 0 {
		budgets, err := s.loadBudgetDollars(ctx, userID)
		if err != nil {
			return analytics.SavingsOptimization{}, err
		}
		for _, limit := range budgets {
			budgetLimit += limit
		}
	}
	return s.optimizer.OptimizeSavings(txs, budgetLimit), nil
}

// Summary runs every evaluator and assembles the composite report. Data is
// loaded once; the independent evaluators then run concurrently.
func (s *AnalyticsService) Summary(ctx context.Context, userID string) (Report, error) {
	var (
		allTxs, windowTxs, recentTxs []core.Transaction
		budgets                      map[string]float64
		accounts                     []core.Account
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		allTxs, err = s.store.ListTransactions(gctx, userID, 0)
		return err
	})
	g.Go(func() (err error) {
		windowTxs, err = s.store.ListTransactions(gctx, userID, s.windowDays)
		return err
	})
	g.Go(func() (err error) {
		recentTxs, err = s.store.ListTransactions(gctx, userID, healthWindowDays)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = s.loadBudgetDollars(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		accounts, err = s.store.ListAccounts(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("load analysis inputs: %w", err)
	}

	report := Report{
		UserID:      userID,
		GeneratedAt: s.now().UTC(),
	}

	assets, liabilities := splitBalances(accounts)
	totalAssets := sumValues(assets)
	totalLiabilities := sumValues(liabilities)

	var income, expenses float64
	for _, tx := range recentTxs {
		switch tx.Kind {
		case core.Income:
			income += tx.Amount.Dollars()
		case core.Expense:
			expenses += tx.Amount.Dollars()
		}
	}
	debtRatio := 0.0
	if totalAssets > 0 {
		debtRatio = totalLiabilities / totalAssets
	}

	var budgetLimit float64
	for _, limit := range budgets {
		budgetLimit += limit
	}

	eg := new(errgroup.Group)
	eg.Go(func() error {
		report.SpendingPatterns = s.analyzer.AnalyzeSpendingPatterns(windowTxs, s.windowDays)
		return nil
	})
	eg.Go(func() error {
		report.BudgetStatus = s.analyzer.AnalyzeBudgetPerformance(allTxs, budgets)
		return nil
	})
	eg.Go(func() error {
		report.Health = s.analyzer.FinancialHealthScore(totalAssets-totalLiabilities, income, expenses, debtRatio)
		report.NetWorth = s.analyzer.NetWorth(assets, liabilities)
		return nil
	})
	eg.Go(func() error {
		res := s.predictor.PredictSpending(allTxs)
		report.Predictions = res.Value
		if !res.OK() {
			report.PredictionNote = res.Detail
		}
		return nil
	})
	eg.Go(func() error {
		res := s.detector.DetectAnomalies(allTxs)
		report.Anomalies = res.Value
		if !res.OK() {
			report.AnomalyNote = res.Detail
		}
		return nil
	})
	eg.Go(func() error {
		report.Savings = s.optimizer.OptimizeSavings(windowTxs, budgetLimit)
		return nil
	})
	_ = eg.Wait() // evaluators are total and never return errors

	return report, nil
}

// PersistSummary runs Summary and stores the JSON snapshot.
func (s *AnalyticsService) PersistSummary(ctx context.Context, userID string) (Report, error) {
	report, err := s.Summary(ctx, userID)
	if err != nil {
		return Report{}, err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return Report{}, fmt.Errorf("marshal report: %w", err)
	}
	if _, err := s.store.SaveReport(ctx, userID, payload); err != nil {
		return Report{}, fmt.Errorf("persist report: %w", err)
	}

	return report, nil
}

// LatestReport returns the newest persisted report for a user.
func (s *AnalyticsService) LatestReport(ctx context.Context, userID string) (Report, error) {
	payload, _, err := s.store.LatestReport(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("load latest report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return report, nil
}

func (s *AnalyticsService) loadBudgetDollars(ctx context.Context, userID string) (map[string]float64, error) {
	stored, err := s.store.ListBudgets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	budgets := make(map[string]float64, len(stored))
	for category, limit := range stored {
		budgets[category] = limit.Dollars()
	}
	return budgets, nil
}

// splitBalances partitions account balances into asset and liability maps
// keyed by account name, in dollars.
func splitBalances(accounts []core.Account) (assets, liabilities map[string]float64) {
	assets = make(map[string]float64)
	liabilities = make(map[string]float64)
	for _, a := range accounts {
		if a.IsLiability() {
			liabilities[a.Name] = a.Balance.Dollars()
		} else {
			assets[a.Name] = a.Balance.Dollars()
		}
	}
	return assets, liabilities
}

func sumValues(m map[string]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}
