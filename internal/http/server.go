// Package http exposes the analytics service as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finsight/internal/analytics"
	"finsight/internal/cache"
	"finsight/internal/core"
	"finsight/internal/services"
)

// AnalyticsAPI is the service surface the handlers depend on.
type AnalyticsAPI interface {
	CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (int64, error)
	SetBudget(ctx context.Context, userID, category string, limit core.Money) error
	SetAccount(ctx context.Context, userID string, account core.Account) error
	SpendingAnalysis(ctx context.Context, userID string) (map[string]analytics.SpendingPattern, error)
	BudgetAnalysis(ctx context.Context, userID string) (map[string]analytics.BudgetStatus, error)
	FinancialHealth(ctx context.Context, userID string) (analytics.HealthScore, error)
	NetWorth(ctx context.Context, userID string) (analytics.NetWorthSummary, error)
	Predictions(ctx context.Context, userID string) (analytics.Result[analytics.PredictionResult], error)
	Anomalies(ctx context.Context, userID string) (analytics.Result[analytics.AnomalyReport], error)
	OptimizeSavings(ctx context.Context, userID string, budgetLimit float64) (analytics.SavingsOptimization, error)
	Summary(ctx context.Context, userID string) (services.Report, error)
	LatestReport(ctx context.Context, userID string) (services.Report, error)
}

type Server struct {
	http.Server
	api         AnalyticsAPI
	rateLimiter *rateLimiter

	// Summary responses are cached per user and invalidated on writes.
	summaryCache *cache.LRUCache[services.Report]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, api AnalyticsAPI, summaryTTL time.Duration) *Server {
	mux := http.NewServeMux()

	if summaryTTL <= 0 {
		summaryTTL = 5 * time.Minute
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		api:          api,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[services.Report](100, summaryTTL),
		cacheManager: cache.NewManager(),
	}

	// Start periodic cache cleanup
	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("/api/budgets", s.withSecurityHeaders(s.handleSetBudget))
	mux.HandleFunc("/api/accounts", s.withSecurityHeaders(s.handleSetAccount))

	mux.HandleFunc("/api/insights/spending-analysis", s.withSecurityHeaders(s.handleSpendingAnalysis))
	mux.HandleFunc("/api/insights/budget-analysis", s.withSecurityHeaders(s.handleBudgetAnalysis))
	mux.HandleFunc("/api/insights/financial-health", s.withSecurityHeaders(s.handleFinancialHealth))
	mux.HandleFunc("/api/insights/net-worth", s.withSecurityHeaders(s.handleNetWorth))
	mux.HandleFunc("/api/recommendations/spending-optimization", s.withSecurityHeaders(s.handleSpendingOptimization))
	mux.HandleFunc("/api/alerts/anomalies", s.withSecurityHeaders(s.handleAnomalies))
	mux.HandleFunc("/api/predictions/spending", s.withSecurityHeaders(s.handlePredictions))
	mux.HandleFunc("/api/reports/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("/api/reports/latest", s.withSecurityHeaders(s.handleLatestReport))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		// Stop cache cleanup goroutine
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}

		// Stop rate limiter cleanup goroutine
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		// Shutdown HTTP server
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		// Generate request ID for tracing
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Apply rate limiting to mutating requests
		if (r.Method == http.MethodPost || r.Method == http.MethodPut) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Create a custom response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		// Log request completion
		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type ctxKey string

const ctxKeyRequestID ctxKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
