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

	"finanze/internal/backend"
	"finanze/internal/cache"
	"finanze/internal/core"
	applog "finanze/internal/log"
)

type Server struct {
	http.Server
	store       backend.Backend
	defaultUser string
	rateLimiter *rateLimiter

	// Per-user dashboard caches, invalidated on every write.
	summaryCache *cache.LRUCache[core.PeriodTotals]
	balanceCache *cache.LRUCache[core.BalanceSheet]
	cacheManager *cache.Manager

	// cacheGen holds a per-user generation counter folded into dashboard
	// cache keys, so a write invalidates that user's entries in O(1).
	genMu    sync.Mutex
	cacheGen map[string]uint64

	httpLog *applog.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run http.Server.
// defaultUser scopes requests that carry no X-User-ID header.
func NewServer(addr string, store backend.Backend, defaultUser string) *Server {
	mux := http.NewServeMux()
	httpLogger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentHTTP,
	})

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           applog.Middleware(httpLogger)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:        store,
		defaultUser:  defaultUser,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[core.PeriodTotals](200, 5*time.Minute),
		balanceCache: cache.NewLRUCache[core.BalanceSheet](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
		cacheGen:     make(map[string]uint64),
		httpLog:      applog.NewStructuredLogger(httpLogger),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.balanceCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/records", s.wrap(s.handleListRecords))
	mux.HandleFunc("POST /api/records", s.wrap(s.handleCreateRecord))
	mux.HandleFunc("PUT /api/records/{id}", s.wrap(s.handleUpdateRecord))
	mux.HandleFunc("DELETE /api/records/{id}", s.wrap(s.handleDeleteRecord))
	mux.HandleFunc("POST /api/records/{id}/settle", s.wrap(s.handleSettleRecord))
	mux.HandleFunc("POST /api/transfers", s.wrap(s.handleCreateTransfer))

	mux.HandleFunc("GET /api/accounts", s.wrap(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.wrap(s.handleCreateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.wrap(s.handleDeleteAccount))

	mux.HandleFunc("GET /api/dashboard/summary", s.wrap(s.handleDashboardSummary))
	mux.HandleFunc("GET /api/dashboard/balance-sheet", s.wrap(s.handleBalanceSheet))
	mux.HandleFunc("GET /api/dashboard/piggybanks", s.wrap(s.handlePiggyBanks))

	mux.HandleFunc("GET /api/categories", s.wrap(s.handleListCategories))

	return s
}

// wrap adds security headers, rate limiting, and request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.httpLog.LogHTTPStart(ctx, r, clientIP, requestID)

		// Writes are rate limited per client; reads are not.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			applog.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP, applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP, requestID)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

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
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// userID resolves the user scope of a request.
func (s *Server) userID(r *http.Request) string {
	if uid := r.Header.Get("X-User-ID"); uid != "" {
		return uid
	}
	return s.defaultUser
}

// invalidateDashboards bumps the user's cache generation after a write.
// Stale entries stop matching any key and age out via TTL.
func (s *Server) invalidateDashboards(userID string) {
	s.genMu.Lock()
	s.cacheGen[userID]++
	s.genMu.Unlock()
}

func (s *Server) dashboardCacheKey(userID string, month time.Time, policyKey string) string {
	s.genMu.Lock()
	gen := s.cacheGen[userID]
	s.genMu.Unlock()
	return fmt.Sprintf("%s|%d|%s|%s", userID, gen, month.Format("2006-01"), policyKey)
}

func policyCacheKey(p core.Policy) string {
	key := []byte{'0', '0'}
	if p.UseProbabilistic {
		key[0] = '1'
	}
	if p.IncludeCommitments {
		key[1] = '1'
	}
	return string(key)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// A cheap store round-trip verifies the backend is reachable.
	if _, err := s.store.ListAccounts(ctx, s.defaultUser); err != nil {
		slog.ErrorContext(ctx, "Readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
