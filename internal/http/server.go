package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/dashboard"
	"fintrack/internal/interchange"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

// Pinger reports whether the persistence backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators served over HTTP.
type Deps struct {
	Ledger     *ledger.Ledger
	Aggregator *dashboard.Aggregator
	Importer   *interchange.Importer
	Exporter   *interchange.Exporter
	Backend    Pinger
	Logger     *log.Logger
}

type Options struct {
	DashboardCacheSize  int
	DashboardCacheTTL   time.Duration
	RateLimitPerMinute  int
	UpcomingDaysDefault int
}

func DefaultOptions() Options {
	return Options{
		DashboardCacheSize:  200,
		DashboardCacheTTL:   5 * time.Minute,
		RateLimitPerMinute:  60,
		UpcomingDaysDefault: 30,
	}
}

// Server wraps http.Server with the ledger routes and their caches.
type Server struct {
	http.Server

	ledger     *ledger.Ledger
	aggregator *dashboard.Aggregator
	importer   *interchange.Importer
	exporter   *interchange.Exporter
	backend    Pinger
	logger     *log.Logger
	opts       Options

	dashboards   *cache.Loading[dashboard.Dashboard]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	defaults := DefaultOptions()
	if opts.DashboardCacheSize <= 0 {
		opts.DashboardCacheSize = defaults.DashboardCacheSize
	}
	if opts.DashboardCacheTTL <= 0 {
		opts.DashboardCacheTTL = defaults.DashboardCacheTTL
	}
	if opts.UpcomingDaysDefault <= 0 {
		opts.UpcomingDaysDefault = defaults.UpcomingDaysDefault
	}

	dashCache := cache.NewLRUCache[dashboard.Dashboard](opts.DashboardCacheSize, opts.DashboardCacheTTL)
	s := &Server{
		ledger:       deps.Ledger,
		aggregator:   deps.Aggregator,
		importer:     deps.Importer,
		exporter:     deps.Exporter,
		backend:      deps.Backend,
		logger:       logger,
		opts:         opts,
		dashboards:   cache.NewLoading[dashboard.Dashboard](dashCache),
		cacheManager: cache.NewManager(logger),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Logger:            logger,
		}),
	}
	s.cacheManager.Register(dashCache)
	s.cacheManager.StartCleanup(time.Minute)

	detector := security.NewDetector(logger)
	tracer := trace.NewMiddleware(logger, detector.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	})

	api := http.NewServeMux()
	s.routes(api)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/", limit(api))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(headers.Middleware(detector.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /tags", handleTags)
	mux.HandleFunc("POST /users", s.handleRegister)
	mux.HandleFunc("GET /users/{username}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{username}/currency", s.handleUpdateCurrency)
	mux.HandleFunc("POST /users/{username}/login", s.handleLogin)
	mux.HandleFunc("GET /users/{username}/balance", s.handleBalance)

	mux.HandleFunc("GET /users/{username}/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /users/{username}/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /users/{username}/transactions/{title}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /users/{username}/transactions/{title}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /users/{username}/debts", s.handleListDebts)
	mux.HandleFunc("GET /users/{username}/debts/upcoming", s.handleUpcomingDebts)
	mux.HandleFunc("GET /users/{username}/debts/summary", s.handleDebtSummary)
	mux.HandleFunc("POST /users/{username}/debts", s.handleCreateDebt)
	mux.HandleFunc("PUT /users/{username}/debts/{creditor}", s.handleUpdateDebt)
	mux.HandleFunc("DELETE /users/{username}/debts/{creditor}", s.handleDeleteDebt)
	mux.HandleFunc("POST /users/{username}/debts/{creditor}/clear", s.handleClearDebt)

	mux.HandleFunc("GET /users/{username}/budgets", s.handleListBudgets)
	mux.HandleFunc("POST /users/{username}/budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /users/{username}/budgets/{category}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /users/{username}/budgets/{category}", s.handleDeleteBudget)

	mux.HandleFunc("GET /users/{username}/dashboard", s.handleDashboard)

	mux.HandleFunc("POST /users/{username}/import", s.handleImport)
	mux.HandleFunc("GET /users/{username}/export/transactions.csv", s.handleExportTransactions)
	mux.HandleFunc("GET /users/{username}/export/debts.csv", s.handleExportDebts)
	mux.HandleFunc("POST /users/{username}/export/sheet", s.handleExportSheet)
}

// Shutdown stops background loops, then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.cacheManager.Stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.backend != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.backend.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "backend unavailable").Write(w)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
