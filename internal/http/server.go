package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"salesdash/internal/amqp"
	"salesdash/internal/cache"
	"salesdash/internal/log"
	"salesdash/internal/middleware/ratelimit"
	"salesdash/internal/middleware/security"
	"salesdash/internal/middleware/trace"
	"salesdash/internal/records"
	"salesdash/internal/session"
)

// ExportPublisher queues asynchronous export jobs.
type ExportPublisher interface {
	PublishExportRequest(ctx context.Context, req *amqp.ExportRequest) error
}

// Options configures NewServer. Zero values disable the optional parts:
// no cache, no publisher, default rate limit and timeouts.
type Options struct {
	Logger             *log.Logger
	Session            *session.Session
	CacheSize          int
	CacheTTL           time.Duration
	Publisher          ExportPublisher
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

type Server struct {
	http.Server

	logger     *log.Logger
	structured *log.StructuredLogger

	store     atomic.Pointer[records.Store]
	session   *session.Session
	publisher ExportPublisher

	dashCache    *cache.DashboardCache
	cacheManager *cache.Manager

	rateLimiter     *ratelimit.Limiter
	detector        *security.Detector
	traceMiddleware *trace.Middleware

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware. The server reports not-ready until
// SetStore is called.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	sess := opts.Session
	if sess == nil {
		sess = session.New()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	s := &Server{
		logger:      logger,
		structured:  log.NewStructuredLogger(logger),
		session:     sess,
		publisher:   opts.Publisher,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector:    security.NewDetector(),
		started:     time.Now(),
		now:         time.Now,
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	if opts.CacheSize > 0 {
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = 5 * time.Minute
		}
		s.dashCache = cache.NewDashboardCache(opts.CacheSize, ttl)
		s.cacheManager = cache.NewManager(logger)
		s.cacheManager.Register(s.dashCache)
		s.cacheManager.StartCleanup(ttl)
	}

	api := http.NewServeMux()
	api.HandleFunc("/api/dashboard", s.handleDashboard)
	api.HandleFunc("/api/options", s.handleOptions)
	api.HandleFunc("/api/session", s.handleSession)
	api.HandleFunc("/api/session/actions", s.handleSessionAction)
	api.HandleFunc("/api/export", s.handleExport)
	api.HandleFunc("/api/exports", s.handleEnqueueExport)
	api.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("no such endpoint").Write(w)
	})

	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})(api)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.Handle("/api/", limited)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := s.traceMiddleware.Middleware(headers.Middleware(s.detector.Middleware(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      2 * timeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// SetStore installs the record set served by the API. Swapping in a new
// store invalidates cached views because the cache key includes LoadedAt.
func (s *Server) SetStore(store *records.Store) {
	s.store.Store(store)
	s.logger.Info("Record store installed",
		log.FieldRecordCount, store.Len(),
		"loaded_at", store.LoadedAt())
}

// Store returns the installed store, or nil before SetStore.
func (s *Server) Store() *records.Store {
	return s.store.Load()
}

// Shutdown stops background goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
