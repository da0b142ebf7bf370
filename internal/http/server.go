package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"inventory/internal/log"
	"inventory/internal/metrics"
	"inventory/internal/middleware/ratelimit"
	"inventory/internal/middleware/security"
	"inventory/internal/middleware/trace"
	"inventory/internal/ports"
	"inventory/internal/services"
	appweb "inventory/web"
)

// Deps are the collaborators of the HTTP layer. Metrics may be nil.
type Deps struct {
	Expenses  *services.ExpenseQueryService
	Dashboard *services.DashboardService
	Products  *services.ProductService
	Users     ports.UserReader
	Pinger    ports.Pinger
	Metrics   *metrics.Metrics
	Logger    *log.Logger

	CORSOrigins        []string
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *log.Logger
	started   time.Time

	expenses  *services.ExpenseQueryService
	dashboard *services.DashboardService
	products  *services.ProductService
	users     ports.UserReader
	pinger    ports.Pinger
	metrics   *metrics.Metrics

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:    logger,
		started:   time.Now(),
		expenses:  deps.Expenses,
		dashboard: deps.Dashboard,
		products:  deps.Products,
		users:     deps.Users,
		pinger:    deps.Pinger,
		metrics:   deps.Metrics,
		detector:  security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger, deps.Metrics)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Handler = s.routes(deps.CORSOrigins)
	return s
}

func (s *Server) routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(otelhttp.NewMiddleware("inventory-api"))
	r.Use(s.tracer.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware(s.logger, s.metrics.Suspicious))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{trace.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		r.With(security.StaticAssetMiddleware(3600)).
			Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/expenses", http.StatusFound)
	})
	r.Get("/expenses", s.handleExpensesPage)
	r.Get("/expenses/category", s.handleExpensesByCategory)
	r.Get("/api/expenses/breakdown", s.handleExpenseBreakdown)
	r.Get("/dashboard", s.handleDashboard)
	r.Get("/users", s.handleListUsers)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handleListProducts)
		r.With(s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)).
			Post("/", s.handleCreateProduct)
	})

	return r
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
