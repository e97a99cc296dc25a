package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/gymplan/internal/auth"
	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/config"
	"github.com/2beens/gymplan/internal/ghstore"
	"github.com/2beens/gymplan/internal/middleware"
	"github.com/2beens/gymplan/internal/plan"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/internal/trainlog"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config  *config.Config
	ghStore *ghstore.Client

	catalogRepo *catalog.Repo
	planRepo    *plan.Repo
	logRepo     *trainlog.Repo
	logAnalyzer *trainlog.Analyzer
	autoSaver   *trainlog.AutoSaver

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	GitHubToken             string
	RedisPassword           string
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("gymplan", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 when all is set and running

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})
	rdb.AddHook(redisotel.NewTracingHook())

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(cfg.Users, auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymplan-backend")
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Duration(cfg.StoreTimeoutSeconds) * time.Second,
	}

	ghStore := ghstore.NewClient(ghstore.ClientParams{
		BaseURL:         cfg.GitHubAPIBaseURL,
		Owner:           cfg.GitHubOwner,
		Repo:            cfg.GitHubRepo,
		Branch:          cfg.GitHubBranch,
		Token:           params.GitHubToken,
		HTTPClient:      tracedHttpClient,
		Metrics:         metricsManager,
		CacheTTLSeconds: cfg.StoreCacheTTLSeconds,
	})

	logRepo := trainlog.NewRepo(ghStore, cfg.LogCSVPath)

	return &Server{
		versionInfo: params.VersionInfo,
		config:      cfg,
		ghStore:     ghStore,

		catalogRepo: catalog.NewRepo(ghStore, cfg.CatalogCSVPath),
		planRepo:    plan.NewRepo(ghStore, cfg.PlanCSVPath),
		logRepo:     logRepo,
		logAnalyzer: trainlog.NewAnalyzer(logRepo),
		autoSaver: trainlog.NewAutoSaver(
			logRepo,
			time.Duration(cfg.AutoSaveDebounceMillis)*time.Millisecond,
			metricsManager,
		),

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(auth.DefaultTTL, rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymplan-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	authHandler := auth.NewHandler(s.authService, s.versionInfo)
	authHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager, s.config.LoginRateLimitAllowedPerMin)

	catalogHandler := catalog.NewHandler(s.catalogRepo)
	r.HandleFunc("/catalog", catalogHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/catalog", catalogHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/catalog", catalogHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	r.HandleFunc("/catalog/{name}", catalogHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc("/catalog/{name}", catalogHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")

	materializer := plan.NewMaterializer(s.planRepo, s.catalogRepo, s.logAnalyzer)
	planHandler := plan.NewHandler(s.planRepo, materializer)
	r.HandleFunc("/plan", planHandler.HandleUpsert).Methods("POST", "OPTIONS").Name("save-plan-row")
	r.HandleFunc("/plan/{user}", planHandler.HandleWeek).Methods("GET", "OPTIONS").Name("get-week-plan")
	r.HandleFunc("/plan/{user}/day/{day}", planHandler.HandleDay).Methods("GET", "OPTIONS").Name("get-day-plan")
	r.HandleFunc("/plan/{id}", planHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-plan-row")

	logHandler := trainlog.NewHandler(s.logRepo, s.logAnalyzer, s.autoSaver)
	r.HandleFunc("/log/auto", logHandler.HandleAutoSave).Methods("POST", "OPTIONS").Name("auto-save-log")
	r.HandleFunc("/log", logHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-log-entry")
	r.HandleFunc("/log/history", logHandler.HandleHistory).Methods("GET", "OPTIONS").Name("log-history")
	r.HandleFunc("/log/lastweight", logHandler.HandleLastWeight).Methods("GET", "OPTIONS").Name("log-last-weight")
	r.HandleFunc("/log/lastvariant", logHandler.HandleLastVariant).Methods("GET", "OPTIONS").Name("log-last-variant")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	var shutdownErr error

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
			shutdownErr = multierr.Append(shutdownErr, err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
		shutdownErr = multierr.Append(shutdownErr, err)
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
		shutdownErr = multierr.Append(shutdownErr, err)
	}
	log.Warnln("metrics server shut down")

	return shutdownErr
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
