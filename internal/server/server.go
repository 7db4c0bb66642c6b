package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"docqa/config"
	"docqa/internal/db"
	"docqa/internal/handlers"
	"docqa/internal/render"
	"docqa/internal/repositories"
	"docqa/internal/routes"
	"docqa/internal/services"
	"docqa/internal/session"
	"docqa/internal/web"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Live sessions idle this long are dropped from memory; their snapshots
// remain in the session store.
const (
	sessionSweepInterval = time.Minute
	sessionMaxIdle       = 30 * time.Minute
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs method, path, status and duration of every request
func loggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}

// NewServer wires the QA client, session store, renderer and handlers into an
// HTTP server. Background session sweeping stops when ctx is done.
func NewServer(ctx context.Context, cfg *config.Config) (*http.Server, error) {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)
	handlerLogger := log.New(os.Stdout, "[HANDLER] ", log.LstdFlags)
	sessionLogger := log.New(os.Stdout, "[SESSION] ", log.LstdFlags)

	client := initializeQAClient(cfg, logger)
	repo := initializeSessionRepository(cfg, logger)

	sessions := session.NewManager(repo, client, cfg.SessionTTL, sessionLogger)
	go func() {
		sessions.Run(ctx, sessionSweepInterval, sessionMaxIdle)
		if err := repo.Close(); err != nil {
			logger.Printf("Failed to close session store: %v", err)
		}
	}()

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	static, err := web.StaticHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to load static assets: %w", err)
	}

	renderer := render.NewRenderer(cfg.RenderCacheSize)

	h := &routes.Handlers{
		Health: handlers.HealthCheckHandler,
		Page: handlers.NewPageHandler(handlers.PageHandlerConfig{
			Sessions:  sessions,
			Client:    client,
			Renderer:  renderer,
			Templates: tmpl,
			Logger:    handlerLogger,
			Debug:     cfg.Debug(),

			MaxUploadMB:    cfg.MaxUploadMB,
			MaxUploadBytes: cfg.MaxUploadBytes(),
		}),
		API:    handlers.NewAPIHandler(sessions, client, cfg.MaxUploadBytes(), handlerLogger, cfg.Debug()),
		Static: static,
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	router.Use(loggingMiddleware(logger))

	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           corsMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// initializeQAClient creates the client for the remote QA service
func initializeQAClient(cfg *config.Config, logger *log.Logger) *services.QAClient {
	logger.Printf("Initializing QA client: %s", cfg.APIBaseURL)
	return services.NewQAClient(cfg.APIBaseURL)
}

// initializeSessionRepository picks the session store. A Redis store that
// cannot be reached falls back to memory so the page still works.
func initializeSessionRepository(cfg *config.Config, logger *log.Logger) repositories.SessionRepository {
	if cfg.SessionStore != config.SessionStoreRedis {
		logger.Printf("Using in-memory session store (TTL: %v)", cfg.SessionTTL)
		return repositories.NewMemorySessionRepository(cfg.SessionTTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisConfig := getRedisConfig(cfg)
	logger.Printf("Connecting to Redis: %s (DB: %d)", redisConfig.Addr(), redisConfig.DB)

	redisClient, err := db.NewRedisClient(redisConfig)
	if err != nil {
		logger.Printf("❌ Failed to create Redis client: %v", err)
		logger.Println("   Falling back to in-memory session store")
		return repositories.NewMemorySessionRepository(cfg.SessionTTL)
	}

	if err := redisClient.Ping(ctx); err != nil {
		logger.Printf("❌ Redis connection failed: %v", err)
		logger.Println("   Falling back to in-memory session store")
		logger.Println("   Hint: Ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		redisClient.Close()
		return repositories.NewMemorySessionRepository(cfg.SessionTTL)
	}
	logger.Println("✅ Redis connected successfully")

	return repositories.NewRedisSessionRepository(redisClient.GetClient(), cfg.SessionTTL)
}

// getRedisConfig maps application config onto the Redis client config
func getRedisConfig(cfg *config.Config) db.RedisConfig {
	redisConfig := db.DefaultRedisConfig()
	redisConfig.Host = cfg.RedisHost
	redisConfig.Port = cfg.RedisPort
	redisConfig.Password = cfg.RedisPassword
	redisConfig.DB = cfg.RedisDB
	if cfg.RedisPoolSize > 0 {
		redisConfig.PoolSize = cfg.RedisPoolSize
	}
	return redisConfig
}
