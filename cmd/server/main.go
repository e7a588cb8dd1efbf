package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"cartable/internal/auth"
	"cartable/internal/client"
	"cartable/internal/config"
	"cartable/internal/handler"
	"cartable/internal/handler/sse"
	"cartable/internal/i18n"
	"cartable/internal/metrics"
	"cartable/internal/middleware"
	serviceChat "cartable/internal/service/chat"
	servicePedagogy "cartable/internal/service/pedagogy"
	serviceTree "cartable/internal/service/tree"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging, mirrored to a rotating file when LOG_DIR is set
	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "gateway", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}
	logger := config.NewLogger(cfg, logOut, config.LogJSON)

	logger.Info("gateway starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"locale", cfg.Locale,
	)

	// Optional signature verification; without it the upstream API is the judge
	var verifier auth.TokenVerifier
	if cfg.AuthJWKSURL != "" {
		jwksVerifier, err := auth.NewJWKSVerifier(context.Background(), cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwksVerifier.Close()
		verifier = jwksVerifier
	}

	catalog, err := i18n.NewCatalog(cfg.Locale)
	if err != nil {
		log.Fatalf("Failed to load message catalog: %v", err)
	}

	// Upstream client (one for all users; tokens are passed per call)
	api := client.New(cfg.APIBaseURL, cfg.HTTPTimeout, logger)

	// Services
	trees := serviceTree.NewRegistry(api, catalog, logger,
		serviceTree.WithControllerOptions(serviceTree.WithFetchConcurrency(cfg.FetchConcurrency)),
		serviceTree.WithIdleTimeout(cfg.TreeIdleTimeout),
	)
	progressionService := servicePedagogy.NewProgressionService(api, trees, logger)
	resourceService := servicePedagogy.NewResourceService(api, api, trees, logger)
	chatService := serviceChat.NewService(api, cfg.ChatHistoryLimit, logger)

	// Handlers
	treeHandler := handler.NewTreeHandler(trees, sse.DefaultConfig(), logger)
	progressionHandler := handler.NewProgressionHandler(progressionService, logger)
	resourceHandler := handler.NewResourceHandler(resourceService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	authHandler := handler.NewAuthHandler(api, trees, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /metrics", metrics.Handler())

	// Account routes (login, register and forgot-password are public)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	// Tree routes
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)
	mux.HandleFunc("POST /api/tree/refresh", treeHandler.RefreshTree)
	mux.HandleFunc("PUT /api/tree/expanded", treeHandler.SetExpanded)
	mux.HandleFunc("POST /api/tree/nodes/{id}/expand", treeHandler.ExpandNode)
	mux.HandleFunc("POST /api/tree/nodes/{id}/collapse", treeHandler.CollapseNode)
	mux.HandleFunc("POST /api/tree/nodes/{id}/reload", treeHandler.ReloadNode)
	mux.HandleFunc("GET /api/tree/events", treeHandler.Events) // SSE

	// Progression routes
	mux.HandleFunc("GET /api/progressions", progressionHandler.ListProgressions)
	mux.HandleFunc("POST /api/progressions", progressionHandler.CreateProgression)
	mux.HandleFunc("GET /api/progressions/{id}", progressionHandler.GetProgression)
	mux.HandleFunc("PUT /api/progressions/{id}", progressionHandler.UpdateProgression)
	mux.HandleFunc("DELETE /api/progressions/{id}", progressionHandler.DeleteProgression)

	// Resource routes
	mux.HandleFunc("GET /api/resources", resourceHandler.ListResources)
	mux.HandleFunc("POST /api/resources", resourceHandler.CreateResource)
	mux.HandleFunc("GET /api/resources/{id}", resourceHandler.GetResource)
	mux.HandleFunc("PUT /api/resources/{id}", resourceHandler.UpdateResource)
	mux.HandleFunc("DELETE /api/resources/{id}", resourceHandler.DeleteResource)
	mux.HandleFunc("GET /api/resource-types", resourceHandler.ListResourceTypes)
	mux.HandleFunc("GET /api/resource-types/{id}/subtypes", resourceHandler.ListResourceSubTypes)

	// Chat routes
	mux.HandleFunc("POST /api/chat", chatHandler.SendMessage)
	mux.HandleFunc("GET /api/chat/{id}", chatHandler.GetConversation)
	mux.HandleFunc("DELETE /api/chat/{id}", chatHandler.ResetConversation)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	h = middleware.AuthMiddleware(verifier, logger,
		"/health",
		"/metrics",
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/forgot-password",
	)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("gateway listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
