package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/api"
	"github.com/example/expense-tracker/internal/cache"
	"github.com/example/expense-tracker/internal/config"
	"github.com/example/expense-tracker/internal/core"
	"github.com/example/expense-tracker/internal/db"
	"github.com/example/expense-tracker/internal/expenses"
	"github.com/example/expense-tracker/internal/identity"
	"github.com/example/expense-tracker/internal/middleware"
	"github.com/example/expense-tracker/internal/session"
)

func newLogger() (*zap.Logger, error) {
	if os.Getenv("GIN_MODE") == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	missing := appConfig.MissingWebConfig()
	if len(missing) > 0 {
		// Startup continues; signup is blocked and the UI shows a banner.
		zapLogger.Warn("Missing Firebase config", zap.Strings("missing", missing))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Preference cache ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()

	var prefCache cache.Cache
	if appConfig.RedisAddr != "" {
		prefCache, err = cache.NewRedisCache(initCtx, cache.RedisConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
	} else {
		zapLogger.Warn("REDIS_ADDR not set, client sessions are kept in memory and lost on restart.")
		prefCache = cache.NewMemoryCache()
	}
	defer prefCache.Close()

	// --- 4. Initialize Firebase Admin SDK (optional) ---
	admin, err := db.InitAdmin(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer admin.Close()

	// --- 5. Remote clients and repositories ---
	identityClient := identity.New(appConfig.IdentityBaseURL, appConfig.FirebaseAPIKey, appConfig.RemoteTimeout)
	realtimeDB := db.NewRealtimeDatabase(appConfig.FirebaseDatabaseURL, appConfig.RemoteTimeout)
	profileRepo := db.NewProfileRepository(realtimeDB)
	expenseRepo := db.NewExpenseRepository(realtimeDB)

	var (
		auditRepo db.AuditRepository
		photos    db.PhotoStorage
		resolver  middleware.TokenResolver = middleware.LookupResolver{Lookup: identityClient}
	)
	if admin != nil {
		if admin.Firestore != nil {
			auditRepo = db.NewFirestoreAuditRepository(admin.Firestore)
		}
		photos = admin.Photos
		if admin.Auth != nil {
			resolver = middleware.AdminResolver{Client: admin.Auth}
		}
	}
	zapLogger.Info("Repositories initialized successfully.",
		zap.Bool("audit", auditRepo != nil), zap.Bool("photos", photos != nil))

	// --- 6. Initialize Services ---
	sessions := session.NewStore(prefCache, 0, zapLogger)
	lists := expenses.NewRegistry(expenseRepo, zapLogger)
	auditService := core.NewAuditService(auditRepo)
	authService := core.NewAuthService(identityClient, sessions, lists, auditService, missing, zapLogger)
	profileService := core.NewProfileService(profileRepo, photos, identityClient, auditService, zapLogger)
	expenseService := core.NewExpenseService(lists, auditService, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	sessionSecret := []byte(appConfig.SessionSecret)
	if len(sessionSecret) == 0 {
		zapLogger.Warn("SESSION_SECRET not set, using a random key. Client cookies will not survive a restart.")
		sessionSecret = securecookie.GenerateRandomKey(32)
	}
	clientStore := middleware.NewClientStore(sessionSecret, strings.ToLower(appConfig.GinMode) == gin.ReleaseMode)

	// --- 7. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))
	zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))

	// --- 8. Setup API Routes ---
	api.SetupRoutes(router, appConfig, zapLogger, api.Services{
		Auth:     authService,
		Profile:  profileService,
		Expense:  expenseService,
		Sessions: sessions,
		Clients:  clientStore,
		Resolver: resolver,
	})

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
