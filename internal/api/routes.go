package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/config"
	"github.com/example/expense-tracker/internal/core"
	"github.com/example/expense-tracker/internal/middleware"
	"github.com/example/expense-tracker/internal/session"
)

// Services bundles what the handlers depend on.
type Services struct {
	Auth     core.AuthService
	Profile  core.ProfileService
	Expense  core.ExpenseService
	Sessions *session.Store
	Clients  sessions.Store
	Resolver middleware.TokenResolver
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (Recovery, Logging, CORS) is applied by the caller; the
// client cookie middleware is applied here to the API group only.
func SetupRoutes(router *gin.Engine, appConfig *config.Config, logger *zap.Logger, svc Services) {
	authMW := middleware.NewAuthMiddleware(svc.Resolver, svc.Sessions, logger)

	authHandler := NewAuthHandler(svc.Auth, svc.Sessions, logger)
	profileHandler := NewProfileHandler(svc.Profile, svc.Sessions, logger)
	expenseHandler := NewExpenseHandler(svc.Expense, svc.Sessions, logger)
	preferenceHandler := NewPreferenceHandler(svc.Sessions, logger)

	apiV1 := router.Group("/api/v1", middleware.ClientCookie(svc.Clients, logger))
	{
		apiV1.GET("/config/status", authHandler.ConfigStatus)
		apiV1.GET("/session", authHandler.Session)

		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/password-reset", authHandler.PasswordReset)
			authGroup.POST("/logout", authMW.OptionalSession(), authHandler.Logout)
			authGroup.POST("/verify-email", authMW.RequireSession(), authHandler.VerifyEmail)
		}

		profileGroup := apiV1.Group("/profile", authMW.RequireSession())
		{
			profileGroup.GET("", profileHandler.GetProfile)
			profileGroup.PUT("", profileHandler.UpdateProfile)
			profileGroup.POST("/photo", profileHandler.UploadPhoto)
		}

		expensesGroup := apiV1.Group("/expenses", authMW.RequireSession())
		{
			expensesGroup.GET("", expenseHandler.ListExpenses)
			expensesGroup.POST("", expenseHandler.CreateExpense)
			expensesGroup.PUT("/:id", expenseHandler.UpdateExpense)
			expensesGroup.DELETE("/:id", expenseHandler.DeleteExpense)
		}

		preferencesGroup := apiV1.Group("/preferences")
		{
			preferencesGroup.GET("", preferenceHandler.GetPreferences)
			preferencesGroup.POST("/theme/toggle", preferenceHandler.ToggleTheme)
			preferencesGroup.PUT("/theme", preferenceHandler.SetTheme)
		}

		apiV1.POST("/premium/activate", authMW.RequireSession(), authHandler.ActivatePremium)
		apiV1.POST("/view/navigate", preferenceHandler.Navigate)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Expense tracker backend is healthy."})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("API routes configured successfully under /api/v1, /health and /metrics.")
}
