package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/accountd/auth-api/internal/api/handler"
	"github.com/accountd/auth-api/internal/api/middleware"
	"github.com/accountd/auth-api/internal/core/domain"
	"github.com/accountd/auth-api/internal/core/service"
	"github.com/accountd/auth-api/internal/infrastructure/config"
	mongodb "github.com/accountd/auth-api/internal/infrastructure/db/mongo"
	redisdb "github.com/accountd/auth-api/internal/infrastructure/db/redis"
	"github.com/accountd/auth-api/internal/infrastructure/http/handlers"
	"github.com/accountd/auth-api/internal/pkg/password"
	"github.com/accountd/auth-api/internal/pkg/token"
)

// NewRouter builds the Echo instance with all routes registered. It fails
// when the signing secret is absent so misconfiguration surfaces at startup,
// never on the first login.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, error) {
	issuer, err := token.NewIssuer(cfg.JWTSecret, token.DefaultTTL)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	hasher := password.NewHasher(cfg.BcryptCost)
	limiter := redisdb.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
	authService := service.NewAuthService(userRepo, hasher, issuer, limiter, log)
	authHandler := handler.NewAuthHandler(authService, cfg.IsProduction(), issuer.TTL())
	authGate := middleware.Auth(issuer)

	// --- Auth routes ---
	g := e.Group("/api/auth")
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)
	g.POST("/logout", authHandler.Logout)

	g.PUT("/profile", authHandler.UpdateProfile, authGate)
	g.PUT("/change-password", authHandler.ChangePassword, authGate)
	g.DELETE("/user/:id", authHandler.DeleteUser, authGate)
	g.GET("/users/:id", authHandler.GetUserByID, authGate)
	g.POST("/users/:id/unlock", authHandler.UnlockUser, authGate, middleware.RequireRole(domain.RoleAdmin))

	// --- Operational endpoints ---
	e.GET("/", rootStatus)
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e, nil
}

// rootStatus mirrors the informational root route of the original deployment.
func rootStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message":   "server is running",
		"status":    "success",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
