package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gatherhub/event-management-api/internal/api/handler"
	"github.com/gatherhub/event-management-api/internal/api/middleware"
	"github.com/gatherhub/event-management-api/internal/core/ports"
	"github.com/gatherhub/event-management-api/internal/core/service"
	"github.com/gatherhub/event-management-api/internal/infrastructure/config"
	mongodb "github.com/gatherhub/event-management-api/internal/infrastructure/db/mongo"
	redisdb "github.com/gatherhub/event-management-api/internal/infrastructure/db/redis"
	"github.com/gatherhub/event-management-api/internal/infrastructure/storage"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.BodyLimit("500K"))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORS.Origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Requested-With"},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("events"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	denylist := redisdb.NewTokenDenylist(rdb)

	tokens := service.NewTokenService(
		cfg.Auth.AccessTokenSecret,
		cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	authService := service.NewAuthService(userRepo, tokens, denylist, log)
	eventService := service.NewEventService(eventRepo, userRepo, log)

	var uploader ports.ImageUploader
	if cfg.Upload.URL != "" {
		uploader = storage.NewHTTPUploader(storage.Config{URL: cfg.Upload.URL, APIKey: cfg.Upload.APIKey})
	}

	cookies := handler.CookieOptions{Secure: cfg.IsProduction()}
	authHandler := handler.NewAuthHandler(authService, cookies)
	eventHandler := handler.NewEventHandler(eventService, uploader, log)
	authMiddleware := middleware.Auth(tokens, denylist, log)

	// --- User routes ---
	users := e.Group("/api/v1/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-token", authHandler.RefreshToken)
	users.POST("/logout", authHandler.Logout, authMiddleware)
	users.POST("/change-password", authHandler.ChangePassword, authMiddleware)
	users.GET("/current-user", authHandler.CurrentUser, authMiddleware)
	users.PUT("/update-account", authHandler.UpdateAccount, authMiddleware)

	// --- Event routes ---
	events := e.Group("/api/v1/event")
	events.POST("/create-event", eventHandler.Create, authMiddleware)
	events.DELETE("/delete-event", eventHandler.Delete, authMiddleware)
	events.GET("/get-all-event", eventHandler.UpcomingForUser, authMiddleware)
	events.GET("/get-past-event", eventHandler.Past, authMiddleware)
	events.POST("/join/:eventId", eventHandler.Join, authMiddleware)
	events.POST("/leave/:eventId", eventHandler.Leave, authMiddleware)
	events.GET("/get-all-events", eventHandler.AllUpcoming)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
