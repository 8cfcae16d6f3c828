package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/promptgen/internal/api/handler"
	"github.com/timmy/promptgen/internal/api/middleware"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/logger"
	"github.com/timmy/promptgen/internal/service"
	"gorm.io/gorm"
)

// Services are the dependencies the HTTP layer serves.
type Services struct {
	DB          *gorm.DB
	Auth        *service.AuthService
	Generations *service.PromptGenerationService
	Posts       *service.PostService
	VLM         *service.VLMService
}

// RouterConfig holds HTTP-layer settings.
type RouterConfig struct {
	Mode       string
	CORS       middleware.CORSConfig
	Limiter    *middleware.IPRateLimiter // nil disables throttling
	PageLimits domain.PageLimits
	PostLimits domain.PageLimits
	StaticPath string // URL prefix for locally stored uploads, "" to disable
	StaticRoot string
	Logger     *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc *Services, cfg *RouterConfig) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS))

	throttle := func(c *gin.Context) { c.Next() }
	if cfg.Limiter != nil {
		throttle = middleware.RateLimit(cfg.Limiter)
	}
	auth := middleware.JWTAuth(svc.Auth)

	// Create handlers
	healthHandler := handler.NewHealthHandler(svc.DB)
	authHandler := handler.NewAuthHandler(svc.Auth)
	generationHandler := handler.NewPromptGenerationHandler(svc.Generations, cfg.PageLimits)
	postHandler := handler.NewPostHandler(svc.Posts, cfg.PostLimits)

	// Health check
	r.GET("/health", healthHandler.Health)

	if cfg.StaticPath != "" && cfg.StaticRoot != "" {
		r.Static(cfg.StaticPath, cfg.StaticRoot)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Accounts
		v1.POST("/auth/register", throttle, authHandler.Register)
		v1.POST("/auth/login", throttle, authHandler.Login)
		v1.GET("/user", auth, authHandler.Me)

		// Prompt generations
		generations := v1.Group("/prompt-generations", auth, throttle)
		generations.GET("", generationHandler.List)
		generations.POST("",
			middleware.UploadBodyLimit(svc.Generations.MaxUploadBytes()),
			generationHandler.Create)

		// AI connectivity
		if svc.VLM != nil {
			v1.GET("/ai/ping", auth, handler.NewAIHandler(svc.VLM).Ping)
		}

		// Posts
		v1.GET("/posts", postHandler.List)
		v1.GET("/posts/:id", postHandler.Show)
		v1.POST("/posts", auth, postHandler.Create)
		v1.PUT("/posts/:id", auth, postHandler.Update)
		v1.DELETE("/posts/:id", auth, postHandler.Delete)
	}

	return r
}
