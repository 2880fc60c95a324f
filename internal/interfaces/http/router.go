package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"pagemark/internal/application/usage/usecases"
	"pagemark/internal/domain/plan"
	"pagemark/internal/infrastructure/ai"
	"pagemark/internal/infrastructure/auth"
	"pagemark/internal/infrastructure/cache"
	"pagemark/internal/infrastructure/config"
	"pagemark/internal/infrastructure/repository"
	"pagemark/internal/interfaces/http/handlers"
	"pagemark/internal/interfaces/http/middleware"
	"pagemark/internal/shared/logger"
	"pagemark/internal/shared/services/markdown"
)

// Router wires the metering use cases into the Gin engine.
type Router struct {
	engine          *gin.Engine
	usageHandler    *handlers.UsageHandler
	analysisHandler *handlers.AnalysisHandler
	planHandler     *handlers.PlanHandler
	authMiddleware  *middleware.AuthMiddleware
	cfg             *config.Config
	log             logger.Interface
}

// NewRouter creates a new HTTP router with all dependencies wired together.
func NewRouter(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	ledgerRepo := repository.NewUsageLedgerRepository(db, log)
	stateSource := repository.NewPlanStateRepository(db, log)
	statsCache := cache.NewRedisUsageStatsCache(redisClient, log)

	resolver := plan.NewResolver(parseTestAccounts(cfg.Metering.TestAccounts))
	engineClient := ai.NewHTTPAnalysisEngine(&cfg.AnalysisEngine, log)
	contextFetcher := ai.NewContextFetcher(&cfg.AnalysisEngine, log)
	markdownSvc := markdown.NewMarkdownService()

	checkUC := usecases.NewCheckUsageLimitUseCase(stateSource, resolver, ledgerRepo, log)
	recordUC := usecases.NewRecordUsageUseCase(stateSource, resolver, ledgerRepo, statsCache, log)
	statsUC := usecases.NewGetUsageStatsUseCase(stateSource, resolver, ledgerRepo, statsCache, log)
	recommendationsUC := usecases.NewGetRecommendationsUseCase(statsUC, log)
	listEventsUC := usecases.NewListUsageEventsUseCase(ledgerRepo, log)
	processUC := usecases.NewProcessAnalysisUseCase(checkUC, recordUC, engineClient, contextFetcher, markdownSvc, log)
	plansUC := usecases.NewGetPlansUseCase()

	usageHandler := handlers.NewUsageHandler(checkUC, recordUC, statsUC, recommendationsUC, listEventsUC, log)
	analysisHandler := handlers.NewAnalysisHandler(processUC, log)
	planHandler := handlers.NewPlanHandler(plansUC, log)

	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, log)

	return &Router{
		engine:          engine,
		usageHandler:    usageHandler,
		analysisHandler: analysisHandler,
		planHandler:     planHandler,
		authMiddleware:  authMiddleware,
		cfg:             cfg,
		log:             log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.RequestLogger(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.engine.Group("/api/v1")

	v1.GET("/plans", r.planHandler.ListPlans)

	usage := v1.Group("/usage")
	usage.Use(r.authMiddleware.RequireAuth())
	{
		usage.POST("/check", r.usageHandler.CheckUsage)
		usage.POST("/record", r.usageHandler.RecordUsage)
		usage.GET("/stats", r.usageHandler.GetStats)
		usage.GET("/recommendations", r.usageHandler.GetRecommendations)
		usage.GET("/events", r.usageHandler.ListEvents)
	}

	v1.POST("/analysis", r.authMiddleware.RequireAuth(), r.analysisHandler.ProcessAnalysis)
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func parseTestAccounts(raw map[string]string) map[string]plan.Tier {
	if len(raw) == 0 {
		return nil
	}
	accounts := make(map[string]plan.Tier, len(raw))
	for uid, tier := range raw {
		accounts[uid] = plan.ParseTier(tier)
	}
	return accounts
}
