package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/api/handlers"
	"github.com/vaishnav-mv/LudusCode-Backend/internal/api/middleware"
	"github.com/vaishnav-mv/LudusCode-Backend/internal/config"
	"github.com/vaishnav-mv/LudusCode-Backend/internal/repository"
	"github.com/vaishnav-mv/LudusCode-Backend/internal/service"
	"github.com/vaishnav-mv/LudusCode-Backend/internal/websocket"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/database"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/distributed"
	jwtutil "github.com/vaishnav-mv/LudusCode-Backend/pkg/jwt"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/judge"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/logger"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/ratelimit"
)

// App 라우터와 백그라운드 컴포넌트 핸들
type App struct {
	Router      *gin.Engine
	sweeper     *service.DuelSweeper
	broadcaster *websocket.DuelBroadcaster
}

// NewApp API 라우터 및 백그라운드 서비스 설정
func NewApp(cfg *config.Config, db *database.DB, redisClient *redis.Client) *App {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Judge 클라이언트 초기화 (HTTP)
	judgeClient := judge.NewClient(cfg.JudgeURL, cfg.JudgeTimeout)

	// Repository 초기화
	userRepo := repository.NewUserRepository(db)
	problemRepo := repository.NewProblemRepository(db)
	duelRepo := repository.NewDuelRepository(db)
	walletRepo := repository.NewWalletRepository(db)

	// WebSocket Hub 초기화 및 시작
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Redis Pub/Sub 브로드캐스터 시작 (다중 인스턴스 중계)
	broadcaster := websocket.NewDuelBroadcaster(redisClient, wsHub)
	broadcaster.Start(context.Background())

	// Service 초기화
	eloService := service.NewELOService()
	verdictService := service.NewVerdictService()
	antiCheatService := service.NewAntiCheatService()
	userService := service.NewUserService(userRepo)
	walletService := service.NewWalletService(walletRepo)
	duelService := service.NewDuelService(
		duelRepo,
		problemRepo,
		userRepo,
		walletService,
		judgeClient,
		eloService,
		verdictService,
		broadcaster,
	)

	// Duel Sweeper 초기화 및 시작 (제한 시간 초과 듀얼 무승부 처리)
	lockManager := distributed.NewRedisLockManager(redisClient)
	sweeper := service.NewDuelSweeper(duelRepo, duelService, lockManager, cfg.DuelMaxDuration, cfg.DuelSweepInterval)
	sweeper.Start()

	// Rate Limiter (제출은 인스턴스 간 공유되는 Redis 한도)
	submitLimiter := ratelimit.NewRedisRateLimiter(redisClient, "ratelimit:")

	// Handler 초기화
	jwtManager := jwtutil.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	authHandler := handlers.NewAuthHandler(userService, jwtManager)
	duelHandler := handlers.NewDuelHandler(duelService, antiCheatService)
	walletHandler := handlers.NewWalletHandler(walletService)
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	auth := middleware.Auth(jwtManager)

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// WebSocket endpoint
		v1.GET("/ws", auth, wsHandler.HandleWebSocket)

		// Auth routes
		authGroup := v1.Group("/auth")
		authGroup.Use(middleware.AuthRateLimit())
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(auth)
		{
			users.GET("/me", authHandler.Me)
		}

		// Wallet routes
		wallet := v1.Group("/wallet")
		wallet.Use(auth)
		{
			wallet.GET("", walletHandler.GetWallet)
			wallet.POST("/deposit", walletHandler.Deposit)
		}

		// Duel routes
		duels := v1.Group("/duels")
		duels.Use(auth)
		{
			duels.POST("", duelHandler.CreateDuel)
			duels.POST("/open", duelHandler.CreateOpenDuel)
			duels.GET("/open", duelHandler.ListOpenDuels)
			duels.GET("/active", duelHandler.ListActiveDuels)
			duels.GET("/:id", duelHandler.GetDuel)
			duels.POST("/:id/join", duelHandler.JoinDuel)
			duels.POST("/:id/submit",
				middleware.SubmitRateLimit(submitLimiter, cfg.SubmitRateLimit, cfg.SubmitRateWindow),
				duelHandler.Submit,
			)
			duels.POST("/:id/forfeit", duelHandler.Forfeit)
			duels.POST("/:id/cancel", duelHandler.Cancel)
			duels.POST("/:id/summary", duelHandler.SetSummary)

			// 관리자 전용
			duels.POST("/:id/draw", middleware.AdminOnly(), duelHandler.FinishDraw)
			duels.PATCH("/:id/state", middleware.AdminOnly(), duelHandler.UpdateState)
			duels.GET("/:id/anticheat", middleware.AdminOnly(), duelHandler.ScanAntiCheat)
		}
	}

	logger.Info("Router configured",
		"sweepInterval", cfg.DuelSweepInterval,
		"maxDuelDuration", cfg.DuelMaxDuration,
	)

	return &App{
		Router:      router,
		sweeper:     sweeper,
		broadcaster: broadcaster,
	}
}

// Shutdown 백그라운드 컴포넌트 정리
func (a *App) Shutdown() {
	a.sweeper.Stop()
	a.broadcaster.Stop()
}
