package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/config"
	"github.com/SadmanRahman12/GreenZen/controllers"
	"github.com/SadmanRahman12/GreenZen/middleware"
	"github.com/SadmanRahman12/GreenZen/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "x-auth-token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	habitController := controllers.NewHabitController(db)
	challengeController := controllers.NewChallengeController(db)
	campaignController := controllers.NewCampaignController(db)
	leaderboardController := controllers.NewLeaderboardController(db)
	forumController := controllers.NewForumController(db)
	publicationController := controllers.NewPublicationController(db)
	eventController := controllers.NewEventController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	userGroup := api.Group("/user", middleware.AuthRequired())
	userGroup.GET("/profile", userController.Profile)
	userGroup.GET("/settings", userController.GetSettings)
	userGroup.PUT("/settings", userController.UpdateSettings)
	userGroup.POST("/change-password", middleware.RateLimitMiddleware(), userController.ChangePassword)
	userGroup.GET("/all", middleware.AdminRequired(), userController.ListAll)
	userGroup.PUT("/toggle-admin/:id", middleware.AdminRequired(), userController.ToggleAdmin)
	userGroup.DELETE("/:id", middleware.AdminRequired(), userController.Delete)

	habitGroup := api.Group("/habits", middleware.AuthRequired())
	habitGroup.GET("", habitController.List)
	habitGroup.POST("", habitController.Create)
	habitGroup.PUT("/complete/:id", habitController.Complete)

	challengeGroup := api.Group("/challenges")
	challengeGroup.GET("/all", middleware.AuthRequired(), challengeController.ListAll)
	challengeGroup.GET("/daily", middleware.AuthRequired(), challengeController.GetDaily)
	challengeGroup.POST("/daily/complete", middleware.AuthRequired(), challengeController.CompleteDaily)
	challengeGroup.POST("", middleware.AuthRequired(), middleware.AdminRequired(), challengeController.CreateChallenge)
	challengeGroup.PUT("/:id", middleware.AuthRequired(), middleware.AdminRequired(), challengeController.UpdateChallenge)
	challengeGroup.DELETE("/:id", middleware.AuthRequired(), middleware.AdminRequired(), challengeController.DeleteChallenge)

	campaignGroup := api.Group("/campaigns", middleware.AuthRequired())
	campaignGroup.GET("/active", campaignController.Active)
	campaignGroup.GET("/upcoming", campaignController.Upcoming)
	campaignGroup.POST("/:id/join", campaignController.Join)
	campaignGroup.POST("/:id/complete-challenge", campaignController.CompleteChallenge)
	campaignGroup.GET("/:id/leaderboard", campaignController.Leaderboard)

	boardGroup := api.Group("/leaderboard", middleware.AuthRequired())
	boardGroup.GET("/global", leaderboardController.Global)
	boardGroup.GET("/friends", leaderboardController.Friends)
	boardGroup.GET("/regional", leaderboardController.Regional)
	boardGroup.POST("/add-friend", leaderboardController.AddFriend)
	boardGroup.POST("/eco-battle/create", leaderboardController.CreateEcoBattle)
	boardGroup.GET("/eco-battles", leaderboardController.EcoBattles)

	forumGroup := api.Group("/forum")
	forumGroup.GET("", forumController.List)
	forumGroup.GET("/:id", forumController.Get)
	forumGroup.POST("", middleware.AuthRequired(), middleware.RateLimitMiddleware(), forumController.Create)
	forumGroup.PUT("/:id", middleware.AuthRequired(), forumController.Update)
	forumGroup.DELETE("/:id", middleware.AuthRequired(), forumController.Delete)
	forumGroup.POST("/comment/:id", middleware.AuthRequired(), middleware.RateLimitMiddleware(), forumController.Comment)
	forumGroup.DELETE("/comment/:id/:comment_id", middleware.AuthRequired(), forumController.DeleteComment)
	forumGroup.PUT("/like/:id", middleware.AuthRequired(), forumController.Like)
	forumGroup.PUT("/unlike/:id", middleware.AuthRequired(), forumController.Unlike)

	pubGroup := api.Group("/publications")
	pubGroup.GET("", publicationController.List)
	pubGroup.GET("/:slug", publicationController.GetBySlug)
	pubGroup.POST("", middleware.AuthRequired(), middleware.AdminRequired(), publicationController.Create)
	pubGroup.PUT("/:slug", middleware.AuthRequired(), middleware.AdminRequired(), publicationController.Update)
	pubGroup.DELETE("/:slug", middleware.AuthRequired(), middleware.AdminRequired(), publicationController.Delete)

	eventGroup := api.Group("/events")
	eventGroup.GET("", eventController.List)
	eventGroup.POST("", middleware.AuthRequired(), eventController.Create)
	eventGroup.PUT("/:id", middleware.AuthRequired(), middleware.AdminRequired(), eventController.Update)
	eventGroup.DELETE("/:id", middleware.AuthRequired(), middleware.AdminRequired(), eventController.Delete)

	// Public stats endpoint
	api.GET("/stats", statsController.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
