package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/microblog/config"
	"github.com/cppla/microblog/controllers"
	"github.com/cppla/microblog/middleware"
	"github.com/cppla/microblog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, mailer utils.Mailer) *gin.Engine {
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
		AllowHeaders:     []string{"Authorization", "Content-Type"},
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

	authController := controllers.NewAuthController(db, mailer)
	postController := controllers.NewPostController(db)
	followController := controllers.NewFollowController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/reset-password", authController.RequestPasswordReset)
	authGroup.POST("/reset-password/confirm", authController.ResetPassword)
	authGroup.POST("/logout", middleware.AuthRequired(db), authController.Logout)

	account := api.Group("/account")
	account.Use(middleware.AuthRequired(db))
	account.GET("/me", authController.Me)
	account.PATCH("/profile", authController.UpdateProfile)
	account.POST("/confirm", authController.Confirm)
	account.POST("/confirm/resend", authController.ResendConfirm)
	account.POST("/change-password", authController.ChangePassword)
	account.POST("/change-email", authController.RequestEmailChange)
	account.POST("/change-email/confirm", authController.ConfirmEmailChange)
	account.GET("/2fa/setup", authController.TOTPSetup)
	account.POST("/2fa/enable", authController.TOTPEnable)
	account.POST("/2fa/disable", authController.TOTPDisable)
	account.POST("/delete", authController.DeleteAccount)

	// Public listings
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/comments", postController.ListComments)
	api.GET("/users/:username", authController.GetUserPublicByUsername)
	api.GET("/users/:username/posts", postController.ListUserPosts)
	api.GET("/users/:username/following", followController.ListFollowing)
	api.GET("/users/:username/followers", followController.ListFollowers)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(db), middleware.ConfirmedRequired(db))
	protected.GET("/feed", postController.Feed)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/comments", postController.CreateComment)
	protected.DELETE("/comments/:commentId", postController.DeleteComment)
	protected.POST("/users/:username/follow", followController.Follow)
	protected.DELETE("/users/:username/follow", followController.Unfollow)
	protected.GET("/users/:username/follow", followController.IsFollowing)
	protected.GET("/users", authController.ListUsers)
	protected.PATCH("/admin/users/:id", authController.AdminUpdateUser)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
