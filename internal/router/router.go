package router

import (
	"fmt"
	"strings"

	"github.com/mowen-blog/internal/cache"
	"github.com/mowen-blog/internal/config"
	adminhandlers "github.com/mowen-blog/internal/http/handlers/admin"
	publichandlers "github.com/mowen-blog/internal/http/handlers/public"
	"github.com/mowen-blog/internal/logger"
	"github.com/mowen-blog/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mw"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁，请 %d 秒后重试",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	secretKey := cfg.JWT.SecretKey

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.GET("/captcha", publicHandler.Captcha)
		}

		// 公共读接口（可选鉴权：携带 Token 时按其角色放宽可见范围）
		read := apiV1.Group("")
		read.Use(OptionalUserJWTAuthMiddleware(secretKey, c.UserRepo))
		{
			read.GET("/posts", publicHandler.ListPosts)
			read.GET("/posts/:slug", publicHandler.GetPost)
			read.GET("/posts/:slug/comments", publicHandler.ListComments)
			read.GET("/categories", publicHandler.ListCategories)
			read.GET("/categories/:slug", publicHandler.GetCategory)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(secretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.Me)
			user.PUT("/me/password", publicHandler.ChangePassword)

			user.POST("/posts", publicHandler.CreatePost)
			user.PATCH("/posts/:id", publicHandler.UpdatePost)
			user.DELETE("/posts/:id", publicHandler.DeletePost)
			user.POST("/posts/:id/publish", publicHandler.PublishPost)
			user.POST("/posts/:id/unpublish", publicHandler.UnpublishPost)
			user.PUT("/posts/:id/categories", publicHandler.AssignPostCategories)

			user.POST("/posts/:id/comments", publicHandler.CreateComment)
			user.PATCH("/comments/:id", publicHandler.UpdateComment)
			user.DELETE("/comments/:id", publicHandler.DeleteComment)

			user.POST("/categories", publicHandler.CreateCategory)
			user.PATCH("/categories/:id", publicHandler.UpdateCategory)
			user.DELETE("/categories/:id", publicHandler.DeleteCategory)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		admin.Use(UserJWTAuthMiddleware(secretKey, c.UserRepo), RequireSuperAdmin())
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users", adminHandler.CreateUser)
			admin.PATCH("/users/:id", adminHandler.UpdateUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
