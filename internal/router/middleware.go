package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/mowen-blog/internal/access"
	"github.com/mowen-blog/internal/cache"
	"github.com/mowen-blog/internal/config"
	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/http/response"
	"github.com/mowen-blog/internal/repository"
	"github.com/mowen-blog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const actorContextKey = "actor"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// UserJWTAuthMiddleware 用户 JWT 鉴权中间件。
// 通过后在上下文写入操作者快照，供下游执行访问裁决。
func UserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, email, errMsg := resolveTokenActor(c, secretKey, userRepo)
		if errMsg != "" {
			response.Unauthorized(c, errMsg)
			c.Abort()
			return
		}
		setActor(c, actor, email)
		c.Next()
	}
}

// OptionalUserJWTAuthMiddleware 可选鉴权中间件。
// 未携带 Token 按匿名访客放行；携带了无效 Token 仍然拒绝，
// 避免被吊销的令牌退化为匿名后继续读取。
func OptionalUserJWTAuthMiddleware(secretKey string, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) == "" {
			c.Next()
			return
		}
		actor, email, errMsg := resolveTokenActor(c, secretKey, userRepo)
		if errMsg != "" {
			response.Unauthorized(c, errMsg)
			c.Abort()
			return
		}
		setActor(c, actor, email)
		c.Next()
	}
}

// RequireSuperAdmin 管理口径限制，仅放行 super_admin
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(actorContextKey)
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		actor, ok := value.(access.Actor)
		if !ok || actor.ID == 0 {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if actor.Role != access.RoleSuperAdmin {
			response.Forbidden(c, "无权访问")
			c.Abort()
			return
		}
		c.Next()
	}
}

// resolveTokenActor 解析并校验 Bearer Token，返回操作者快照。
// 优先走 Redis 鉴权快照，未命中回退数据库并回填缓存。
func resolveTokenActor(c *gin.Context, secretKey string, userRepo repository.UserRepository) (access.Actor, string, string) {
	if secretKey == "" {
		return access.Actor{}, "", "服务未配置签名密钥"
	}
	if userRepo == nil {
		return access.Actor{}, "", "无效的 token"
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return access.Actor{}, "", "认证信息缺失"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return access.Actor{}, "", "认证信息格式错误"
	}

	tokenString := parts[1]
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &service.UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return access.Actor{}, "", "无效的 token"
	}

	if cached, hit, cacheErr := cache.GetUserAuthState(c.Request.Context(), claims.UserID); cacheErr == nil && hit && cached != nil {
		if !isActiveUserStatus(cached.Status) {
			return access.Actor{}, "", "账号已被禁用"
		}
		if claims.TokenVersion != cached.TokenVersion || !isIssuedAfterInvalidBeforeUnix(claims.IssuedAt, cached.TokenInvalidBefore) {
			return access.Actor{}, "", "令牌已失效"
		}
		role, roleErr := access.ParseRole(cached.Role)
		if roleErr != nil {
			return access.Actor{}, "", "无效的 token"
		}
		return access.Actor{ID: claims.UserID, Role: role}, claims.Email, ""
	}

	user, err := userRepo.GetByID(claims.UserID)
	if err != nil || user == nil {
		return access.Actor{}, "", "无效的 token"
	}
	if !isActiveUserStatus(user.Status) {
		return access.Actor{}, "", "账号已被禁用"
	}
	if claims.TokenVersion != user.TokenVersion || !isIssuedAfterInvalidBefore(claims.IssuedAt, user.TokenInvalidBefore) {
		return access.Actor{}, "", "令牌已失效"
	}
	role, roleErr := access.ParseRole(user.Role)
	if roleErr != nil {
		return access.Actor{}, "", "无效的 token"
	}
	_ = cache.SetUserAuthState(c.Request.Context(), cache.BuildUserAuthState(user))

	return access.Actor{ID: user.ID, Role: role}, user.Email, ""
}

func setActor(c *gin.Context, actor access.Actor, email string) {
	c.Set(actorContextKey, actor)
	c.Set("user_id", actor.ID)
	c.Set("user_email", email)
}

func isIssuedAfterInvalidBefore(issuedAt *jwt.NumericDate, invalidBefore *time.Time) bool {
	if invalidBefore == nil {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBefore.Unix()
}

func isIssuedAfterInvalidBeforeUnix(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBeforeUnix
}

func isActiveUserStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusActive
}
