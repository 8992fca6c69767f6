package shared

import (
	"github.com/mowen-blog/internal/access"
	"github.com/mowen-blog/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CurrentActor 从上下文读取经过认证中间件写入的操作者快照。
// 可选认证路由未携带 Token 时返回匿名操作者。
func CurrentActor(c *gin.Context) access.Actor {
	value, exists := c.Get("actor")
	if !exists {
		return access.Actor{}
	}
	if actor, ok := value.(access.Actor); ok {
		return actor
	}
	return access.Actor{}
}

// RequireUserID 从上下文读取已认证用户 ID，缺失时统一返回 401。
func RequireUserID(c *gin.Context) (uint, bool) {
	actor := CurrentActor(c)
	if actor.ID == 0 {
		RespondError(c, response.CodeUnauthorized, "请先登录", nil)
		return 0, false
	}
	return actor.ID, true
}
