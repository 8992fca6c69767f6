package public

import (
	handlershared "github.com/mowen-blog/internal/http/handlers/shared"
	"github.com/mowen-blog/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Me 获取当前用户信息
func (h *Handler) Me(c *gin.Context) {
	userID, ok := handlershared.RequireUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetUserByID(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if user == nil {
		response.NotFound(c, "记录不存在")
		return
	}
	response.Success(c, user)
}

// ChangePassword 修改当前用户密码，成功后旧 Token 全部失效
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := handlershared.RequireUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	if err := h.AuthService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "密码已更新", gin.H{"reauth_required": true})
}
