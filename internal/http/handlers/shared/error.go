package shared

import (
	"errors"

	"github.com/mowen-blog/internal/http/response"
	"github.com/mowen-blog/internal/logger"
	"github.com/mowen-blog/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondServiceError 将服务层业务错误映射为响应码。
// 角色/属主拒绝映射 403，不可见与不存在统一映射 404 以避免泄露存在性，
// 校验类错误映射 400，其余按内部错误处理并记录日志。
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrForbiddenRole), errors.Is(err, service.ErrNotOwner):
		response.Error(c, response.CodeForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrResourceHidden):
		response.Error(c, response.CodeNotFound, service.ErrNotFound.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserDisabled):
		response.Error(c, response.CodeUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidBody),
		errors.Is(err, service.ErrInvalidSlug),
		errors.Is(err, service.ErrSlugExists),
		errors.Is(err, service.ErrSlugLocked),
		errors.Is(err, service.ErrInvalidParent),
		errors.Is(err, service.ErrInvalidSort),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrLastSuperAdmin),
		errors.Is(err, service.ErrCaptchaRequired),
		errors.Is(err, service.ErrCaptchaInvalid):
		response.Error(c, response.CodeBadRequest, err.Error())
	default:
		RespondError(c, response.CodeInternal, "服务器内部错误", err)
	}
}
