package service

import (
	"errors"

	"github.com/mowen-blog/internal/access"
)

// 业务错误哨兵。处理层据此映射响应码，服务层不关心 HTTP。
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrForbiddenRole      = errors.New("当前角色无权执行该操作")
	ErrNotOwner           = errors.New("仅资源属主可执行该操作")
	ErrResourceHidden     = errors.New("资源不可见")
	ErrInvalidEmail       = errors.New("邮箱格式不正确")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserDisabled       = errors.New("账号已被禁用")
	ErrInvalidPassword    = errors.New("原密码不正确")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrInvalidTitle       = errors.New("标题不能为空")
	ErrInvalidBody        = errors.New("正文不能为空")
	ErrInvalidSlug        = errors.New("slug 格式不正确")
	ErrSlugExists         = errors.New("slug 已存在")
	ErrSlugLocked         = errors.New("文章首次发布后 slug 不可修改")
	ErrInvalidParent      = errors.New("父评论必须属于同一篇文章")
	ErrInvalidSort        = errors.New("不支持的排序字段")
	ErrInvalidRole        = errors.New("不支持的用户角色")
	ErrInvalidStatus      = errors.New("不支持的账号状态")
	ErrLastSuperAdmin     = errors.New("系统至少保留一名超级管理员")
	ErrCaptchaRequired    = errors.New("请输入验证码")
	ErrCaptchaInvalid     = errors.New("验证码错误或已过期")
)

// decisionError 将评估器的拒绝决策转换为业务错误。
// 决策为允许时返回 nil。
func decisionError(d access.Decision) error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case access.ReasonNotOwner:
		return ErrNotOwner
	case access.ReasonResourceHidden:
		return ErrResourceHidden
	default:
		return ErrForbiddenRole
	}
}
