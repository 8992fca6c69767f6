// Package access 实现纯函数式的权限评估：
// 给定操作者（角色+身份）、目标资源快照与动作，返回 ALLOW/DENY 决策；
// 另提供独立于写权限的读可见性过滤规则。
// 评估器无状态、不访问存储，相同输入必得相同输出。
package access

import (
	"fmt"

	"github.com/mowen-blog/internal/constants"
)

// Role 操作者角色（封闭枚举）
type Role uint8

const (
	RoleAnonymous Role = iota // 未认证访客
	RoleSubscriber
	RoleEditor
	RoleSuperAdmin
)

// ParseRole 解析角色字符串；空串视为未认证访客
func ParseRole(role string) (Role, error) {
	switch role {
	case "":
		return RoleAnonymous, nil
	case constants.RoleSubscriber:
		return RoleSubscriber, nil
	case constants.RoleEditor:
		return RoleEditor, nil
	case constants.RoleSuperAdmin:
		return RoleSuperAdmin, nil
	default:
		return RoleAnonymous, fmt.Errorf("access: unknown role %q", role)
	}
}

// String 返回角色字符串
func (r Role) String() string {
	switch r {
	case RoleAnonymous:
		return "anonymous"
	case RoleSubscriber:
		return constants.RoleSubscriber
	case RoleEditor:
		return constants.RoleEditor
	case RoleSuperAdmin:
		return constants.RoleSuperAdmin
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Action 受控动作（封闭枚举）
type Action uint8

const (
	ActionCreate Action = iota
	ActionRead
	ActionUpdate
	ActionDelete
	ActionPublish
	ActionUnpublish
	ActionAssignCategory
)

// String 返回动作字符串
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionPublish:
		return "publish"
	case ActionUnpublish:
		return "unpublish"
	case ActionAssignCategory:
		return "assign_category"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// ResourceKind 资源类型
type ResourceKind uint8

const (
	KindPost ResourceKind = iota
	KindComment
	KindCategory
)

// Actor 操作者快照。未认证访客 ID 为 0、角色为 RoleAnonymous。
type Actor struct {
	ID   uint
	Role Role
}

// Resource 目标资源快照。评估器只读取快照，不查询存储。
// 评论须同时携带其所属文章的快照字段（Post* 前缀）。
type Resource struct {
	Kind        ResourceKind
	AuthorID    uint // 资源作者；分类无作者，保持 0
	Published   bool // 文章：是否已发布；分类恒 true
	SoftDeleted bool // 自身软删除标记

	PostAuthorID    uint // 评论所属文章的作者
	PostPublished   bool // 评论所属文章是否已发布
	PostSoftDeleted bool // 评论所属文章是否已软删除
}

// Reason 拒绝原因码
type Reason uint8

const (
	ReasonNone          Reason = iota
	ReasonForbiddenRole        // 角色本身不具备该动作
	ReasonNotOwner             // 动作仅限资源属主
	ReasonResourceHidden       // 资源存在但对操作者不可见（调用方应映射为 404）
)

// String 返回原因码字符串
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonForbiddenRole:
		return "FORBIDDEN_ROLE"
	case ReasonNotOwner:
		return "NOT_OWNER"
	case ReasonResourceHidden:
		return "RESOURCE_HIDDEN"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// Decision 评估结果
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow 允许决策
var Allow = Decision{Allowed: true}

// Deny 构造拒绝决策
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}
