package constants

// 用户角色常量
const (
	RoleSubscriber = "subscriber"
	RoleEditor     = "editor"
	RoleSuperAdmin = "super_admin"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 文章状态常量
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// 列表排序字段常量
const (
	SortFieldCreatedAt   = "created_at"
	SortFieldPublishedAt = "published_at"
	SortFieldTitle       = "title"
)

// 分页常量
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// 队列名称常量
const (
	QueueDefault = "default"
)

// 异步任务类型常量
const (
	TaskCommentNotify = "comment:notify"
)

// 软删除评论对外展示的占位正文
const DeletedCommentBody = "[deleted]"
