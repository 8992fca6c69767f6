package models

import (
	"time"
)

// Comment 评论表。
// ParentID 只允许引用同一篇文章下的评论，由服务层在创建时校验。
// 软删除后记录保留，正文按可见性规则对外隐藏。
type Comment struct {
	ID        uint       `gorm:"primarykey" json:"id"`              // 主键
	PostID    uint       `gorm:"not null;index" json:"post_id"`     // 所属文章
	AuthorID  uint       `gorm:"not null;index" json:"author_id"`   // 评论作者
	Body      string     `gorm:"type:text;not null" json:"body"`    // 正文
	ParentID  *uint      `gorm:"index" json:"parent_id,omitempty"`  // 父评论（同文章内）
	CreatedAt time.Time  `gorm:"index" json:"created_at"`           // 创建时间
	UpdatedAt time.Time  `json:"updated_at"`                        // 更新时间
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"` // 软删除时间
}

// TableName 指定表名
func (Comment) TableName() string {
	return "comments"
}

// IsDeleted 判断评论是否已软删除
func (c *Comment) IsDeleted() bool {
	return c != nil && c.DeletedAt != nil
}

// IsTopLevel 判断是否为根评论
func (c *Comment) IsTopLevel() bool {
	return c != nil && c.ParentID == nil
}
