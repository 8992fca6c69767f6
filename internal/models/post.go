package models

import (
	"time"
)

// Post 文章表。
// DeletedAt 为业务软删除标记，由仓库层显式过滤：
// 可见性规则需要作者与超管仍能查询到已删记录，不能用 gorm.DeletedAt 全局排除。
type Post struct {
	ID               uint       `gorm:"primarykey" json:"id"`                     // 主键
	Title            string     `gorm:"not null" json:"title"`                    // 标题
	Slug             string     `gorm:"uniqueIndex;not null" json:"slug"`         // 唯一标识，首次发布后不可变
	Content          string     `gorm:"type:text" json:"content"`                 // 正文
	Status           string     `gorm:"not null;default:'draft';index" json:"status"` // 状态（draft/published）
	AuthorID         uint       `gorm:"not null;index" json:"author_id"`          // 作者
	PublishedAt      *time.Time `gorm:"index" json:"published_at"`                // 发布时间，非空当且仅当已发布
	FirstPublishedAt *time.Time `json:"first_published_at"`                       // 首次发布时间，设置后 slug 冻结
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`                  // 更新时间
	DeletedAt        *time.Time `gorm:"index" json:"deleted_at,omitempty"`        // 软删除时间
	Categories       []Category `gorm:"many2many:post_categories" json:"categories,omitempty"` // 所属分类
}

// TableName 指定表名
func (Post) TableName() string {
	return "posts"
}

// IsPublished 判断文章是否处于已发布状态
func (p *Post) IsPublished() bool {
	return p != nil && p.Status == "published" && p.PublishedAt != nil
}

// IsDeleted 判断文章是否已软删除
func (p *Post) IsDeleted() bool {
	return p != nil && p.DeletedAt != nil
}
