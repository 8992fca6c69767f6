package models

import (
	"time"
)

// Category 分类表。
// 删除分类只解除与文章的关联，永不删除文章本身。
type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`             // 主键
	Name        string    `gorm:"not null" json:"name"`             // 名称
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"` // 唯一标识（小写 kebab-case）
	Description string    `json:"description"`                      // 描述（可选）
	CreatedAt   time.Time `gorm:"index" json:"created_at"`          // 创建时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
