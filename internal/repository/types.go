package repository

import "time"

// ViewerScope 列表查询的读可见性范围。
// 与 access 包的可见性规则保持一致：
// SeeAll（超管）不过滤；UserID 非零时作者可见自己的草稿与已删记录；
// 否则仅已发布且未软删除的记录。
type ViewerScope struct {
	UserID uint
	SeeAll bool
}

// PostListFilter 查询文章列表的过滤条件
type PostListFilter struct {
	Page         int
	PageSize     int
	Status       string
	AuthorID     uint
	CategorySlug string
	Search       string
	OrderBy      string
	Viewer       ViewerScope
}

// CommentListFilter 查询评论列表的过滤条件。
// 软删除评论包含在结果中（记录头保留），正文遮蔽由服务层处理。
type CommentListFilter struct {
	Page     int
	PageSize int
	PostID   uint
	OrderBy  string
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CategoryListFilter 查询分类列表的过滤条件
type CategoryListFilter struct {
	Search string
}
