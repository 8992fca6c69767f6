package repository

import (
	"errors"
	"time"

	"github.com/mowen-blog/internal/models"

	"gorm.io/gorm"
)

// CommentRepository 评论数据访问接口
type CommentRepository interface {
	ListByPost(filter CommentListFilter) ([]models.Comment, int64, error)
	GetByID(id uint) (*models.Comment, error)
	Create(comment *models.Comment) error
	Update(comment *models.Comment) error
	SoftDelete(id uint, at time.Time) error
	PurgeDeletedBefore(cutoff time.Time) (int64, error)
}

// GormCommentRepository GORM 实现
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 创建评论仓库
func NewCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// ListByPost 文章下的评论列表。
// 软删除评论包含在内：记录头对外保留，正文遮蔽由服务层完成。
func (r *GormCommentRepository) ListByPost(filter CommentListFilter) ([]models.Comment, int64, error) {
	query := r.db.Model(&models.Comment{}).Where("post_id = ?", filter.PostID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at ASC"
	}

	var comments []models.Comment
	if err := query.Order(orderBy).Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// GetByID 根据 ID 获取评论（包含软删除记录）
func (r *GormCommentRepository) GetByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Create 创建评论
func (r *GormCommentRepository) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// Update 更新评论
func (r *GormCommentRepository) Update(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// SoftDelete 标记软删除，记录保留供审计
func (r *GormCommentRepository) SoftDelete(id uint, at time.Time) error {
	return r.db.Model(&models.Comment{}).Where("id = ?", id).Update("deleted_at", at).Error
}

// PurgeDeletedBefore 物理清除超过保留期的软删除评论
func (r *GormCommentRepository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).Delete(&models.Comment{})
	return result.RowsAffected, result.Error
}
