package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/mowen-blog/internal/models"

	"gorm.io/gorm"
)

// PostRepository 文章数据访问接口
type PostRepository interface {
	List(filter PostListFilter) ([]models.Post, int64, error)
	GetByID(id uint) (*models.Post, error)
	GetBySlug(slug string) (*models.Post, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	SoftDelete(id uint, at time.Time) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	ReplaceCategories(post *models.Post, categories []models.Category) error
	PurgeDeletedBefore(cutoff time.Time) (int64, error)
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建文章仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// List 文章列表，按 ViewerScope 应用读可见性
func (r *GormPostRepository) List(filter PostListFilter) ([]models.Post, int64, error) {
	query := r.db.Model(&models.Post{})
	query = applyViewerScope(query, filter.Viewer)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.Where(
			"id IN (SELECT post_id FROM post_categories JOIN categories ON categories.id = post_categories.category_id WHERE categories.slug = ?)",
			slug,
		)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR slug LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at DESC"
	}

	var posts []models.Post
	if err := query.Preload("Categories").Order(orderBy).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// applyViewerScope 将读可见性谓词下推到查询
func applyViewerScope(query *gorm.DB, viewer ViewerScope) *gorm.DB {
	if viewer.SeeAll {
		return query
	}
	if viewer.UserID != 0 {
		return query.Where(
			"(status = ? AND deleted_at IS NULL) OR author_id = ?",
			"published", viewer.UserID,
		)
	}
	return query.Where("status = ? AND deleted_at IS NULL", "published")
}

// GetByID 根据 ID 获取文章（包含软删除记录，可见性由调用方判定）
func (r *GormPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Categories").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug 根据 slug 获取文章（包含软删除记录）
func (r *GormPostRepository) GetBySlug(slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Categories").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create 创建文章
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

// Update 更新文章
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

// SoftDelete 标记软删除，记录保留
func (r *GormPostRepository) SoftDelete(id uint, at time.Time) error {
	return r.db.Model(&models.Post{}).Where("id = ?", id).Update("deleted_at", at).Error
}

// CountBySlug 统计 slug 数量
func (r *GormPostRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReplaceCategories 重建文章与分类的关联
func (r *GormPostRepository) ReplaceCategories(post *models.Post, categories []models.Category) error {
	return r.db.Model(post).Association("Categories").Replace(categories)
}

// PurgeDeletedBefore 物理清除超过保留期的软删除文章（连带其评论与分类关联）
func (r *GormPostRepository) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	var purged int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Post{}).
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("post_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_categories WHERE post_id IN ?", ids).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&models.Post{})
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	return purged, err
}
