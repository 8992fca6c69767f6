package service

import (
	"strings"
	"time"

	"github.com/mowen-blog/internal/access"
	"github.com/mowen-blog/internal/models"
	"github.com/mowen-blog/internal/repository"
)

// CategoryService 分类业务服务。分类恒公开，读操作不做可见性过滤。
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

// List 查询分类列表
func (s *CategoryService) List(search string) ([]models.Category, error) {
	return s.categories.List(repository.CategoryListFilter{Search: strings.TrimSpace(search)})
}

// GetBySlug 获取分类详情
func (s *CategoryService) GetBySlug(slug string) (*models.Category, error) {
	cat, err := s.categories.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	return cat, nil
}

// Create 创建分类，slug 要求小写 kebab-case
func (s *CategoryService) Create(actor access.Actor, input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidTitle
	}
	slug := strings.TrimSpace(input.Slug)
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}

	decision, err := access.Evaluate(actor, access.ActionCreate, access.Resource{Kind: access.KindCategory, Published: true})
	if err != nil {
		return nil, err
	}
	if err := decisionError(decision); err != nil {
		return nil, err
	}

	count, err := s.categories.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	cat := models.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   time.Now(),
	}
	if err := s.categories.Create(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Update 更新分类
func (s *CategoryService) Update(actor access.Actor, id uint, input CategoryInput) (*models.Category, error) {
	cat, err := s.categories.GetByID(id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(actor, access.ActionUpdate); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		cat.Name = name
	}
	if slug := strings.TrimSpace(input.Slug); slug != "" && slug != cat.Slug {
		if !slugPattern.MatchString(slug) {
			return nil, ErrInvalidSlug
		}
		count, err := s.categories.CountBySlug(slug, &id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSlugExists
		}
		cat.Slug = slug
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		cat.Description = desc
	}

	if err := s.categories.Update(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// Delete 删除分类，仅清除与文章的关联，不删除文章
func (s *CategoryService) Delete(actor access.Actor, id uint) error {
	cat, err := s.categories.GetByID(id)
	if err != nil {
		return err
	}
	if cat == nil {
		return ErrNotFound
	}
	if err := s.authorize(actor, access.ActionDelete); err != nil {
		return err
	}
	return s.categories.Delete(id)
}

// CountPosts 统计分类关联的文章数
func (s *CategoryService) CountPosts(categoryID uint) (int64, error) {
	return s.categories.CountPosts(categoryID)
}

// authorize 分类无属主，属主类裁决只有超管能通过
func (s *CategoryService) authorize(actor access.Actor, action access.Action) error {
	decision, err := access.Evaluate(actor, action, access.Resource{Kind: access.KindCategory, Published: true})
	if err != nil {
		return err
	}
	return decisionError(decision)
}
