package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mowen-blog/internal/access"
	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/models"
	"github.com/mowen-blog/internal/repository"
)

// PostService 文章业务服务。
// 全部变更操作经过 access 评估器裁决，拒绝转换为业务错误。
type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
}

// NewPostService 创建文章服务
func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository) *PostService {
	return &PostService{posts: posts, categories: categories}
}

// PostListInput 文章列表查询输入
type PostListInput struct {
	Page         int
	PageSize     int
	Status       string
	AuthorID     uint
	CategorySlug string
	Search       string
	Sort         string
}

// CreatePostInput 创建文章输入
type CreatePostInput struct {
	Title         string
	Slug          string
	Content       string
	CategorySlugs []string
}

// UpdatePostInput 更新文章输入，nil 字段表示不修改
type UpdatePostInput struct {
	Title   *string
	Slug    *string
	Content *string
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// 排序字段白名单，"-" 前缀表示降序
var sortableFields = map[string]struct{}{
	constants.SortFieldCreatedAt:   {},
	constants.SortFieldPublishedAt: {},
	constants.SortFieldTitle:       {},
}

// List 按操作者可见范围查询文章列表
func (s *PostService) List(actor access.Actor, input PostListInput) ([]models.Post, int64, error) {
	orderBy, err := parseSortOrder(input.Sort)
	if err != nil {
		return nil, 0, err
	}
	filter := repository.PostListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		Status:       input.Status,
		AuthorID:     input.AuthorID,
		CategorySlug: input.CategorySlug,
		Search:       input.Search,
		OrderBy:      orderBy,
		Viewer:       viewerScope(actor),
	}
	return s.posts.List(filter)
}

// GetBySlug 获取文章详情，对操作者不可见时按不存在处理
func (s *PostService) GetBySlug(actor access.Actor, slug string) (*models.Post, error) {
	post, err := s.posts.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(actor, access.ActionRead, postResource(post)); err != nil {
		return nil, err
	}
	return post, nil
}

// GetByID 按 ID 获取文章详情
func (s *PostService) GetByID(actor access.Actor, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(actor, access.ActionRead, postResource(post)); err != nil {
		return nil, err
	}
	return post, nil
}

// Create 创建文章，初始状态为草稿
func (s *PostService) Create(actor access.Actor, input CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	slug := strings.TrimSpace(input.Slug)
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}

	// 创建时资源尚不存在，直接走动作裁决
	decision, err := access.Evaluate(actor, access.ActionCreate, access.Resource{Kind: access.KindPost, AuthorID: actor.ID})
	if err != nil {
		return nil, err
	}
	if err := decisionError(decision); err != nil {
		return nil, err
	}

	count, err := s.posts.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	now := time.Now()
	post := models.Post{
		Title:     title,
		Slug:      slug,
		Content:   input.Content,
		Status:    constants.PostStatusDraft,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(&post); err != nil {
		return nil, err
	}

	if len(input.CategorySlugs) > 0 {
		cats, err := s.resolveCategories(input.CategorySlugs)
		if err != nil {
			return nil, err
		}
		if err := s.posts.ReplaceCategories(&post, cats); err != nil {
			return nil, err
		}
		post.Categories = cats
	}
	return &post, nil
}

// Update 更新文章。首次发布后 slug 冻结。
func (s *PostService) Update(actor access.Actor, id uint, input UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(actor, access.ActionUpdate, postResource(post)); err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		post.Title = title
	}
	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug != post.Slug {
			if post.FirstPublishedAt != nil {
				return nil, ErrSlugLocked
			}
			if !slugPattern.MatchString(slug) {
				return nil, ErrInvalidSlug
			}
			count, err := s.posts.CountBySlug(slug, &id)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrSlugExists
			}
			post.Slug = slug
		}
	}
	if input.Content != nil {
		post.Content = *input.Content
	}

	post.UpdatedAt = time.Now()
	if err := s.posts.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete 软删除文章，重复删除为幂等空操作
func (s *PostService) Delete(actor access.Actor, id uint) error {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}
	if err := s.authorize(actor, access.ActionDelete, postResource(post)); err != nil {
		return err
	}
	if post.IsDeleted() {
		return nil
	}
	return s.posts.SoftDelete(id, time.Now())
}

// Publish 发布文章。重复发布为幂等空操作；
// 首次发布记录 first_published_at，此后 slug 不可再修改。
func (s *PostService) Publish(actor access.Actor, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(actor, access.ActionPublish, postResource(post)); err != nil {
		return nil, err
	}
	if post.IsPublished() {
		return post, nil
	}

	now := time.Now()
	post.Status = constants.PostStatusPublished
	post.PublishedAt = &now
	if post.FirstPublishedAt == nil {
		post.FirstPublishedAt = &now
	}
	post.UpdatedAt = now
	if err := s.posts.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// Unpublish 撤回文章为草稿。重复撤回为幂等空操作。
func (s *PostService) Unpublish(actor access.Actor, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(actor, access.ActionUnpublish, postResource(post)); err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return post, nil
	}

	post.Status = constants.PostStatusDraft
	post.PublishedAt = nil
	post.UpdatedAt = time.Now()
	if err := s.posts.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// AssignCategories 全量替换文章的分类关联
func (s *PostService) AssignCategories(actor access.Actor, id uint, categorySlugs []string) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if err := s.authorize(actor, access.ActionAssignCategory, postResource(post)); err != nil {
		return nil, err
	}

	cats, err := s.resolveCategories(categorySlugs)
	if err != nil {
		return nil, err
	}
	if err := s.posts.ReplaceCategories(post, cats); err != nil {
		return nil, err
	}
	post.Categories = cats
	return post, nil
}

// authorize 先做可见性裁决再做动作裁决：
// 对操作者不可见的资源统一按不存在处理，避免泄露存在性。
func (s *PostService) authorize(actor access.Actor, action access.Action, res access.Resource) error {
	if !access.Visible(actor, res) {
		return ErrResourceHidden
	}
	decision, err := access.Evaluate(actor, action, res)
	if err != nil {
		return err
	}
	return decisionError(decision)
}

func (s *PostService) resolveCategories(slugs []string) ([]models.Category, error) {
	cats := make([]models.Category, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, raw := range slugs {
		slug := strings.TrimSpace(raw)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		cat, err := s.categories.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, fmt.Errorf("%w: 分类 %s", ErrNotFound, slug)
		}
		cats = append(cats, *cat)
	}
	return cats, nil
}

// postResource 构建文章的评估器资源快照
func postResource(post *models.Post) access.Resource {
	return access.Resource{
		Kind:        access.KindPost,
		AuthorID:    post.AuthorID,
		Published:   post.IsPublished(),
		SoftDeleted: post.IsDeleted(),
	}
}

// viewerScope 将操作者转换为列表查询可见范围
func viewerScope(actor access.Actor) repository.ViewerScope {
	return repository.ViewerScope{
		UserID: actor.ID,
		SeeAll: actor.Role == access.RoleSuperAdmin,
	}
}

// parseSortOrder 解析排序参数为 SQL 排序子句，仅允许白名单字段
func parseSortOrder(sort string) (string, error) {
	trimmed := strings.TrimSpace(sort)
	if trimmed == "" {
		return "created_at DESC", nil
	}
	field := trimmed
	direction := "ASC"
	if strings.HasPrefix(trimmed, "-") {
		field = trimmed[1:]
		direction = "DESC"
	}
	if _, ok := sortableFields[field]; !ok {
		return "", ErrInvalidSort
	}
	return field + " " + direction, nil
}
