package public

import (
	"strconv"
	"strings"

	"github.com/mowen-blog/internal/http/response"
	"github.com/mowen-blog/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePostRequest 创建文章请求
type CreatePostRequest struct {
	Title         string   `json:"title" binding:"required"`
	Slug          string   `json:"slug" binding:"required"`
	Content       string   `json:"content"`
	CategorySlugs []string `json:"category_slugs"`
}

// UpdatePostRequest 更新文章请求，缺省字段不修改
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Slug    *string `json:"slug"`
	Content *string `json:"content"`
}

// AssignCategoriesRequest 文章分类关联请求
type AssignCategoriesRequest struct {
	CategorySlugs []string `json:"category_slugs"`
}

// ListPosts 文章列表，匿名请求只能看到已发布内容
func (h *Handler) ListPosts(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	authorID, _ := strconv.ParseUint(c.Query("author_id"), 10, 64)

	posts, total, err := h.PostService.List(currentActor(c), service.PostListInput{
		Page:         page,
		PageSize:     pageSize,
		Status:       strings.TrimSpace(c.Query("status")),
		AuthorID:     uint(authorID),
		CategorySlug: strings.TrimSpace(c.Query("category")),
		Search:       strings.TrimSpace(c.Query("search")),
		Sort:         strings.TrimSpace(c.Query("sort")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, posts, buildPagination(page, pageSize, total))
}

// GetPost 文章详情
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.PostService.GetBySlug(currentActor(c), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// CreatePost 创建文章（草稿）
func (h *Handler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	post, err := h.PostService.Create(currentActor(c), service.CreatePostInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		CategorySlugs: req.CategorySlugs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, post)
}

// UpdatePost 更新文章
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	post, err := h.PostService.Update(currentActor(c), id, service.UpdatePostInput{
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 软删除文章
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.PostService.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// PublishPost 发布文章
func (h *Handler) PublishPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := h.PostService.Publish(currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// UnpublishPost 撤回文章为草稿
func (h *Handler) UnpublishPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := h.PostService.Unpublish(currentActor(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, post)
}

// AssignPostCategories 全量替换文章分类
func (h *Handler) AssignPostCategories(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	post, err := h.PostService.AssignCategories(currentActor(c), id, req.CategorySlugs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, post)
}
