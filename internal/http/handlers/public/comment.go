package public

import (
	"github.com/mowen-blog/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	Body     string `json:"body" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// UpdateCommentRequest 更新评论请求
type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// ListComments 文章评论列表，软删除评论正文按观察者遮蔽
func (h *Handler) ListComments(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	comments, total, err := h.CommentService.ListByPost(currentActor(c), c.Param("slug"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, comments, buildPagination(page, pageSize, total))
}

// CreateComment 创建评论
func (h *Handler) CreateComment(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	comment, err := h.CommentService.Create(currentActor(c), postID, req.Body, req.ParentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, comment)
}

// UpdateComment 更新评论正文
func (h *Handler) UpdateComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	comment, err := h.CommentService.Update(currentActor(c), id, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 软删除评论
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.CommentService.Delete(currentActor(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
