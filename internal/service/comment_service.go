package service

import (
	"context"
	"strings"
	"time"

	"github.com/mowen-blog/internal/access"
	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/logger"
	"github.com/mowen-blog/internal/models"
	"github.com/mowen-blog/internal/repository"
)

// CommentNotifier 评论通知入队接口，nil 表示队列未启用
type CommentNotifier interface {
	EnqueueCommentNotify(ctx context.Context, commentID, postID uint) error
}

// CommentService 评论业务服务。
// 评论的记录可见性跟随所属文章；软删除评论保留记录头、遮蔽正文。
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	notifier CommentNotifier
}

// NewCommentService 创建评论服务
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, notifier CommentNotifier) *CommentService {
	return &CommentService{comments: comments, posts: posts, notifier: notifier}
}

// ListByPost 查询文章下的评论列表，软删除评论的正文按可见性遮蔽
func (s *CommentService) ListByPost(actor access.Actor, postSlug string, page, pageSize int) ([]models.Comment, int64, error) {
	post, err := s.posts.GetBySlug(strings.TrimSpace(postSlug))
	if err != nil {
		return nil, 0, err
	}
	if post == nil {
		return nil, 0, ErrNotFound
	}
	if !access.Visible(actor, postResource(post)) {
		return nil, 0, ErrResourceHidden
	}

	comments, total, err := s.comments.ListByPost(repository.CommentListFilter{
		Page:     page,
		PageSize: pageSize,
		PostID:   post.ID,
	})
	if err != nil {
		return nil, 0, err
	}
	for i := range comments {
		if !access.BodyVisible(actor, commentResource(&comments[i], post)) {
			comments[i].Body = constants.DeletedCommentBody
		}
	}
	return comments, total, nil
}

// Create 创建评论。父评论必须属于同一篇文章，该校验先于权限裁决。
func (s *CommentService) Create(actor access.Actor, postID uint, body string, parentID *uint) (*models.Comment, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, ErrInvalidBody
	}

	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(*parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != post.ID {
			return nil, ErrInvalidParent
		}
	}

	if !access.Visible(actor, postResource(post)) {
		return nil, ErrResourceHidden
	}
	prospect := access.Resource{
		Kind:            access.KindComment,
		AuthorID:        actor.ID,
		PostAuthorID:    post.AuthorID,
		PostPublished:   post.IsPublished(),
		PostSoftDeleted: post.IsDeleted(),
	}
	decision, err := access.Evaluate(actor, access.ActionCreate, prospect)
	if err != nil {
		return nil, err
	}
	if err := decisionError(decision); err != nil {
		return nil, err
	}

	now := time.Now()
	comment := models.Comment{
		PostID:    post.ID,
		AuthorID:  actor.ID,
		Body:      trimmed,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(&comment); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueCommentNotify(context.Background(), comment.ID, post.ID); err != nil {
			logger.Warnw("comment_notify_enqueue_failed",
				"comment_id", comment.ID,
				"post_id", post.ID,
				"error", err,
			)
		}
	}
	return &comment, nil
}

// Update 更新评论正文
func (s *CommentService) Update(actor access.Actor, id uint, body string) (*models.Comment, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, ErrInvalidBody
	}

	comment, post, err := s.getWithPost(id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, access.ActionUpdate, commentResource(comment, post)); err != nil {
		return nil, err
	}

	comment.Body = trimmed
	comment.UpdatedAt = time.Now()
	if err := s.comments.Update(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete 软删除评论，重复删除为幂等空操作
func (s *CommentService) Delete(actor access.Actor, id uint) error {
	comment, post, err := s.getWithPost(id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, access.ActionDelete, commentResource(comment, post)); err != nil {
		return err
	}
	if comment.IsDeleted() {
		return nil
	}
	return s.comments.SoftDelete(id, time.Now())
}

func (s *CommentService) getWithPost(id uint) (*models.Comment, *models.Post, error) {
	comment, err := s.comments.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if comment == nil {
		return nil, nil, ErrNotFound
	}
	post, err := s.posts.GetByID(comment.PostID)
	if err != nil {
		return nil, nil, err
	}
	if post == nil {
		return nil, nil, ErrNotFound
	}
	return comment, post, nil
}

func (s *CommentService) authorize(actor access.Actor, action access.Action, res access.Resource) error {
	if !access.Visible(actor, res) {
		return ErrResourceHidden
	}
	decision, err := access.Evaluate(actor, action, res)
	if err != nil {
		return err
	}
	return decisionError(decision)
}

// commentResource 构建评论的评估器资源快照，需同时携带所属文章快照
func commentResource(comment *models.Comment, post *models.Post) access.Resource {
	return access.Resource{
		Kind:            access.KindComment,
		AuthorID:        comment.AuthorID,
		SoftDeleted:     comment.IsDeleted(),
		PostAuthorID:    post.AuthorID,
		PostPublished:   post.IsPublished(),
		PostSoftDeleted: post.IsDeleted(),
	}
}
