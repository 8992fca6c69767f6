package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mowen-blog/internal/logger"
	"github.com/mowen-blog/internal/provider"
	"github.com/mowen-blog/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCommentNotify, c.handleCommentNotify)
}

// handleCommentNotify 向文章作者投递新评论通知。
// 当前投递渠道为结构化日志，评论或文章已不存在时静默跳过。
func (c *Consumer) handleCommentNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_comment_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CommentNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_comment_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.CommentID == 0 {
		logger.Debugw("worker_comment_notify_skip_invalid_payload", "comment_id", payload.CommentID)
		return nil
	}

	comment, err := c.CommentRepo.GetByID(payload.CommentID)
	if err != nil {
		logger.Warnw("worker_comment_notify_fetch_comment_failed", "comment_id", payload.CommentID, "error", err)
		return err
	}
	if comment == nil || comment.IsDeleted() {
		logger.Debugw("worker_comment_notify_skip_comment_gone", "comment_id", payload.CommentID)
		return nil
	}

	postID := comment.PostID
	if postID == 0 {
		postID = payload.PostID
	}
	post, err := c.PostRepo.GetByID(postID)
	if err != nil {
		logger.Warnw("worker_comment_notify_fetch_post_failed", "comment_id", comment.ID, "post_id", postID, "error", err)
		return err
	}
	if post == nil || post.DeletedAt != nil {
		logger.Debugw("worker_comment_notify_skip_post_gone", "comment_id", comment.ID, "post_id", postID)
		return nil
	}

	// 作者自评不通知
	if comment.AuthorID == post.AuthorID {
		logger.Debugw("worker_comment_notify_skip_self_comment", "comment_id", comment.ID, "post_id", post.ID)
		return nil
	}

	author, err := c.UserRepo.GetByID(post.AuthorID)
	if err != nil {
		logger.Warnw("worker_comment_notify_fetch_author_failed", "comment_id", comment.ID, "author_id", post.AuthorID, "error", err)
		return err
	}
	if author == nil || strings.TrimSpace(author.Email) == "" {
		logger.Debugw("worker_comment_notify_skip_empty_receiver", "comment_id", comment.ID, "author_id", post.AuthorID)
		return nil
	}

	logger.Infow("comment_notify_delivered",
		"comment_id", comment.ID,
		"post_id", post.ID,
		"post_slug", post.Slug,
		"commenter_id", comment.AuthorID,
		"receiver_id", author.ID,
		"receiver_email", author.Email,
	)
	return nil
}
