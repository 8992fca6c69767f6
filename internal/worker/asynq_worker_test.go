package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mowen-blog/internal/config"
	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/models"
	"github.com/mowen-blog/internal/provider"
	"github.com/mowen-blog/internal/queue"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/mowen-blog/internal/repository"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Post{}, &models.Comment{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	container := &provider.Container{
		UserRepo:    repository.NewUserRepository(db),
		PostRepo:    repository.NewPostRepository(db),
		CommentRepo: repository.NewCommentRepository(db),
	}
	return NewConsumer(container), db
}

func seedWorkerUser(t *testing.T, db *gorm.DB, id uint, role string) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("user_%d@example.com", id),
		PasswordHash: "hash",
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func newCommentNotifyTask(t *testing.T, commentID, postID uint) *asynq.Task {
	t.Helper()
	task, err := queue.NewCommentNotifyTask(queue.CommentNotifyPayload{CommentID: commentID, PostID: postID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	return task
}

func TestHandleCommentNotify(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	seedWorkerUser(t, db, 1, constants.RoleEditor)
	seedWorkerUser(t, db, 2, constants.RoleSubscriber)

	post := models.Post{
		ID:       10,
		Title:    "文章",
		Slug:     "post-a",
		AuthorID: 1,
		Status:   constants.PostStatusPublished,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	comment := models.Comment{
		ID:       20,
		PostID:   post.ID,
		AuthorID: 2,
		Body:     "评论",
	}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("create comment failed: %v", err)
	}

	if err := consumer.handleCommentNotify(context.Background(), newCommentNotifyTask(t, comment.ID, post.ID)); err != nil {
		t.Fatalf("handle notify failed: %v", err)
	}
}

func TestHandleCommentNotifySkipsGoneOrSelf(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	seedWorkerUser(t, db, 1, constants.RoleEditor)

	// 评论不存在：跳过且不报错
	if err := consumer.handleCommentNotify(context.Background(), newCommentNotifyTask(t, 999, 1)); err != nil {
		t.Fatalf("missing comment should be skipped, got %v", err)
	}

	// 作者自评：跳过
	post := models.Post{ID: 11, Title: "文章", Slug: "post-b", AuthorID: 1, Status: constants.PostStatusPublished}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post failed: %v", err)
	}
	comment := models.Comment{ID: 21, PostID: post.ID, AuthorID: 1, Body: "自评"}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("create comment failed: %v", err)
	}
	if err := consumer.handleCommentNotify(context.Background(), newCommentNotifyTask(t, comment.ID, post.ID)); err != nil {
		t.Fatalf("self comment should be skipped, got %v", err)
	}

	// 非法载荷：透出错误便于重试排查
	bad := asynq.NewTask(queue.TaskCommentNotify, []byte("not-json"))
	if err := consumer.handleCommentNotify(context.Background(), bad); err == nil {
		t.Fatalf("broken payload should fail")
	}
	var payload queue.CommentNotifyPayload
	if err := json.Unmarshal([]byte(`{"comment_id":0}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	task, err := queue.NewCommentNotifyTask(payload)
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleCommentNotify(context.Background(), task); err != nil {
		t.Fatalf("zero comment id should be skipped, got %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	seedWorkerUser(t, db, 1, constants.RoleEditor)

	now := time.Now()
	old := now.Add(-10 * 24 * time.Hour)
	recent := now.Add(-1 * 24 * time.Hour)

	posts := []models.Post{
		{ID: 1, Title: "过期", Slug: "old-post", AuthorID: 1, Status: constants.PostStatusDraft, DeletedAt: &old},
		{ID: 2, Title: "未过期", Slug: "recent-post", AuthorID: 1, Status: constants.PostStatusDraft, DeletedAt: &recent},
		{ID: 3, Title: "存活", Slug: "live-post", AuthorID: 1, Status: constants.PostStatusPublished},
	}
	for i := range posts {
		if err := db.Create(&posts[i]).Error; err != nil {
			t.Fatalf("create post failed: %v", err)
		}
	}
	comments := []models.Comment{
		{ID: 1, PostID: 3, AuthorID: 1, Body: "过期评论", DeletedAt: &old},
		{ID: 2, PostID: 3, AuthorID: 1, Body: "存活评论"},
	}
	for i := range comments {
		if err := db.Create(&comments[i]).Error; err != nil {
			t.Fatalf("create comment failed: %v", err)
		}
	}

	svc := &Service{
		consumer: consumer,
		content: config.ContentConfig{
			PurgeRetentionDays:   7,
			PurgeIntervalMinutes: 60,
		},
	}
	svc.purgeExpired(now)

	var postCount int64
	if err := db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		t.Fatalf("count posts failed: %v", err)
	}
	if postCount != 2 {
		t.Fatalf("post count want 2 got %d", postCount)
	}
	var commentCount int64
	if err := db.Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		t.Fatalf("count comments failed: %v", err)
	}
	if commentCount != 1 {
		t.Fatalf("comment count want 1 got %d", commentCount)
	}
}
