package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPaginationTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:pagination_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestApplyPaginationOffsets(t *testing.T) {
	db := setupPaginationTest(t)
	repo := NewUserRepository(db)

	// 创建 5 个用户，created_at 严格递减排序下 user_5 最新
	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 5; i++ {
		user := models.User{
			ID:           uint(i),
			Email:        fmt.Sprintf("user_%d@example.com", i),
			PasswordHash: "hash",
			Role:         constants.RoleSubscriber,
			Status:       constants.UserStatusActive,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	// 第二页应跳过最新两条
	users, total, err := repo.List(UserListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("total want 5 got %d", total)
	}
	if len(users) != 2 {
		t.Fatalf("page 2 length want 2 got %d", len(users))
	}
	if users[0].Email != "user_3@example.com" || users[1].Email != "user_2@example.com" {
		t.Fatalf("page 2 want user_3,user_2 got %s,%s", users[0].Email, users[1].Email)
	}

	// 末页只剩一条
	users, _, err = repo.List(UserListFilter{Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 1 || users[0].Email != "user_1@example.com" {
		t.Fatalf("page 3 want [user_1] got %v", users)
	}

	// 非法页码按第一页处理
	users, _, err = repo.List(UserListFilter{Page: 0, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 2 || users[0].Email != "user_5@example.com" {
		t.Fatalf("page 0 should behave as page 1, got %v", users)
	}

	// 页大小为 0 时不分页（调用方已归一化）
	users, _, err = repo.List(UserListFilter{Page: 1, PageSize: 0})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 5 {
		t.Fatalf("unpaginated length want 5 got %d", len(users))
	}

	// 越界页返回空集而非错误
	users, _, err = repo.List(UserListFilter{Page: 9, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("out-of-range page length want 0 got %d", len(users))
	}
}
