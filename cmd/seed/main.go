package main

import (
	"time"

	"github.com/mowen-blog/internal/config"
	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/logger"
	"github.com/mowen-blog/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认超级管理员
	if err := models.InitDefaultSuperAdmin("admin@mowen.local", "admin123"); err != nil {
		stdLog.Printf("Failed to init default super admin: %v", err)
	}

	// 演示用户（三种角色各一）
	users := []struct {
		Email       string
		Password    string
		DisplayName string
		Role        string
	}{
		{Email: "editor@mowen.local", Password: "editor123", DisplayName: "示例编辑", Role: constants.RoleEditor},
		{Email: "writer@mowen.local", Password: "writer123", DisplayName: "第二编辑", Role: constants.RoleEditor},
		{Email: "reader@mowen.local", Password: "reader123", DisplayName: "示例读者", Role: constants.RoleSubscriber},
	}
	userIDs := map[string]uint{}
	for _, item := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", item.Email).First(&existing).Error; err == nil {
			stdLog.Printf("User already exists: %s", item.Email)
			userIDs[item.Email] = existing.ID
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(item.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash password: %v", err)
		}
		user := models.User{
			Email:        item.Email,
			PasswordHash: string(hash),
			DisplayName:  item.DisplayName,
			Role:         item.Role,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create user %s: %v", item.Email, err)
			continue
		}
		stdLog.Printf("Created user: %s (%s)", item.Email, item.Role)
		userIDs[item.Email] = user.ID
	}
	editorID := userIDs["editor@mowen.local"]
	readerID := userIDs["reader@mowen.local"]

	// 演示分类
	categories := []models.Category{
		{Name: "技术", Slug: "tech", Description: "工程与技术文章"},
		{Name: "生活", Slug: "life", Description: "生活随笔"},
		{Name: "公告", Slug: "announcements", Description: "站点公告"},
	}
	categoryIDs := map[string]uint{}
	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Category already exists: %s", cat.Slug)
			categoryIDs[cat.Slug] = existing.ID
			continue
		}
		if err := models.DB.Create(&cat).Error; err != nil {
			stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			continue
		}
		stdLog.Printf("Created category: %s", cat.Slug)
		categoryIDs[cat.Slug] = cat.ID
	}

	// 演示文章：一篇已发布、一篇草稿
	now := time.Now()
	posts := []models.Post{
		{
			Title:            "欢迎来到墨问",
			Slug:             "hello-mowen",
			Content:          "这是第一篇演示文章，已对所有访客可见。",
			Status:           constants.PostStatusPublished,
			AuthorID:         editorID,
			PublishedAt:      &now,
			FirstPublishedAt: &now,
		},
		{
			Title:    "草稿箱里的想法",
			Slug:     "draft-ideas",
			Content:  "这篇还在打磨，只有作者和超管能看到。",
			Status:   constants.PostStatusDraft,
			AuthorID: editorID,
		},
	}
	postIDs := map[string]uint{}
	for _, post := range posts {
		var existing models.Post
		if err := models.DB.Where("slug = ?", post.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Post already exists: %s", post.Slug)
			postIDs[post.Slug] = existing.ID
			continue
		}
		if err := models.DB.Create(&post).Error; err != nil {
			stdLog.Printf("Failed to create post %s: %v", post.Slug, err)
			continue
		}
		if techID := categoryIDs["tech"]; techID != 0 {
			if err := models.DB.Model(&post).Association("Categories").Append(&models.Category{ID: techID}); err != nil {
				stdLog.Printf("Failed to attach category to %s: %v", post.Slug, err)
			}
		}
		stdLog.Printf("Created post: %s", post.Slug)
		postIDs[post.Slug] = post.ID
	}

	// 演示评论
	if postID := postIDs["hello-mowen"]; postID != 0 && readerID != 0 {
		var count int64
		models.DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count)
		if count == 0 {
			comment := models.Comment{
				PostID:   postID,
				AuthorID: readerID,
				Body:     "期待更多内容！",
			}
			if err := models.DB.Create(&comment).Error; err != nil {
				stdLog.Printf("Failed to create comment: %v", err)
			} else {
				reply := models.Comment{
					PostID:   postID,
					AuthorID: editorID,
					Body:     "感谢支持，敬请期待。",
					ParentID: &comment.ID,
				}
				if err := models.DB.Create(&reply).Error; err != nil {
					stdLog.Printf("Failed to create reply: %v", err)
				}
				stdLog.Printf("Created demo comments on hello-mowen")
			}
		}
	}

	stdLog.Printf("Seed completed")
}
