package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mowen-blog/internal/access"
	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/models"
	"github.com/mowen-blog/internal/provider"
	"github.com/mowen-blog/internal/repository"
	"github.com/mowen-blog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPostHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:post_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Post{}, &models.Comment{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	container := &provider.Container{
		PostService: service.NewPostService(repository.NewPostRepository(db), repository.NewCategoryRepository(db)),
	}
	return New(container), db
}

func seedHandlerUser(t *testing.T, db *gorm.DB, id uint, role string) {
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

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, string) {
	t.Helper()
	var resp struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode, resp.Msg
}

func TestUpdatePostForbiddenStatus(t *testing.T) {
	h, db := setupPostHandlerTest(t)
	seedHandlerUser(t, db, 1, constants.RoleEditor)
	seedHandlerUser(t, db, 2, constants.RoleSubscriber)
	seedHandlerUser(t, db, 3, constants.RoleEditor)

	now := time.Now()
	post := models.Post{
		ID:               1,
		Title:            "公开文章",
		Slug:             "public-post",
		Status:           constants.PostStatusPublished,
		AuthorID:         1,
		PublishedAt:      &now,
		FirstPublishedAt: &now,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	patchAs := func(actor access.Actor) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: "1"}}
		c.Request = httptest.NewRequest(http.MethodPatch, "/api/v1/posts/1", strings.NewReader(`{"title":"改标题"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Set("actor", actor)
		h.UpdatePost(c)
		return w
	}

	// 订阅者对可见文章的修改请求：角色不具备该动作，HTTP 403
	w := patchAs(access.Actor{ID: 2, Role: access.RoleSubscriber})
	if w.Code != http.StatusForbidden {
		t.Fatalf("subscriber patch status want 403 got %d body=%s", w.Code, w.Body.String())
	}
	if code, _ := decodeEnvelope(t, w); code != 403 {
		t.Fatalf("subscriber patch status_code want 403 got %d", code)
	}

	// 非属主编辑对可见文章的修改请求：同样 403
	w = patchAs(access.Actor{ID: 3, Role: access.RoleEditor})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner editor patch status want 403 got %d body=%s", w.Code, w.Body.String())
	}

	// 属主可以正常修改
	w = patchAs(access.Actor{ID: 1, Role: access.RoleEditor})
	if w.Code != http.StatusOK {
		t.Fatalf("owner patch status want 200 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestGetPostHiddenLooksLikeMissing(t *testing.T) {
	h, db := setupPostHandlerTest(t)
	seedHandlerUser(t, db, 1, constants.RoleEditor)

	draft := models.Post{
		ID:       1,
		Title:    "未发布草稿",
		Slug:     "secret-draft",
		Status:   constants.PostStatusDraft,
		AuthorID: 1,
	}
	if err := db.Create(&draft).Error; err != nil {
		t.Fatalf("create post failed: %v", err)
	}

	getAsAnonymous := func(slug string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "slug", Value: slug}}
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/posts/"+slug, nil)
		h.GetPost(c)
		return w
	}

	hidden := getAsAnonymous("secret-draft")
	missing := getAsAnonymous("no-such-post")

	if hidden.Code != http.StatusNotFound {
		t.Fatalf("hidden draft status want 404 got %d body=%s", hidden.Code, hidden.Body.String())
	}
	if missing.Code != http.StatusNotFound {
		t.Fatalf("missing slug status want 404 got %d body=%s", missing.Code, missing.Body.String())
	}

	// 对匿名访客而言，隐藏与不存在必须不可区分
	hiddenCode, hiddenMsg := decodeEnvelope(t, hidden)
	missingCode, missingMsg := decodeEnvelope(t, missing)
	if hiddenCode != missingCode || hiddenMsg != missingMsg {
		t.Fatalf("hidden draft leaks existence: (%d, %q) vs (%d, %q)", hiddenCode, hiddenMsg, missingCode, missingMsg)
	}

	// 作者本人仍能读取自己的草稿
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "slug", Value: "secret-draft"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/posts/secret-draft", nil)
	c.Set("actor", access.Actor{ID: 1, Role: access.RoleEditor})
	h.GetPost(c)
	if w.Code != http.StatusOK {
		t.Fatalf("author read own draft status want 200 got %d body=%s", w.Code, w.Body.String())
	}
}
