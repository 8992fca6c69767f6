package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mowen-blog/internal/access"
	"github.com/mowen-blog/internal/config"
	"github.com/mowen-blog/internal/constants"
	"github.com/mowen-blog/internal/models"
	"github.com/mowen-blog/internal/repository"
	"github.com/mowen-blog/internal/service"

	"github.com/gin-gonic/gin"
)

type stubUserRepo struct {
	users map[uint]*models.User
}

func (r *stubUserRepo) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (r *stubUserRepo) GetByID(id uint) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (r *stubUserRepo) GetByEmail(email string) (*models.User, error) { return nil, nil }
func (r *stubUserRepo) Create(user *models.User) error                { return nil }
func (r *stubUserRepo) Update(user *models.User) error                { return nil }
func (r *stubUserRepo) Delete(id uint) error                          { return nil }

func issueTestToken(t *testing.T, secret string, user *models.User) string {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.SecretKey = secret
	cfg.JWT.ExpireHours = 1
	svc := service.NewAuthService(cfg, nil)
	token, _, err := svc.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	return token
}

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestUserJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(UserJWTAuthMiddleware("", nil))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	secret := "router-test-secret"
	user := &models.User{
		ID:           7,
		Email:        "editor@example.com",
		Role:         constants.RoleEditor,
		Status:       constants.UserStatusActive,
		TokenVersion: 3,
	}
	repo := &stubUserRepo{users: map[uint]*models.User{user.ID: user}}

	r := gin.New()
	r.Use(UserJWTAuthMiddleware(secret, repo))
	r.GET("/me", func(c *gin.Context) {
		value, _ := c.Get("actor")
		actor, _ := value.(access.Actor)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.ID, "role": actor.Role.String()})
	})

	token := issueTestToken(t, secret, user)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token status want 200 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		UserID uint   `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.UserID != user.ID || resp.Role != constants.RoleEditor {
		t.Fatalf("actor want (%d, %s) got (%d, %s)", user.ID, constants.RoleEditor, resp.UserID, resp.Role)
	}

	// 缺失认证头
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header status want 401 got %d", w.Code)
	}

	// 篡改 token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token+"x")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("tampered token status want 401 got %d", w.Code)
	}

	// Token 版本提升后旧 token 失效
	user.TokenVersion = 4
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token status want 401 got %d", w.Code)
	}

	// 禁用账号被拒绝
	user.TokenVersion = 3
	user.Status = constants.UserStatusDisabled
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("disabled user status want 401 got %d", w.Code)
	}
}

func TestOptionalUserJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	secret := "router-test-secret"
	user := &models.User{
		ID:           9,
		Email:        "sub@example.com",
		Role:         constants.RoleSubscriber,
		Status:       constants.UserStatusActive,
		TokenVersion: 1,
	}
	repo := &stubUserRepo{users: map[uint]*models.User{user.ID: user}}

	r := gin.New()
	r.Use(OptionalUserJWTAuthMiddleware(secret, repo))
	r.GET("/posts", func(c *gin.Context) {
		value, _ := c.Get("actor")
		actor, _ := value.(access.Actor)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.ID})
	})

	// 匿名放行
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user_id":0`) {
		t.Fatalf("anonymous actor id want 0, body=%s", w.Body.String())
	}

	// 携带有效 token 识别身份
	token := issueTestToken(t, secret, user)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("token status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user_id":9`) {
		t.Fatalf("actor id want 9, body=%s", w.Body.String())
	}

	// 携带了无效 token 不降级为匿名
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token status want 401 got %d", w.Code)
	}
}

func TestRequireSuperAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	buildRouter := func(actor *access.Actor) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if actor != nil {
				c.Set("actor", *actor)
			}
			c.Next()
		})
		r.Use(RequireSuperAdmin())
		r.GET("/admin/users", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return r
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	buildRouter(nil).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing actor status want 401 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	buildRouter(&access.Actor{ID: 2, Role: access.RoleEditor}).ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("editor status want 403 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	buildRouter(&access.Actor{ID: 1, Role: access.RoleSuperAdmin}).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("super admin status want 200 got %d", w.Code)
	}
}

func TestIsIssuedAfterInvalidBefore(t *testing.T) {
	now := time.Now()
	if !isIssuedAfterInvalidBefore(nil, nil) {
		t.Fatalf("nil invalid-before should pass")
	}
	if isIssuedAfterInvalidBefore(nil, &now) {
		t.Fatalf("missing issued-at with invalid-before should fail")
	}
}
