package admin

import "github.com/mowen-blog/internal/provider"

// Handler 后台接口处理器入口，路由层保证仅超管可达
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
