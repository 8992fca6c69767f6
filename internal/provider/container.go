package provider

import (
	"github.com/mowen-blog/internal/cache"
	"github.com/mowen-blog/internal/config"
	"github.com/mowen-blog/internal/logger"
	"github.com/mowen-blog/internal/models"
	"github.com/mowen-blog/internal/queue"
	"github.com/mowen-blog/internal/repository"
	"github.com/mowen-blog/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo     repository.UserRepository
	PostRepo     repository.PostRepository
	CommentRepo  repository.CommentRepository
	CategoryRepo repository.CategoryRepository

	// Services
	AuthService     *service.AuthService
	UserService     *service.UserService
	PostService     *service.PostService
	CommentService  *service.CommentService
	CategoryService *service.CategoryService
	CaptchaService  *service.CaptchaService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
	c.CommentRepo = repository.NewCommentRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.UserService = service.NewUserService(c.Config, c.UserRepo)
	c.PostService = service.NewPostService(c.PostRepo, c.CategoryRepo)

	var notifier service.CommentNotifier
	if c.QueueClient.Enabled() {
		notifier = c.QueueClient
	}
	c.CommentService = service.NewCommentService(c.CommentRepo, c.PostRepo, notifier)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
}
