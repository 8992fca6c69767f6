package worker

import (
	"context"
	"errors"
	"time"

	"github.com/mowen-blog/internal/config"
	"github.com/mowen-blog/internal/logger"
	"github.com/mowen-blog/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	content  config.ContentConfig
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
		content:  cfg.Content,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.content.PurgeRetentionDays > 0 {
		go s.runPurgeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runPurgeLoop 定期物理清除超过保留期的软删除内容
func (s *Service) runPurgeLoop(ctx context.Context) {
	if s == nil || s.consumer == nil {
		return
	}
	interval := time.Duration(s.content.PurgeIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	runOnce := func() {
		s.purgeExpired(time.Now())
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) purgeExpired(now time.Time) {
	retention := time.Duration(s.content.PurgeRetentionDays) * 24 * time.Hour
	if retention <= 0 {
		return
	}
	cutoff := now.Add(-retention)

	purgedPosts, err := s.consumer.PostRepo.PurgeDeletedBefore(cutoff)
	if err != nil {
		logger.Warnw("worker_purge_posts_failed", "cutoff", cutoff, "error", err)
	}
	purgedComments, err := s.consumer.CommentRepo.PurgeDeletedBefore(cutoff)
	if err != nil {
		logger.Warnw("worker_purge_comments_failed", "cutoff", cutoff, "error", err)
	}
	if purgedPosts > 0 || purgedComments > 0 {
		logger.Infow("worker_purge_completed",
			"cutoff", cutoff,
			"purged_posts", purgedPosts,
			"purged_comments", purgedComments,
		)
	}
}
