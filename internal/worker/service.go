package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/haatbazar/internal/config"
	"github.com/haatbazar/internal/queue"
)

// Service asynq 后台任务服务
type Service struct {
	name   string
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建后台任务服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("nil consumer")
	}

	redisOpt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(redisOpt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	return &Service{
		name:   "worker",
		server: server,
		mux:    mux,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return s.name
}

// Start 启动消费循环
func (s *Service) Start(_ context.Context) error {
	return s.server.Run(s.mux)
}

// Stop 停止消费循环
func (s *Service) Stop(_ context.Context) error {
	s.server.Shutdown()
	return nil
}
