package app

import (
	"fmt"
	"os"
	"time"

	"github.com/haatbazar/internal/config"
	"github.com/haatbazar/internal/logger"

	"go.uber.org/zap"
)

// 运行模式：api 只起 HTTP 服务，worker 只起队列消费者，all 同进程跑两者
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// withDefaults 补齐未显式指定的启动参数
func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultShutdownTimeout
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}

func validateMode(mode string) error {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
		return nil
	}
	return fmt.Errorf("unknown run mode %q (expected all, api or worker)", mode)
}
