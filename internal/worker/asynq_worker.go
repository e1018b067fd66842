package worker

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/haatbazar/internal/logger"
	"github.com/haatbazar/internal/provider"
	"github.com/haatbazar/internal/queue"
)

// Consumer 后台任务消费者
type Consumer struct {
	container *provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{container: c}
}

// Register 注册任务处理器
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || c.container == nil {
		logger.Debugw("worker_register_skipped", "reason", "nil container")
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if task == nil {
		return nil
	}

	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("order_timeout_task_payload_invalid", "error", err)
		return nil
	}
	if payload.OrderID == 0 {
		logger.Debugw("order_timeout_task_skipped", "reason", "empty order id")
		return nil
	}
	if c.container.OrderService == nil {
		logger.Warnw("order_timeout_task_skipped", "reason", "order service unavailable", "order_id", payload.OrderID)
		return nil
	}

	if err := c.container.OrderService.HandleTimeoutCancel(payload.OrderID); err != nil {
		logger.Errorw("order_timeout_task_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
