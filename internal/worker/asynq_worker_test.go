package worker

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/haatbazar/internal/queue"
)

func TestHandleOrderTimeoutCancelInvalidPayload(t *testing.T) {
	consumer := NewConsumer(nil)

	task := asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte("not-json"))
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("expected nil error for invalid payload, got %v", err)
	}
}

func TestHandleOrderTimeoutCancelEmptyOrderID(t *testing.T) {
	consumer := NewConsumer(nil)

	task := asynq.NewTask(queue.TaskOrderTimeoutCancel, []byte(`{"order_id":0}`))
	if err := consumer.handleOrderTimeoutCancel(context.Background(), task); err != nil {
		t.Fatalf("expected nil error for empty order id, got %v", err)
	}
}

func TestRegisterWithNilContainer(t *testing.T) {
	consumer := NewConsumer(nil)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
}
