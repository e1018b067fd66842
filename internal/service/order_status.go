package service

import (
	"time"

	"github.com/haatbazar/internal/constants"
	"github.com/haatbazar/internal/models"
	"github.com/haatbazar/internal/repository"
)

// 订单状态机：pending -> paid -> shipped -> delivered，pending/paid 可取消
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusPaid:      true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPaid: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
}

// CanTransition 判断状态流转是否合法
func CanTransition(from, to string) bool {
	return allowedTransitions[from][to]
}

// appendStatusTrail 订单进入新状态时追加轨迹记录
func appendStatusTrail(orderRepo *repository.GormOrderRepository, orderID uint, adminID uint, status string, at time.Time) error {
	return orderRepo.AppendStatusTrail(&models.OrderStatus{
		OrderID:   orderID,
		AdminID:   adminID,
		Status:    status,
		CreatedAt: at,
	})
}
