package models

import (
	"time"
)

// DeliveryAssignment 配送指派记录
type DeliveryAssignment struct {
	ID                uint       `gorm:"primarykey" json:"id"`                      // 主键
	AssignmentNo      string     `gorm:"uniqueIndex;not null" json:"assignment_no"` // 指派编号（对外安全标识）
	OrderID           uint       `gorm:"index;not null" json:"order_id"`            // 订单ID
	RiderID           uint       `gorm:"index;not null" json:"rider_id"`            // 骑手ID
	Status            string     `gorm:"index;not null" json:"status"`              // 指派状态（assigned/accepted/in_transit/rejected/delivered）
	AssignedAt        time.Time  `gorm:"index" json:"assigned_at"`                  // 指派时间
	AcceptedAt        *time.Time `json:"accepted_at"`                               // 接单时间
	RejectedAt        *time.Time `json:"rejected_at"`                               // 拒单时间
	RejectionReason   string     `json:"rejection_reason"`                          // 拒单原因
	EstimatedDelivery *time.Time `json:"estimated_delivery"`                        // 预计送达时间
	DeliveredAt       *time.Time `json:"delivered_at"`                              // 实际送达时间
	CreatedAt         time.Time  `json:"created_at"`                                // 创建时间
	UpdatedAt         time.Time  `json:"updated_at"`                                // 更新时间

	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"` // 关联订单
	Rider *Rider `gorm:"foreignKey:RiderID" json:"rider,omitempty"` // 关联骑手
}

// TableName 指定表名
func (DeliveryAssignment) TableName() string {
	return "delivery_assignments"
}
