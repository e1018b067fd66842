package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号（对外安全标识）
	CustomerID     uint           `gorm:"index;not null" json:"customer_id"`                            // 顾客ID
	AddressID      uint           `gorm:"not null" json:"address_id"`                                   // 收货地址ID
	CouponID       *uint          `gorm:"index" json:"coupon_id,omitempty"`                             // 优惠券ID
	Status         string         `gorm:"index;not null" json:"status"`                                 // 订单状态
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 原始金额
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at"`                                      // 支付过期时间
	PaidAt         *time.Time     `gorm:"index" json:"paid_at"`                                         // 支付时间
	CanceledAt     *time.Time     `gorm:"index" json:"canceled_at"`                                     // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	// 关联
	Items       []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`        // 订单项
	StatusTrail []OrderStatus `gorm:"foreignKey:OrderID" json:"status_trail,omitempty"` // 状态轨迹
	Payment     *Payment      `gorm:"foreignKey:OrderID" json:"payment,omitempty"`      // 支付记录
	Shipping    *ShippingInfo `gorm:"foreignKey:OrderID" json:"shipping,omitempty"`     // 配送信息
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项表（下单时的商品快照）
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                           // 订单ID
	ProductID   uint      `gorm:"index;not null" json:"product_id"`                         // 商品ID
	ProductName string    `gorm:"type:varchar(200);not null" json:"product_name"`           // 商品名称快照
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 下单时单价
	Quantity    int       `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderStatus 订单状态轨迹表（只追加，不修改）
type OrderStatus struct {
	ID        uint      `gorm:"primarykey" json:"id"`               // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`     // 订单ID
	AdminID   uint      `gorm:"not null;default:0" json:"admin_id"` // 操作管理员ID（0 表示系统触发）
	Status    string    `gorm:"not null" json:"status"`             // 进入的状态
	CreatedAt time.Time `gorm:"index" json:"created_at"`            // 流转时间
}

// TableName 指定表名
func (OrderStatus) TableName() string {
	return "order_statuses"
}
