package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Code         string         `gorm:"uniqueIndex;not null" json:"code"`                          // 优惠码
	Type         string         `gorm:"not null" json:"type"`                                      // 类型（fixed/percent）
	Value        Money          `gorm:"type:decimal(20,2);not null" json:"value"`                  // 数值（固定金额或百分比）
	MinAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_amount"`   // 使用门槛
	MaxDiscount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"` // 最大优惠金额（percent 类型生效）
	UsageLimit   int            `gorm:"not null;default:0" json:"usage_limit"`                     // 总使用上限（0 表示不限制）
	UsedCount    int            `gorm:"not null;default:0" json:"used_count"`                      // 已使用次数
	PerUserLimit int            `gorm:"not null;default:0" json:"per_user_limit"`                  // 每人使用上限（0 表示不限制）
	ValidFrom    time.Time      `gorm:"index;not null" json:"valid_from"`                          // 生效时间
	ValidTo      time.Time      `gorm:"index;not null" json:"valid_to"`                            // 失效时间
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`                    // 是否启用
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// CouponRedeem 优惠券核销记录
type CouponRedeem struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	CouponID       uint      `gorm:"not null;uniqueIndex:idx_coupon_order" json:"coupon_id"`       // 优惠券ID
	OrderID        uint      `gorm:"not null;uniqueIndex:idx_coupon_order;index" json:"order_id"`  // 订单ID
	CustomerID     uint      `gorm:"index;not null" json:"customer_id"`                            // 顾客ID
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (CouponRedeem) TableName() string {
	return "coupon_redeems"
}
