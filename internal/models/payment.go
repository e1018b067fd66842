package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 支付记录
type Payment struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID         uint           `gorm:"uniqueIndex;not null" json:"order_id"`                    // 订单ID（一单一笔）
	MethodID        *uint          `gorm:"index" json:"method_id,omitempty"`                        // 顾客收款方式ID
	MethodType      string         `gorm:"type:varchar(30);not null" json:"method_type"`            // 支付方式类型
	Amount          Money          `gorm:"type:decimal(20,2);not null" json:"amount"`               // 支付金额
	Currency        string         `gorm:"type:varchar(10);not null;default:'BDT'" json:"currency"` // 币种
	Status          string         `gorm:"index;not null" json:"status"`                            // 支付状态
	SessionKey      string         `gorm:"index" json:"session_key,omitempty"`                      // 网关会话标识
	ProviderRef     string         `gorm:"index" json:"provider_ref,omitempty"`                     // 网关流水号（val_id）
	ProviderPayload JSON           `gorm:"type:json" json:"provider_payload,omitempty"`             // 网关回调数据快照
	PaidAt          *time.Time     `gorm:"index" json:"paid_at"`                                    // 支付时间
	CallbackAt      *time.Time     `gorm:"index" json:"callback_at"`                                // 回调时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}

// PaymentMethod 顾客收款方式
type PaymentMethod struct {
	ID         uint           `gorm:"primarykey" json:"id"`                     // 主键
	CustomerID uint           `gorm:"index;not null" json:"customer_id"`        // 顾客ID
	Type       string         `gorm:"type:varchar(30);not null" json:"type"`    // 类型（credit_card/debit_card/mobile_banking/cash_on_delivery）
	AccountNo  string         `gorm:"type:varchar(50)" json:"account_no"`       // 账号（脱敏存储）
	IsDefault  bool           `gorm:"not null;default:false" json:"is_default"` // 是否默认
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间
}

// TableName 指定表名
func (PaymentMethod) TableName() string {
	return "payment_methods"
}
