package models

import (
	"time"
)

// ShippingInfo 订单配送信息（一单一条）
type ShippingInfo struct {
	ID                uint       `gorm:"primarykey" json:"id"`                       // 主键
	OrderID           uint       `gorm:"uniqueIndex;not null" json:"order_id"`       // 订单ID
	CourierService    string     `gorm:"type:varchar(100)" json:"courier_service"`   // 快递公司
	TrackingID        string     `gorm:"type:varchar(100);index" json:"tracking_id"` // 运单号
	EstimatedDelivery *time.Time `json:"estimated_delivery"`                         // 预计送达时间
	Notes             string     `gorm:"type:text" json:"notes"`                     // 备注
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt         time.Time  `json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (ShippingInfo) TableName() string {
	return "shipping_infos"
}
