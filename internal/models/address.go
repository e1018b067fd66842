package models

import (
	"time"

	"gorm.io/gorm"
)

// Address 收货地址表
type Address struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                  // 主键
	CustomerID uint           `gorm:"index;not null" json:"customer_id"`                     // 顾客ID
	Line1      string         `gorm:"type:varchar(200);not null" json:"line1"`               // 地址行一
	Line2      string         `gorm:"type:varchar(200)" json:"line2"`                        // 地址行二
	City       string         `gorm:"type:varchar(100);not null" json:"city"`                // 城市
	Division   string         `gorm:"type:varchar(100)" json:"division"`                     // 行政区（大区）
	PostalCode string         `gorm:"type:varchar(20)" json:"postal_code"`                   // 邮编
	Country    string         `gorm:"type:varchar(100);default:'Bangladesh'" json:"country"` // 国家
	IsDefault  bool           `gorm:"not null;default:false;index" json:"is_default"`        // 是否默认地址
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}
