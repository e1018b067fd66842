package models

import (
	"time"

	"gorm.io/gorm"
)

// Review 商品评价表（每个顾客对同一商品仅保留一条）
type Review struct {
	ID         uint           `gorm:"primarykey" json:"id"`                                                     // 主键
	CustomerID uint           `gorm:"not null;uniqueIndex:idx_review_customer_product" json:"customer_id"`      // 顾客ID
	ProductID  uint           `gorm:"not null;uniqueIndex:idx_review_customer_product;index" json:"product_id"` // 商品ID
	Rating     int            `gorm:"not null" json:"rating"`                                                   // 评分（1-5）
	Comment    string         `gorm:"type:text" json:"comment"`                                                 // 评价内容
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                                                  // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                                               // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                                           // 软删除时间
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}
