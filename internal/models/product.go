package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`                               // 主键
	Name        string         `gorm:"type:varchar(200);not null;index" json:"name"`       // 商品名称
	Description string         `gorm:"type:text" json:"description"`                       // 商品描述
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	Stock       int            `gorm:"not null;default:0" json:"stock"`                    // 库存数量
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url"`                 // 商品图片
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                         // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间

	// 标签（由仓储层联表填充，不落库）
	Tags []Tag `gorm:"-" json:"tags,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
