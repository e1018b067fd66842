package models

import (
	"time"

	"gorm.io/gorm"
)

// Tag 标签表（支持父子层级）
type Tag struct {
	ID        uint           `gorm:"primarykey" json:"id"`                              // 主键
	Name      string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"` // 标签名（小写）
	ParentID  *uint          `gorm:"index" json:"parent_id,omitempty"`                  // 父标签ID
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}

// ProductTag 商品-标签关联表
type ProductTag struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                     // 主键
	ProductID uint      `gorm:"not null;uniqueIndex:idx_product_tag" json:"product_id"`   // 商品ID
	TagID     uint      `gorm:"not null;uniqueIndex:idx_product_tag;index" json:"tag_id"` // 标签ID
	CreatedAt time.Time `json:"created_at"`                                               // 创建时间
}

// TableName 指定表名
func (ProductTag) TableName() string {
	return "product_tags"
}
