package models

import (
	"time"
)

// Wishlist 心愿单表（每个顾客一份）
type Wishlist struct {
	ID         uint      `gorm:"primarykey" json:"id"`                    // 主键
	CustomerID uint      `gorm:"uniqueIndex;not null" json:"customer_id"` // 顾客ID
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                 // 创建时间

	Items []WishlistItem `gorm:"foreignKey:WishlistID" json:"items,omitempty"` // 心愿单项
}

// TableName 指定表名
func (Wishlist) TableName() string {
	return "wishlists"
}

// WishlistItem 心愿单项
type WishlistItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                         // 主键
	WishlistID uint      `gorm:"not null;uniqueIndex:idx_wishlist_product" json:"wishlist_id"` // 心愿单ID
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_wishlist_product" json:"product_id"`  // 商品ID
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                      // 创建时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (WishlistItem) TableName() string {
	return "wishlist_items"
}
