package models

import (
	"time"
)

// SearchHistory 搜索历史表
type SearchHistory struct {
	ID         uint      `gorm:"primarykey" json:"id"`                    // 主键
	CustomerID uint      `gorm:"index;not null" json:"customer_id"`       // 顾客ID
	Query      string    `gorm:"type:varchar(100);not null" json:"query"` // 搜索词
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                 // 搜索时间
}

// TableName 指定表名
func (SearchHistory) TableName() string {
	return "search_histories"
}
