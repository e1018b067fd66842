package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 顾客表
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`                // 主键
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"` // 账号ID
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`       // 手机号
	BirthDate *time.Time     `json:"birth_date"`                          // 出生日期
	CreatedAt time.Time      `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                          // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                      // 软删除时间

	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`          // 关联账号
	Addresses []Address `gorm:"foreignKey:CustomerID" json:"addresses,omitempty"` // 收货地址
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
