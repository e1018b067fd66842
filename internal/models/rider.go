package models

import (
	"time"

	"gorm.io/gorm"
)

// Rider 配送骑手表
type Rider struct {
	ID          uint           `gorm:"primarykey" json:"id"`                   // 主键
	UserID      uint           `gorm:"uniqueIndex;not null" json:"user_id"`    // 账号ID
	Phone       string         `gorm:"type:varchar(20)" json:"phone"`          // 手机号
	VehicleInfo string         `gorm:"type:varchar(100)" json:"vehicle_info"`  // 车辆信息
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"` // 是否可接单
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 关联账号
}

// TableName 指定表名
func (Rider) TableName() string {
	return "riders"
}
