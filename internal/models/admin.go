package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 管理员表（关联账号 + 角色）
type Admin struct {
	ID        uint           `gorm:"primarykey" json:"id"`                        // 主键
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`         // 账号ID
	Role      string         `gorm:"type:varchar(20);not null;index" json:"role"` // 角色（superadmin/product/sales）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 关联账号
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}

// IsSuper 判断是否超级管理员（免权限校验）
func (a Admin) IsSuper() bool {
	return a.Role == "superadmin"
}
