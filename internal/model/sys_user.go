package model

import "time"

// UserStatus 用户状态
type UserStatus int

const (
	UserStatusDisabled UserStatus = 0
	UserStatusActive   UserStatus = 1
)

// 系统内置角色
const (
	RoleSuperAdmin = "superadmin"
	RoleManager    = "manager"
)

// SysUser 后台员工账号
type SysUser struct {
	BaseModel
	AuditMixin
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	Email    string `gorm:"size:100" json:"email"`

	// 对应 Role.Name，模块权限按角色读取
	Role string `gorm:"size:50;index;default:'manager'" json:"role"`

	Status      UserStatus `gorm:"not null" json:"status"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func (SysUser) TableName() string {
	return "sys_users"
}

// IsSuperAdmin 超管跳过模块权限检查
func (u *SysUser) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
