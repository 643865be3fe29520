package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AuditMixin 审计字段 (由 middleware.RegisterAuditCallbacks 自动填充)
type AuditMixin struct {
	CreatedBy int64 `gorm:"index;comment:创建人ID" json:"created_by"`
	UpdatedBy int64 `gorm:"index;comment:更新人ID" json:"updated_by"`
}
