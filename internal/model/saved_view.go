package model

import "gorm.io/datatypes"

// SavedView 用户保存的列表查询条件
// State 为 recordquery.State 的 JSON
type SavedView struct {
	BaseModel
	UserID    int64          `gorm:"not null;index:idx_user_resource" json:"user_id"`
	Resource  string         `gorm:"size:50;not null;index:idx_user_resource" json:"resource"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	State     datatypes.JSON `gorm:"type:jsonb" json:"state"`
	IsDefault bool           `gorm:"default:false" json:"is_default"`
}

func (SavedView) TableName() string { return "saved_views" }
