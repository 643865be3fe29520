package dto

import (
	"encoding/json"
	"time"

	rq "dropship_admin_v1/pkg/recordquery"
)

// CreateSavedViewRequest 保存列表视图
type CreateSavedViewRequest struct {
	Resource  string   `json:"resource" binding:"required,oneof=categories products ads"`
	Name      string   `json:"name" binding:"required,max=100"`
	State     rq.State `json:"state"`
	IsDefault bool     `json:"is_default"`
}

// SavedViewVO 列表视图
type SavedViewVO struct {
	ID        int64           `json:"id"`
	Resource  string          `json:"resource"`
	Name      string          `json:"name"`
	State     json.RawMessage `json:"state"`
	IsDefault bool            `json:"is_default"`
	CreatedAt time.Time       `json:"created_at"`
}
