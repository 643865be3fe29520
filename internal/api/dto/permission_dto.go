package dto

import (
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/pkg/permission"
)

// ModulePermissionVO 单个模块权限
type ModulePermissionVO struct {
	ModuleCode  string `json:"module_code"`
	View        bool   `json:"view"`
	ViewDetails bool   `json:"view_details"`
	LimitedView bool   `json:"limited_view"`
	LimitCount  *int   `json:"limit_count"`
	LockPage    bool   `json:"lock_page"`
	Hidden      bool   `json:"hidden"`
	AccessLevel string `json:"access_level"`
}

// ToModulePermissionVO 转换
func ToModulePermissionVO(p *model.ModulePermission) ModulePermissionVO {
	return ModulePermissionVO{
		ModuleCode:  p.ModuleCode,
		View:        p.View,
		ViewDetails: p.ViewDetails,
		LimitedView: p.LimitedView,
		LimitCount:  p.LimitCount,
		LockPage:    p.LockPage,
		Hidden:      p.AccessLevel == string(permission.AccessHidden),
		AccessLevel: p.AccessLevel,
	}
}

// ToModulePermissionVOs 批量转换
func ToModulePermissionVOs(perms []model.ModulePermission) []ModulePermissionVO {
	list := make([]ModulePermissionVO, len(perms))
	for i := range perms {
		list[i] = ToModulePermissionVO(&perms[i])
	}
	return list
}

// PermissionSetResponse 角色 / 套餐的完整权限集
type PermissionSetResponse struct {
	OwnerType string               `json:"owner_type"`
	OwnerID   int64                `json:"owner_id"`
	Modules   []ModulePermissionVO `json:"modules"`
}

// MutationRequest 单字段切换
// field: view | view_details | limited_view | lock_page | hidden
type MutationRequest struct {
	Field string `json:"field" binding:"required"`
	Value *bool  `json:"value" binding:"required"`
}

// LimitRequest 修改 limit_count，null 表示不限
type LimitRequest struct {
	LimitCount *int `json:"limit_count"`
}

// BulkRequest 批量操作
type BulkRequest struct {
	Mode string `json:"mode" binding:"required,oneof=select_all deselect_all"`
}

// CreateRoleRequest 创建角色
type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"max=255"`
}

// CreatePlanRequest 创建套餐
type CreatePlanRequest struct {
	Code       string `json:"code" binding:"required,min=2,max=50"`
	Name       string `json:"name" binding:"required,max=100"`
	PriceCents int64  `json:"price_cents" binding:"min=0"`
}
