package model

import "dropship_admin_v1/pkg/permission"

// OwnerType 权限集归属：员工角色 / 客户套餐
type OwnerType string

const (
	OwnerRole OwnerType = "role"
	OwnerPlan OwnerType = "plan"
)

// Valid 是否合法
func (t OwnerType) Valid() bool {
	return t == OwnerRole || t == OwnerPlan
}

// Role 内部员工权限档案 (superadmin, manager ...)
type Role struct {
	BaseModel
	AuditMixin
	Name        string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"` // 系统角色不可删除
}

func (Role) TableName() string { return "roles" }

// Plan 外部客户订阅套餐 (free, pro ...)
type Plan struct {
	BaseModel
	AuditMixin
	Code       string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name       string `gorm:"size:100" json:"name"`
	PriceCents int64  `gorm:"default:0" json:"price_cents"`
	IsActive   bool   `json:"is_active"`
}

func (Plan) TableName() string { return "plans" }

// ModuleScope 模块面向的对象
type ModuleScope string

const (
	ScopeAdmin    ModuleScope = "admin"    // 仅后台
	ScopeExternal ModuleScope = "external" // 客户产品
	ScopeBoth     ModuleScope = "both"
)

// AppModule 可授权的功能模块
type AppModule struct {
	BaseModel
	Code  string      `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name  string      `gorm:"size:100" json:"name"`
	Scope ModuleScope `gorm:"size:20;default:'both'" json:"scope"`
	Sort  int         `gorm:"default:0" json:"sort"`
}

func (AppModule) TableName() string { return "app_modules" }

// 模块编码
const (
	ModuleDashboard   = "dashboard"
	ModuleProducts    = "products"
	ModuleCategories  = "categories"
	ModuleAds         = "ads"
	ModulePermissions = "permissions"
	ModuleUsers       = "users"
	ModuleSavedViews  = "saved_views"
)

// DefaultModules 初始化时写入的模块
var DefaultModules = []AppModule{
	{Code: ModuleDashboard, Name: "Dashboard", Scope: ScopeBoth, Sort: 1},
	{Code: ModuleProducts, Name: "Products", Scope: ScopeBoth, Sort: 2},
	{Code: ModuleCategories, Name: "Categories", Scope: ScopeBoth, Sort: 3},
	{Code: ModuleAds, Name: "Ad Intelligence", Scope: ScopeBoth, Sort: 4},
	{Code: ModuleSavedViews, Name: "Saved Views", Scope: ScopeBoth, Sort: 5},
	{Code: ModulePermissions, Name: "Permissions", Scope: ScopeAdmin, Sort: 6},
	{Code: ModuleUsers, Name: "Users", Scope: ScopeAdmin, Sort: 7},
}

// ModulePermission 某角色 / 套餐对单个模块的权限
// access_level 只通过 permission.Resolve / ResolveBulk 写入
type ModulePermission struct {
	BaseModel
	AuditMixin
	OwnerType   OwnerType `gorm:"size:10;not null;uniqueIndex:uk_owner_module" json:"owner_type"`
	OwnerID     int64     `gorm:"not null;uniqueIndex:uk_owner_module" json:"owner_id"`
	ModuleCode  string    `gorm:"size:50;not null;uniqueIndex:uk_owner_module" json:"module_code"`
	View        bool      `gorm:"default:false" json:"view"`
	ViewDetails bool      `gorm:"default:false" json:"view_details"`
	LimitedView bool      `gorm:"default:false" json:"limited_view"`
	LimitCount  *int      `json:"limit_count"`
	LockPage    bool      `gorm:"default:false" json:"lock_page"`
	AccessLevel string    `gorm:"size:20;default:'locked'" json:"access_level"`
}

func (ModulePermission) TableName() string { return "module_permissions" }

// ToDomain 转为纯逻辑结构
func (m *ModulePermission) ToDomain() permission.ModulePermission {
	return permission.ModulePermission{
		ModuleID:    m.ModuleCode,
		View:        m.View,
		ViewDetails: m.ViewDetails,
		LimitedView: m.LimitedView,
		LimitCount:  m.LimitCount,
		LockPage:    m.LockPage,
		AccessLevel: permission.AccessLevel(m.AccessLevel),
	}
}

// Apply 用计算结果覆盖全部权限字段
func (m *ModulePermission) Apply(p permission.ModulePermission) {
	m.View = p.View
	m.ViewDetails = p.ViewDetails
	m.LimitedView = p.LimitedView
	m.LimitCount = p.LimitCount
	m.LockPage = p.LockPage
	m.AccessLevel = string(p.AccessLevel)
}
