package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dropship_admin_v1/internal/model"
)

// ==================== 接口定义 ====================

// PermissionRepository 角色 / 套餐 / 模块权限仓储
type PermissionRepository interface {
	// 角色
	CreateRole(ctx context.Context, role *model.Role) error
	GetRole(ctx context.Context, id int64) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	DeleteRole(ctx context.Context, id int64) error

	// 套餐
	CreatePlan(ctx context.Context, plan *model.Plan) error
	GetPlan(ctx context.Context, id int64) (*model.Plan, error)
	ListPlans(ctx context.Context) ([]model.Plan, error)

	// 模块
	EnsureModules(ctx context.Context, modules []model.AppModule) error
	ListModules(ctx context.Context) ([]model.AppModule, error)

	// 权限集
	ListByOwner(ctx context.Context, ownerType model.OwnerType, ownerID int64) ([]model.ModulePermission, error)
	GetByOwnerModule(ctx context.Context, ownerType model.OwnerType, ownerID int64, moduleCode string) (*model.ModulePermission, error)
	Save(ctx context.Context, perm *model.ModulePermission) error
	ReplaceSet(ctx context.Context, ownerType model.OwnerType, ownerID int64, perms []model.ModulePermission) error
	DeleteSet(ctx context.Context, ownerType model.OwnerType, ownerID int64) error

	// 事务
	WithTx(tx *gorm.DB) PermissionRepository
	Transaction(ctx context.Context, fn func(txRepo PermissionRepository) error) error
}

// ==================== 仓储实现 ====================

type permissionRepo struct {
	db *gorm.DB
}

// NewPermissionRepository 创建权限仓储
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db: db}
}

// -------- 角色 --------

func (r *permissionRepo) CreateRole(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *permissionRepo) GetRole(ctx context.Context, id int64) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &role, err
}

func (r *permissionRepo) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &role, err
}

func (r *permissionRepo) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *permissionRepo) DeleteRole(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Role{}, id).Error
}

// -------- 套餐 --------

func (r *permissionRepo) CreatePlan(ctx context.Context, plan *model.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *permissionRepo) GetPlan(ctx context.Context, id int64) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).First(&plan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &plan, err
}

func (r *permissionRepo) ListPlans(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	err := r.db.WithContext(ctx).Order("price_cents ASC, id ASC").Find(&plans).Error
	return plans, err
}

// -------- 模块 --------

// EnsureModules 按 code 幂等写入模块 (已存在则更新名称与排序)
func (r *permissionRepo) EnsureModules(ctx context.Context, modules []model.AppModule) error {
	if len(modules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "scope", "sort", "updated_at"}),
	}).Create(&modules).Error
}

func (r *permissionRepo) ListModules(ctx context.Context) ([]model.AppModule, error) {
	var modules []model.AppModule
	err := r.db.WithContext(ctx).Order("sort ASC, id ASC").Find(&modules).Error
	return modules, err
}

// -------- 权限集 --------

func (r *permissionRepo) ListByOwner(ctx context.Context, ownerType model.OwnerType, ownerID int64) ([]model.ModulePermission, error) {
	var perms []model.ModulePermission
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("id ASC").
		Find(&perms).Error
	return perms, err
}

func (r *permissionRepo) GetByOwnerModule(ctx context.Context, ownerType model.OwnerType, ownerID int64, moduleCode string) (*model.ModulePermission, error) {
	var perm model.ModulePermission
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND module_code = ?", ownerType, ownerID, moduleCode).
		First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &perm, err
}

// Save 全字段保存 (LimitCount 为 nil 时也写入 NULL)
func (r *permissionRepo) Save(ctx context.Context, perm *model.ModulePermission) error {
	return r.db.WithContext(ctx).Save(perm).Error
}

// ReplaceSet 整体重置：硬删除旧权限后写入新权限
func (r *permissionRepo) ReplaceSet(ctx context.Context, ownerType model.OwnerType, ownerID int64, perms []model.ModulePermission) error {
	return r.Transaction(ctx, func(txRepo PermissionRepository) error {
		if err := txRepo.DeleteSet(ctx, ownerType, ownerID); err != nil {
			return err
		}
		if len(perms) == 0 {
			return nil
		}
		tx := txRepo.(*permissionRepo).db
		return tx.WithContext(ctx).Create(&perms).Error
	})
}

func (r *permissionRepo) DeleteSet(ctx context.Context, ownerType model.OwnerType, ownerID int64) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&model.ModulePermission{}).Error
}

// -------- 事务 --------

func (r *permissionRepo) WithTx(tx *gorm.DB) PermissionRepository {
	return &permissionRepo{db: tx}
}

func (r *permissionRepo) Transaction(ctx context.Context, fn func(txRepo PermissionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
