package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/repository"
	"dropship_admin_v1/pkg/metrics"
	"dropship_admin_v1/pkg/permission"
)

// ==================== PermissionService 权限服务 ====================

// PermissionService 角色 / 套餐的模块权限管理
// 所有开关变更经 permission.Resolve 计算后整行保存，access_level 不直接写入
type PermissionService struct {
	repo     repository.PermissionRepository
	userRepo repository.UserRepository
	log      *zap.Logger
}

// NewPermissionService 创建权限服务
func NewPermissionService(repo repository.PermissionRepository, userRepo repository.UserRepository, log *zap.Logger) *PermissionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PermissionService{repo: repo, userRepo: userRepo, log: log.Named("permission")}
}

// ==================== 初始化 ====================

// Bootstrap 写入模块与系统角色，启动时调用，可重复执行
func (s *PermissionService) Bootstrap(ctx context.Context) error {
	if err := s.repo.EnsureModules(ctx, model.DefaultModules); err != nil {
		return fmt.Errorf("初始化模块失败: %w", err)
	}

	for _, name := range []string{model.RoleSuperAdmin, model.RoleManager} {
		role, err := s.repo.GetRoleByName(ctx, name)
		if err != nil {
			return err
		}
		if role != nil {
			continue
		}

		role = &model.Role{Name: name, IsSystem: true}
		if err := s.repo.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("创建系统角色 %s 失败: %w", name, err)
		}
		if name == model.RoleSuperAdmin {
			_, err = s.ApplyBulk(ctx, model.OwnerRole, role.ID, string(permission.BulkSelectAll))
		} else {
			_, err = s.InitSet(ctx, model.OwnerRole, role.ID)
		}
		if err != nil {
			return err
		}
		s.log.Info("system role created", zap.String("role", name))
	}
	return nil
}

// ==================== 角色 / 套餐 ====================

func (s *PermissionService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.repo.ListRoles(ctx)
}

// CreateRole 创建角色并初始化默认权限
func (s *PermissionService) CreateRole(ctx context.Context, name, description string) (*model.Role, error) {
	existing, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRoleExists
	}

	role := &model.Role{Name: name, Description: description}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	if _, err := s.InitSet(ctx, model.OwnerRole, role.ID); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole 删除角色及其权限集
func (s *PermissionService) DeleteRole(ctx context.Context, id int64) error {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrRoleNotFound
	}
	if role.IsSystem {
		return ErrSystemRole
	}

	members, err := s.userRepo.CountByRole(ctx, role.Name)
	if err != nil {
		return err
	}
	if members[role.Name] > 0 {
		return ErrRoleInUse
	}

	return s.repo.Transaction(ctx, func(txRepo repository.PermissionRepository) error {
		if err := txRepo.DeleteSet(ctx, model.OwnerRole, id); err != nil {
			return err
		}
		return txRepo.DeleteRole(ctx, id)
	})
}

func (s *PermissionService) ListPlans(ctx context.Context) ([]model.Plan, error) {
	return s.repo.ListPlans(ctx)
}

// CreatePlan 创建套餐并初始化默认权限
func (s *PermissionService) CreatePlan(ctx context.Context, plan *model.Plan) error {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return err
	}
	for _, p := range plans {
		if p.Code == plan.Code {
			return ErrPlanExists
		}
	}
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return err
	}
	_, err = s.InitSet(ctx, model.OwnerPlan, plan.ID)
	return err
}

func (s *PermissionService) ListModules(ctx context.Context) ([]model.AppModule, error) {
	return s.repo.ListModules(ctx)
}

// ==================== 权限集 ====================

// GetSet 返回全部模块的权限，未落库的模块以默认值 (locked) 补齐
func (s *PermissionService) GetSet(ctx context.Context, ownerType model.OwnerType, ownerID int64) ([]model.ModulePermission, error) {
	if err := s.checkOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}

	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}

	byModule := make(map[string]model.ModulePermission, len(rows))
	for _, r := range rows {
		byModule[r.ModuleCode] = r
	}

	set := make([]model.ModulePermission, 0, len(modules))
	for _, m := range modules {
		if row, ok := byModule[m.Code]; ok {
			set = append(set, row)
			continue
		}
		set = append(set, newPermissionRow(ownerType, ownerID, m.Code))
	}
	return set, nil
}

// InitSet 重置为默认权限 (全部 locked)
func (s *PermissionService) InitSet(ctx context.Context, ownerType model.OwnerType, ownerID int64) ([]model.ModulePermission, error) {
	if err := s.checkOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}

	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.ModulePermission, 0, len(modules))
	for _, m := range modules {
		rows = append(rows, newPermissionRow(ownerType, ownerID, m.Code))
	}
	if err := s.repo.ReplaceSet(ctx, ownerType, ownerID, rows); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerType, ownerID)
}

// ApplyMutation 切换单个模块的单个开关
func (s *PermissionService) ApplyMutation(ctx context.Context, ownerType model.OwnerType, ownerID int64, moduleCode, field string, value bool) (*model.ModulePermission, error) {
	f, err := permission.ParseField(field)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}
	if err := s.checkModule(ctx, moduleCode); err != nil {
		return nil, err
	}

	var saved model.ModulePermission
	err = s.repo.Transaction(ctx, func(txRepo repository.PermissionRepository) error {
		row, err := loadPermissionRow(ctx, txRepo, ownerType, ownerID, moduleCode)
		if err != nil {
			return err
		}

		next, err := permission.Resolve(row.ToDomain(), permission.Mutation{Field: f, Value: value})
		if err != nil {
			return err
		}
		row.Apply(next)
		if err := txRepo.Save(ctx, &row); err != nil {
			return err
		}
		saved = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PermissionMutationsTotal.WithLabelValues(string(ownerType), string(f)).Inc()
	fields := []zap.Field{
		zap.String("owner_type", string(ownerType)),
		zap.Int64("owner_id", ownerID),
		zap.String("module", moduleCode),
		zap.String("field", string(f)),
		zap.Bool("value", value),
		zap.String("access_level", saved.AccessLevel),
	}
	s.log.Info("permission mutated", append(fields, middleware.GetAuditInfo(ctx).Fields()...)...)
	return &saved, nil
}

// SetLimit 修改 limit_count (nil 表示不限)
func (s *PermissionService) SetLimit(ctx context.Context, ownerType model.OwnerType, ownerID int64, moduleCode string, limit *int) (*model.ModulePermission, error) {
	if err := s.checkOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}
	if err := s.checkModule(ctx, moduleCode); err != nil {
		return nil, err
	}

	var saved model.ModulePermission
	err := s.repo.Transaction(ctx, func(txRepo repository.PermissionRepository) error {
		row, err := loadPermissionRow(ctx, txRepo, ownerType, ownerID, moduleCode)
		if err != nil {
			return err
		}
		row.Apply(permission.SetLimitCount(row.ToDomain(), limit))
		if err := txRepo.Save(ctx, &row); err != nil {
			return err
		}
		saved = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// ApplyBulk 对全部模块执行全选 / 全不选
func (s *PermissionService) ApplyBulk(ctx context.Context, ownerType model.OwnerType, ownerID int64, mode string) ([]model.ModulePermission, error) {
	if err := s.checkOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}
	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(txRepo repository.PermissionRepository) error {
		for _, m := range modules {
			next, err := permission.ResolveBulk(m.Code, permission.BulkMode(mode))
			if err != nil {
				return err
			}
			row, err := loadPermissionRow(ctx, txRepo, ownerType, ownerID, m.Code)
			if err != nil {
				return err
			}
			row.Apply(next)
			if err := txRepo.Save(ctx, &row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PermissionMutationsTotal.WithLabelValues(string(ownerType), mode).Inc()
	return s.repo.ListByOwner(ctx, ownerType, ownerID)
}

// ==================== 鉴权 ====================

// AccessFor 查询员工角色对模块的权限，超管恒为 full_access
func (s *PermissionService) AccessFor(ctx context.Context, roleName, moduleCode string) (permission.ModulePermission, error) {
	if roleName == model.RoleSuperAdmin {
		return permission.ResolveBulk(moduleCode, permission.BulkSelectAll)
	}

	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return permission.ModulePermission{}, err
	}
	if role == nil {
		return permission.New(moduleCode), nil
	}

	row, err := s.repo.GetByOwnerModule(ctx, model.OwnerRole, role.ID, moduleCode)
	if err != nil {
		return permission.ModulePermission{}, err
	}
	if row == nil {
		return permission.New(moduleCode), nil
	}
	return row.ToDomain(), nil
}

// RolePermissions 员工角色的完整权限集 (个人信息页展示)
func (s *PermissionService) RolePermissions(ctx context.Context, roleName string) ([]model.ModulePermission, error) {
	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	if role != nil && roleName != model.RoleSuperAdmin {
		return s.GetSet(ctx, model.OwnerRole, role.ID)
	}

	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, err
	}
	var ownerID int64
	if role != nil {
		ownerID = role.ID
	}
	set := make([]model.ModulePermission, 0, len(modules))
	for _, m := range modules {
		row := newPermissionRow(model.OwnerRole, ownerID, m.Code)
		if roleName == model.RoleSuperAdmin {
			full, _ := permission.ResolveBulk(m.Code, permission.BulkSelectAll)
			row.Apply(full)
		}
		set = append(set, row)
	}
	return set, nil
}

// ==================== 辅助方法 ====================

func (s *PermissionService) checkOwner(ctx context.Context, ownerType model.OwnerType, ownerID int64) error {
	switch ownerType {
	case model.OwnerRole:
		role, err := s.repo.GetRole(ctx, ownerID)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}
	case model.OwnerPlan:
		plan, err := s.repo.GetPlan(ctx, ownerID)
		if err != nil {
			return err
		}
		if plan == nil {
			return ErrPlanNotFound
		}
	default:
		return ErrInvalidOwnerType
	}
	return nil
}

func (s *PermissionService) checkModule(ctx context.Context, code string) error {
	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return err
	}
	for _, m := range modules {
		if m.Code == code {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModuleNotFound, code)
}

func newPermissionRow(ownerType model.OwnerType, ownerID int64, moduleCode string) model.ModulePermission {
	row := model.ModulePermission{
		OwnerType:  ownerType,
		OwnerID:    ownerID,
		ModuleCode: moduleCode,
	}
	row.Apply(permission.New(moduleCode))
	return row
}

// loadPermissionRow 读取已有行，不存在时返回默认行 (ID 为 0，Save 时插入)
func loadPermissionRow(ctx context.Context, repo repository.PermissionRepository, ownerType model.OwnerType, ownerID int64, moduleCode string) (model.ModulePermission, error) {
	row, err := repo.GetByOwnerModule(ctx, ownerType, ownerID, moduleCode)
	if err != nil {
		return model.ModulePermission{}, err
	}
	if row == nil {
		return newPermissionRow(ownerType, ownerID, moduleCode), nil
	}
	return *row, nil
}

// ==================== 错误定义 ====================

var (
	ErrRoleNotFound     = errors.New("角色不存在")
	ErrRoleExists       = errors.New("角色已存在")
	ErrRoleInUse        = errors.New("角色仍被员工使用")
	ErrSystemRole       = errors.New("系统角色不可删除")
	ErrPlanNotFound     = errors.New("套餐不存在")
	ErrPlanExists       = errors.New("套餐已存在")
	ErrModuleNotFound   = errors.New("模块不存在")
	ErrInvalidOwnerType = errors.New("owner 类型错误，应为 roles 或 plans")
)
