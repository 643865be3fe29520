package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/pkg/permission"
)

func TestPermissionService_BootstrapIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.perm.Bootstrap(ctx))

	roles, err := env.perm.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	modules, err := env.perm.ListModules(ctx)
	require.NoError(t, err)
	assert.Len(t, modules, len(model.DefaultModules))

	// 超管全选，manager 默认全部 locked
	admin, err := env.perm.GetSet(ctx, model.OwnerRole, env.role(t, model.RoleSuperAdmin).ID)
	require.NoError(t, err)
	for _, p := range admin {
		assert.Equal(t, string(permission.AccessFull), p.AccessLevel, p.ModuleCode)
	}
	manager, err := env.perm.GetSet(ctx, model.OwnerRole, env.role(t, model.RoleManager).ID)
	require.NoError(t, err)
	for _, p := range manager {
		assert.Equal(t, string(permission.AccessLocked), p.AccessLevel, p.ModuleCode)
	}
}

func TestPermissionService_MutationScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role, err := env.perm.CreateRole(ctx, "analyst", "read only")
	require.NoError(t, err)

	// view + view_details -> full_access
	p, err := env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, model.ModuleProducts, "view", true)
	require.NoError(t, err)
	assert.Equal(t, string(permission.AccessLimited), p.AccessLevel)

	p, err = env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, model.ModuleProducts, "view_details", true)
	require.NoError(t, err)
	assert.Equal(t, string(permission.AccessFull), p.AccessLevel)

	// lock_page 优先
	p, err = env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, model.ModuleProducts, "lock_page", true)
	require.NoError(t, err)
	assert.Equal(t, string(permission.AccessLocked), p.AccessLevel)

	// hidden 吸收全部开关
	p, err = env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, model.ModuleProducts, "hidden", true)
	require.NoError(t, err)
	assert.Equal(t, string(permission.AccessHidden), p.AccessLevel)
	assert.False(t, p.View)
	assert.False(t, p.LockPage)

	// 取消隐藏回到 locked，之前的开关被丢弃
	p, err = env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, model.ModuleProducts, "hidden", false)
	require.NoError(t, err)
	assert.Equal(t, string(permission.AccessLocked), p.AccessLevel)
	assert.True(t, p.LockPage)
	assert.False(t, p.View)
	assert.False(t, p.ViewDetails)

	// 持久化后读取一致
	set, err := env.perm.GetSet(ctx, model.OwnerRole, role.ID)
	require.NoError(t, err)
	got := findModule(t, set, model.ModuleProducts)
	assert.Equal(t, string(permission.AccessLocked), got.AccessLevel)
	assert.True(t, got.LockPage)
}

func TestPermissionService_MutationErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	role := env.role(t, model.RoleManager)

	_, err := env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, model.ModuleAds, "delete", true)
	assert.ErrorIs(t, err, permission.ErrInvalidField)

	_, err = env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, "billing", "view", true)
	assert.ErrorIs(t, err, ErrModuleNotFound)

	_, err = env.perm.ApplyMutation(ctx, model.OwnerRole, 999, model.ModuleAds, "view", true)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	_, err = env.perm.ApplyMutation(ctx, model.OwnerPlan, 999, model.ModuleAds, "view", true)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = env.perm.GetSet(ctx, model.OwnerType("team"), role.ID)
	assert.ErrorIs(t, err, ErrInvalidOwnerType)
}

func TestPermissionService_SetLimitKeepsAccessLevel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	plan := &model.Plan{Code: "free", Name: "Free", IsActive: true}
	require.NoError(t, env.perm.CreatePlan(ctx, plan))

	_, err := env.perm.ApplyMutation(ctx, model.OwnerPlan, plan.ID, model.ModuleProducts, "view", true)
	require.NoError(t, err)
	_, err = env.perm.ApplyMutation(ctx, model.OwnerPlan, plan.ID, model.ModuleProducts, "limited_view", true)
	require.NoError(t, err)

	limit := 10
	p, err := env.perm.SetLimit(ctx, model.OwnerPlan, plan.ID, model.ModuleProducts, &limit)
	require.NoError(t, err)
	require.NotNil(t, p.LimitCount)
	assert.Equal(t, 10, *p.LimitCount)
	assert.Equal(t, string(permission.AccessLimited), p.AccessLevel)

	// nil 表示不限，依旧合法
	p, err = env.perm.SetLimit(ctx, model.OwnerPlan, plan.ID, model.ModuleProducts, nil)
	require.NoError(t, err)
	assert.Nil(t, p.LimitCount)
	assert.Equal(t, string(permission.AccessLimited), p.AccessLevel)

	assert.ErrorIs(t, env.perm.CreatePlan(ctx, &model.Plan{Code: "free"}), ErrPlanExists)
}

func TestPermissionService_SetLimitOnHiddenModule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	role := env.role(t, model.RoleManager)

	_, err := env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, model.ModuleAds, "hidden", true)
	require.NoError(t, err)

	limit := 5
	p, err := env.perm.SetLimit(ctx, model.OwnerRole, role.ID, model.ModuleAds, &limit)
	require.NoError(t, err)
	assert.Equal(t, string(permission.AccessHidden), p.AccessLevel)
	assert.Nil(t, p.LimitCount)

	stored, err := env.permRepo.GetByOwnerModule(ctx, model.OwnerRole, role.ID, model.ModuleAds)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.LimitCount)
	assert.True(t, permission.Consistent(stored.ToDomain()))

	// 隐藏时切换其他开关不生效
	p, err = env.perm.ApplyMutation(ctx, model.OwnerRole, role.ID, model.ModuleAds, "view", true)
	require.NoError(t, err)
	assert.Equal(t, string(permission.AccessHidden), p.AccessLevel)
	assert.False(t, p.View)
}

func TestPermissionService_BulkAndInit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	role := env.role(t, model.RoleManager)

	set, err := env.perm.ApplyBulk(ctx, model.OwnerRole, role.ID, string(permission.BulkSelectAll))
	require.NoError(t, err)
	require.Len(t, set, len(model.DefaultModules))
	for _, p := range set {
		assert.Equal(t, string(permission.AccessFull), p.AccessLevel)
		assert.True(t, p.View && p.ViewDetails)
		assert.False(t, p.LockPage)
	}

	set, err = env.perm.ApplyBulk(ctx, model.OwnerRole, role.ID, string(permission.BulkDeselectAll))
	require.NoError(t, err)
	for _, p := range set {
		assert.Equal(t, string(permission.AccessLocked), p.AccessLevel)
		assert.True(t, p.LockPage)
	}

	_, err = env.perm.ApplyBulk(ctx, model.OwnerRole, role.ID, "invert")
	assert.ErrorIs(t, err, permission.ErrInvalidBulkMode)

	set, err = env.perm.InitSet(ctx, model.OwnerRole, role.ID)
	require.NoError(t, err)
	require.Len(t, set, len(model.DefaultModules))
	for _, p := range set {
		assert.Equal(t, string(permission.AccessLocked), p.AccessLevel)
		assert.False(t, p.LockPage)
	}
}

func TestPermissionService_DeleteRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.perm.DeleteRole(ctx, env.role(t, model.RoleManager).ID), ErrSystemRole)
	assert.ErrorIs(t, env.perm.DeleteRole(ctx, 999), ErrRoleNotFound)

	role, err := env.perm.CreateRole(ctx, "support", "")
	require.NoError(t, err)
	_, err = env.perm.CreateRole(ctx, "support", "")
	assert.ErrorIs(t, err, ErrRoleExists)

	require.NoError(t, env.userRepo.Create(ctx, &model.SysUser{
		Username: "amy", Password: "x", Role: "support", Status: model.UserStatusActive,
	}))
	assert.ErrorIs(t, env.perm.DeleteRole(ctx, role.ID), ErrRoleInUse)

	other, err := env.perm.CreateRole(ctx, "temp", "")
	require.NoError(t, err)
	require.NoError(t, env.perm.DeleteRole(ctx, other.ID))

	rows, err := env.permRepo.ListByOwner(ctx, model.OwnerRole, other.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPermissionService_AccessFor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	access, err := env.perm.AccessFor(ctx, model.RoleSuperAdmin, model.ModuleUsers)
	require.NoError(t, err)
	assert.Equal(t, permission.AccessFull, access.AccessLevel)

	access, err = env.perm.AccessFor(ctx, model.RoleManager, model.ModuleAds)
	require.NoError(t, err)
	assert.Equal(t, permission.AccessLocked, access.AccessLevel)

	_, err = env.perm.ApplyMutation(ctx, model.OwnerRole, env.role(t, model.RoleManager).ID, model.ModuleAds, "view", true)
	require.NoError(t, err)
	access, err = env.perm.AccessFor(ctx, model.RoleManager, model.ModuleAds)
	require.NoError(t, err)
	assert.Equal(t, permission.AccessLimited, access.AccessLevel)

	// 未知角色按默认 locked 处理
	access, err = env.perm.AccessFor(ctx, "ghost", model.ModuleAds)
	require.NoError(t, err)
	assert.Equal(t, permission.AccessLocked, access.AccessLevel)
}

func TestPermissionService_RolePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	set, err := env.perm.RolePermissions(ctx, model.RoleSuperAdmin)
	require.NoError(t, err)
	require.Len(t, set, len(model.DefaultModules))
	for _, p := range set {
		assert.Equal(t, string(permission.AccessFull), p.AccessLevel)
	}

	set, err = env.perm.RolePermissions(ctx, "ghost")
	require.NoError(t, err)
	require.Len(t, set, len(model.DefaultModules))
	assert.Equal(t, string(permission.AccessLocked), set[0].AccessLevel)
}
