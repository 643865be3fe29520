package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/repository"
	"dropship_admin_v1/internal/testutil"
)

type testEnv struct {
	db       *gorm.DB
	userRepo repository.UserRepository
	permRepo repository.PermissionRepository
	perm     *PermissionService
	users    *UserService
}

// newTestEnv 内存库 + 已初始化的模块与系统角色
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupDB(t)
	userRepo := repository.NewUserRepository(db)
	permRepo := repository.NewPermissionRepository(db)

	env := &testEnv{
		db:       db,
		userRepo: userRepo,
		permRepo: permRepo,
		perm:     NewPermissionService(permRepo, userRepo, nil),
		users:    NewUserService(userRepo, permRepo, nil),
	}
	require.NoError(t, env.perm.Bootstrap(context.Background()))
	return env
}

func (e *testEnv) role(t *testing.T, name string) *model.Role {
	t.Helper()
	role, err := e.permRepo.GetRoleByName(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, role)
	return role
}

func findModule(t *testing.T, set []model.ModulePermission, code string) model.ModulePermission {
	t.Helper()
	for _, p := range set {
		if p.ModuleCode == code {
			return p
		}
	}
	t.Fatalf("module %s not in set", code)
	return model.ModulePermission{}
}
