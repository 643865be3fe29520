package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship_admin_v1/internal/model"
)

func seedUsers(t *testing.T, repo UserRepository) []model.SysUser {
	t.Helper()
	users := []model.SysUser{
		{Username: "root", Password: "x", Role: model.RoleSuperAdmin, Status: model.UserStatusActive},
		{Username: "amy", Password: "x", Email: "amy@shop.io", Role: model.RoleManager, Status: model.UserStatusActive},
		{Username: "ben", Password: "x", Role: model.RoleManager, Status: model.UserStatusDisabled},
		{Username: "cara", Password: "x", Role: "support", Status: model.UserStatusActive},
	}
	for i := range users {
		require.NoError(t, repo.Create(context.Background(), &users[i]))
	}
	return users
}

func TestUserRepo_GetAndRecordLogin(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	users := seedUsers(t, repo)

	got, err := repo.GetByUsername(ctx, "amy")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.LastLoginAt)

	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordLogin(ctx, users[1].ID, at))
	got, err = repo.GetByID(ctx, users[1].ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, at.Equal(*got.LastLoginAt))

	missing, err := repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_List(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	users := seedUsers(t, repo)

	require.NoError(t, repo.RecordLogin(ctx, users[3].ID, time.Now().Add(-time.Hour)))
	require.NoError(t, repo.RecordLogin(ctx, users[1].ID, time.Now()))

	list, total, err := repo.List(ctx, UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, list, 4)
	// 最近登录在前，未登录按 id
	assert.Equal(t, []string{"amy", "cara", "root", "ben"}, []string{
		list[0].Username, list[1].Username, list[2].Username, list[3].Username,
	})

	active := model.UserStatusActive
	list, total, err = repo.List(ctx, UserFilter{Roles: []string{model.RoleManager}, Status: &active})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "amy", list[0].Username)

	list, total, err = repo.List(ctx, UserFilter{Keyword: "shop.io"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "amy", list[0].Username)

	list, total, err = repo.List(ctx, UserFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, list, 2)
}

func TestUserRepo_CountByRole(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()
	users := seedUsers(t, repo)

	counts, err := repo.CountByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{model.RoleSuperAdmin: 1, model.RoleManager: 2, "support": 1}, counts)

	// 软删除的员工不计入
	require.NoError(t, repo.Delete(ctx, users[3].ID))
	counts, err = repo.CountByRole(ctx, "support", model.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{model.RoleManager: 2}, counts)
}
