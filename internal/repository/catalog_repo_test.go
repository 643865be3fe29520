package repository

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dropship_admin_v1/internal/model"
)

func TestCategoryRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	cat := &model.Category{ExternalID: "c-1", Name: "Kitchen", Status: model.RecordActive}
	require.NoError(t, repo.Create(ctx, cat))
	assert.NotZero(t, cat.ID)

	got, err := repo.GetByID(ctx, cat.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Kitchen", got.Name)

	byExt, err := repo.GetByExternalID(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, byExt)
	assert.Equal(t, cat.ID, byExt.ID)

	missing, err := repo.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategoryRepo_BatchUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	_, err := repo.BatchUpsert(ctx, []model.Category{
		{ExternalID: "c-1", Name: "Kitchen", ProductCount: 3},
		{ExternalID: "c-2", Name: "Garden", ProductCount: 5},
	})
	require.NoError(t, err)

	// 第二次同步：c-1 更新，c-3 新增
	_, err = repo.BatchUpsert(ctx, []model.Category{
		{ExternalID: "c-1", Name: "Kitchen & Dining", ProductCount: 7},
		{ExternalID: "c-3", Name: "Pets"},
	})
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	c1, err := repo.GetByExternalID(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, "Kitchen & Dining", c1.Name)
	assert.Equal(t, 7, c1.ProductCount)

	n, err := repo.BatchUpsert(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCategoryRepo_UpsertRestoresDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	cat := &model.Category{ExternalID: "c-9", Name: "Toys"}
	require.NoError(t, repo.Create(ctx, cat))
	require.NoError(t, repo.Delete(ctx, cat.ID))

	gone, err := repo.GetByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, err = repo.BatchUpsert(ctx, []model.Category{{ExternalID: "c-9", Name: "Toys"}})
	require.NoError(t, err)

	back, err := repo.GetByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.NotNil(t, back)
}

func TestCategoryRepo_UpdateAndDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	err := repo.UpdateFields(ctx, 42, map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Delete(ctx, 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	cat := &model.Category{ExternalID: "c-1", Name: "Old"}
	require.NoError(t, repo.Create(ctx, cat))
	require.NoError(t, repo.UpdateFields(ctx, cat.ID, map[string]interface{}{"name": "New"}))

	got, err := repo.GetByID(ctx, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
}

func TestProductRepo_TagsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	_, err := repo.BatchUpsert(ctx, []model.Product{
		{ExternalID: "p-1", Title: "Garlic Press", Price: 19.9, Tags: pq.StringArray{"kitchen", "tools"}},
		{ExternalID: "p-2", Title: "LED Strip", IsTrending: true},
	})
	require.NoError(t, err)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p-1", all[0].ExternalID)
	assert.Equal(t, pq.StringArray{"kitchen", "tools"}, all[0].Tags)
	assert.True(t, all[1].IsTrending)
}

func TestAdRepo_BatchUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdRepository(db)
	ctx := context.Background()

	_, err := repo.BatchUpsert(ctx, []model.Ad{{ExternalID: "a-1", PageName: "Shop A", Likes: 10, IsActive: true}})
	require.NoError(t, err)
	_, err = repo.BatchUpsert(ctx, []model.Ad{{ExternalID: "a-1", PageName: "Shop A", Likes: 25, IsActive: false}})
	require.NoError(t, err)

	ad, err := repo.GetByExternalID(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, ad)
	assert.Equal(t, 25, ad.Likes)
	assert.False(t, ad.IsActive)
}
