package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"dropship_admin_v1/internal/model"
)

func TestSavedViewRepo_ListAndDefault(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSavedViewRepository(db)
	ctx := context.Background()

	state := datatypes.JSON(`{"page":0,"page_size":20,"search":"lamp"}`)
	require.NoError(t, repo.Create(ctx, &model.SavedView{UserID: 1, Resource: "products", Name: "Lamps", State: state, IsDefault: true}))
	require.NoError(t, repo.Create(ctx, &model.SavedView{UserID: 1, Resource: "ads", Name: "Active", State: state}))
	require.NoError(t, repo.Create(ctx, &model.SavedView{UserID: 2, Resource: "products", Name: "Other", State: state}))

	views, err := repo.ListByUser(ctx, 1, "products")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.JSONEq(t, string(state), string(views[0].State))

	all, err := repo.ListByUser(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = repo.Transaction(ctx, func(txRepo SavedViewRepository) error {
		if err := txRepo.ClearDefault(ctx, 1, "products"); err != nil {
			return err
		}
		return txRepo.Create(ctx, &model.SavedView{UserID: 1, Resource: "products", Name: "Cheap", State: state, IsDefault: true})
	})
	require.NoError(t, err)

	views, err = repo.ListByUser(ctx, 1, "products")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Cheap", views[0].Name)
	assert.True(t, views[0].IsDefault)
	assert.False(t, views[1].IsDefault)
}

func TestSavedViewRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSavedViewRepository(db)
	ctx := context.Background()

	view := &model.SavedView{UserID: 1, Resource: "categories", Name: "All", State: datatypes.JSON(`{}`)}
	require.NoError(t, repo.Create(ctx, view))
	require.NoError(t, repo.Delete(ctx, view.ID))

	got, err := repo.GetByID(ctx, view.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
