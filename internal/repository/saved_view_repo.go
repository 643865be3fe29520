package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"dropship_admin_v1/internal/model"
)

// SavedViewRepository 列表视图仓储
type SavedViewRepository interface {
	Create(ctx context.Context, view *model.SavedView) error
	GetByID(ctx context.Context, id int64) (*model.SavedView, error)
	ListByUser(ctx context.Context, userID int64, resource string) ([]model.SavedView, error)
	Delete(ctx context.Context, id int64) error
	ClearDefault(ctx context.Context, userID int64, resource string) error
	Transaction(ctx context.Context, fn func(txRepo SavedViewRepository) error) error
}

type savedViewRepo struct {
	db *gorm.DB
}

// NewSavedViewRepository 创建视图仓储
func NewSavedViewRepository(db *gorm.DB) SavedViewRepository {
	return &savedViewRepo{db: db}
}

func (r *savedViewRepo) Create(ctx context.Context, view *model.SavedView) error {
	return r.db.WithContext(ctx).Create(view).Error
}

func (r *savedViewRepo) GetByID(ctx context.Context, id int64) (*model.SavedView, error) {
	var view model.SavedView
	err := r.db.WithContext(ctx).First(&view, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &view, err
}

// ListByUser resource 为空时返回全部资源的视图
func (r *savedViewRepo) ListByUser(ctx context.Context, userID int64, resource string) ([]model.SavedView, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var views []model.SavedView
	err := query.Order("is_default DESC, id ASC").Find(&views).Error
	return views, err
}

func (r *savedViewRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.SavedView{}, id).Error
}

// ClearDefault 同一用户同一资源只保留一个默认视图
func (r *savedViewRepo) ClearDefault(ctx context.Context, userID int64, resource string) error {
	return r.db.WithContext(ctx).
		Model(&model.SavedView{}).
		Where("user_id = ? AND resource = ? AND is_default = ?", userID, resource, true).
		Update("is_default", false).Error
}

func (r *savedViewRepo) Transaction(ctx context.Context, fn func(txRepo SavedViewRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&savedViewRepo{db: tx})
	})
}
