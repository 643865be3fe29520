package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dropship_admin_v1/internal/model"
)

// upsertBatchSize 单条 INSERT 携带的记录数
const upsertBatchSize = 200

// ==================== 接口定义 ====================

// CatalogRepository 目录镜像表 (categories / products / ads) 通用仓储
type CatalogRepository[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int64) (*T, error)
	GetByExternalID(ctx context.Context, externalID string) (*T, error)
	Create(ctx context.Context, record *T) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)

	// BatchUpsert 按 external_id 幂等写入，返回写入条数
	BatchUpsert(ctx context.Context, records []T) (int64, error)
}

// ==================== 仓储实现 ====================

type catalogRepo[T any] struct {
	db            *gorm.DB
	upsertColumns []string
}

// NewCatalogRepository 创建目录仓储，upsertColumns 为冲突时覆盖的列
func NewCatalogRepository[T any](db *gorm.DB, upsertColumns []string) CatalogRepository[T] {
	return &catalogRepo[T]{db: db, upsertColumns: upsertColumns}
}

// NewCategoryRepository 类目仓储
func NewCategoryRepository(db *gorm.DB) CatalogRepository[model.Category] {
	return NewCatalogRepository[model.Category](db, []string{
		"name", "slug", "parent_name", "description",
		"product_count", "avg_margin", "status",
		"synced_at", "updated_at", "deleted_at",
	})
}

// NewProductRepository 商品仓储
func NewProductRepository(db *gorm.DB) CatalogRepository[model.Product] {
	return NewCatalogRepository[model.Product](db, []string{
		"title", "category", "supplier_name", "supplier_url", "image_url",
		"price", "cost", "avg_profit_margin", "rating", "orders_count",
		"is_trending", "is_winning", "status", "tags",
		"synced_at", "updated_at", "deleted_at",
	})
}

// NewAdRepository 广告仓储
func NewAdRepository(db *gorm.DB) CatalogRepository[model.Ad] {
	return NewCatalogRepository[model.Ad](db, []string{
		"title", "page_name", "category", "ad_link", "platform", "country",
		"likes", "comments", "shares", "days_running", "is_active",
		"started_at", "tags",
		"synced_at", "updated_at", "deleted_at",
	})
}

// ListAll 全量读取，过滤排序分页交给 recordquery 在内存完成
func (r *catalogRepo[T]) ListAll(ctx context.Context) ([]T, error) {
	var records []T
	err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error
	return records, err
}

func (r *catalogRepo[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	var record T
	err := r.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *catalogRepo[T]) GetByExternalID(ctx context.Context, externalID string) (*T, error) {
	var record T
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &record, err
}

func (r *catalogRepo[T]) Create(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// UpdateFields 更新指定字段，记录不存在时返回 gorm.ErrRecordNotFound
func (r *catalogRepo[T]) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(new(T)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 软删除，记录不存在时返回 gorm.ErrRecordNotFound
func (r *catalogRepo[T]) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *catalogRepo[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Count(&count).Error
	return count, err
}

// BatchUpsert 已软删除的记录会被上游数据恢复 (deleted_at 置空)
func (r *catalogRepo[T]) BatchUpsert(ctx context.Context, records []T) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns(r.upsertColumns),
	}).CreateInBatches(&records, upsertBatchSize)
	return result.RowsAffected, result.Error
}
