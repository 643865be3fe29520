package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/repository"
	"dropship_admin_v1/pkg/metrics"
	rq "dropship_admin_v1/pkg/recordquery"
)

// ==================== CatalogService 目录服务 ====================

// ResourceMeta 列表页可用的字段 / 页签 / 快捷筛选
type ResourceMeta struct {
	Resource     string   `json:"resource"`
	Fields       []string `json:"fields"`
	SearchFields []string `json:"search_fields"`
	DateField    string   `json:"date_field"`
	StatusTabs   []string `json:"status_tabs"`
	QuickFilters []string `json:"quick_filters"`
}

// CatalogService 本地镜像记录的查询与维护
// 列表每次读取全量记录，再由 recordquery 引擎在内存中过滤 / 排序 / 分页
type CatalogService[T any] struct {
	resource string
	repo     repository.CatalogRepository[T]
	engine   *rq.Engine[T]
	schema   rq.Schema[T]
	editable map[string]bool
}

// NewCatalogService 创建目录服务，editable 为允许 PATCH 的列
func NewCatalogService[T any](resource string, repo repository.CatalogRepository[T], schema rq.Schema[T], editable []string) (*CatalogService[T], error) {
	engine, err := rq.NewEngine(schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resource, err)
	}
	cols := make(map[string]bool, len(editable))
	for _, c := range editable {
		cols[c] = true
	}
	return &CatalogService[T]{
		resource: resource,
		repo:     repo,
		engine:   engine,
		schema:   schema,
		editable: cols,
	}, nil
}

// NewCategoryService 类目
func NewCategoryService(repo repository.CatalogRepository[model.Category]) (*CatalogService[model.Category], error) {
	return NewCatalogService(model.ModuleCategories, repo, CategorySchema, []string{
		"name", "slug", "parent_name", "description", "status",
	})
}

// NewProductService 商品
func NewProductService(repo repository.CatalogRepository[model.Product]) (*CatalogService[model.Product], error) {
	return NewCatalogService(model.ModuleProducts, repo, ProductSchema, []string{
		"title", "category", "supplier_name", "supplier_url", "image_url",
		"price", "cost", "avg_profit_margin", "is_trending", "is_winning", "status",
	})
}

// NewAdService 广告
func NewAdService(repo repository.CatalogRepository[model.Ad]) (*CatalogService[model.Ad], error) {
	return NewCatalogService(model.ModuleAds, repo, AdSchema, []string{
		"title", "page_name", "category", "ad_link", "platform", "country", "is_active",
	})
}

// Resource 资源名
func (s *CatalogService[T]) Resource() string {
	return s.resource
}

// Engine 查询引擎 (导出复用)
func (s *CatalogService[T]) Engine() *rq.Engine[T] {
	return s.engine
}

// Meta 列表页元数据
func (s *CatalogService[T]) Meta() ResourceMeta {
	return ResourceMeta{
		Resource:     s.resource,
		Fields:       s.engine.FieldNames(),
		SearchFields: s.schema.SearchFields,
		DateField:    s.schema.DateField,
		StatusTabs:   s.engine.StatusTabNames(),
		QuickFilters: s.engine.QuickFilterNames(),
	}
}

// List 列表查询
func (s *CatalogService[T]) List(ctx context.Context, state rq.State) (rq.Result[T], error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return rq.Result[T]{}, err
	}

	start := time.Now()
	res, err := s.engine.Query(records, state)
	if err != nil {
		return rq.Result[T]{}, err
	}
	metrics.CatalogQueryDuration.WithLabelValues(s.resource).Observe(time.Since(start).Seconds())
	metrics.CatalogQueryMatched.WithLabelValues(s.resource).Observe(float64(res.TotalMatched))

	return res, nil
}

// All 按查询条件返回全部匹配记录 (忽略分页)
func (s *CatalogService[T]) All(ctx context.Context, state rq.State) ([]T, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.All(records, state)
}

// Get 详情
func (s *CatalogService[T]) Get(ctx context.Context, id int64) (*T, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	return record, nil
}

// Create 手工新增，externalID 必须唯一
func (s *CatalogService[T]) Create(ctx context.Context, externalID string, record *T) error {
	if externalID == "" {
		return ErrExternalIDRequired
	}
	existing, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrExternalIDExists
	}
	return s.repo.Create(ctx, record)
}

// Update 更新白名单内的字段
func (s *CatalogService[T]) Update(ctx context.Context, id int64, fields map[string]interface{}) (*T, error) {
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	for col := range fields {
		if !s.editable[col] {
			return nil, fmt.Errorf("%w: %s", ErrFieldNotEditable, col)
		}
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete 软删除
func (s *CatalogService[T]) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// ==================== 错误定义 ====================

var (
	ErrRecordNotFound     = errors.New("记录不存在")
	ErrExternalIDRequired = errors.New("external_id 不能为空")
	ErrExternalIDExists   = errors.New("external_id 已存在")
	ErrNoFieldsToUpdate   = errors.New("没有需要更新的字段")
	ErrFieldNotEditable   = errors.New("字段不可修改")
)
