package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/repository"
	"dropship_admin_v1/pkg/metrics"
	"dropship_admin_v1/pkg/upstream"
)

// ==================== CatalogSyncService 上游同步 ====================

// CatalogSyncService 从上游 REST 服务拉取全部分页并按 external_id 写入本地镜像
// 同一资源同一时刻只允许一个同步在执行
type CatalogSyncService struct {
	client     *upstream.Client
	categories repository.CatalogRepository[model.Category]
	products   repository.CatalogRepository[model.Product]
	ads        repository.CatalogRepository[model.Ad]
	log        *zap.Logger

	running sync.Map // resource -> *sync.Mutex
}

// NewCatalogSyncService 创建同步服务
func NewCatalogSyncService(
	client *upstream.Client,
	categories repository.CatalogRepository[model.Category],
	products repository.CatalogRepository[model.Product],
	ads repository.CatalogRepository[model.Ad],
	log *zap.Logger,
) *CatalogSyncService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogSyncService{
		client:     client,
		categories: categories,
		products:   products,
		ads:        ads,
		log:        log.Named("sync"),
	}
}

// SyncResource 同步单个资源
func (s *CatalogSyncService) SyncResource(ctx context.Context, resource upstream.Resource) (*dto.SyncResponse, error) {
	actual, _ := s.running.LoadOrStore(resource, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, fmt.Errorf("%w: %s", ErrSyncInProgress, resource)
	}
	defer mu.Unlock()

	start := time.Now()
	fetched, upserted, err := s.syncResource(ctx, resource, start)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues(string(resource), "error").Inc()
		s.log.Error("sync failed", zap.String("resource", string(resource)), zap.Error(err))
		return nil, err
	}

	metrics.SyncRunsTotal.WithLabelValues(string(resource), "success").Inc()
	metrics.SyncRecordsTotal.WithLabelValues(string(resource)).Add(float64(fetched))

	elapsed := time.Since(start)
	s.log.Info("sync finished",
		zap.String("resource", string(resource)),
		zap.Int("fetched", fetched),
		zap.Int64("upserted", upserted),
		zap.Duration("elapsed", elapsed),
	)
	return &dto.SyncResponse{
		Resource: string(resource),
		Fetched:  fetched,
		Upserted: upserted,
		Duration: elapsed.Round(time.Millisecond).String(),
	}, nil
}

// SyncAll 依次同步全部资源，单个资源失败不影响其他资源
func (s *CatalogSyncService) SyncAll(ctx context.Context) error {
	var errs []error
	for _, r := range upstream.Resources {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.SyncResource(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *CatalogSyncService) syncResource(ctx context.Context, resource upstream.Resource, now time.Time) (int, int64, error) {
	switch resource {
	case upstream.ResourceCategories:
		return syncInto(ctx, s.client, resource, s.categories, func(d upstream.Category) (model.Category, bool) {
			return ToCategoryModel(d, now), d.ID != ""
		})
	case upstream.ResourceProducts:
		return syncInto(ctx, s.client, resource, s.products, func(d upstream.Product) (model.Product, bool) {
			return ToProductModel(d, now), d.ID != ""
		})
	case upstream.ResourceAds:
		return syncInto(ctx, s.client, resource, s.ads, func(d upstream.Ad) (model.Ad, bool) {
			return ToAdModel(d, now), d.ID != ""
		})
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
}

// syncInto 拉取全部分页，转换后批量 upsert；没有 ID 的上游记录被跳过
func syncInto[D any, M any](
	ctx context.Context,
	client *upstream.Client,
	resource upstream.Resource,
	repo repository.CatalogRepository[M],
	convert func(D) (M, bool),
) (int, int64, error) {
	items, err := upstream.FetchAll[D](ctx, client, resource)
	if err != nil {
		return 0, 0, err
	}

	records := make([]M, 0, len(items))
	for _, it := range items {
		if m, ok := convert(it); ok {
			records = append(records, m)
		}
	}

	upserted, err := repo.BatchUpsert(ctx, records)
	if err != nil {
		return len(items), 0, fmt.Errorf("写入 %s 失败: %w", resource, err)
	}
	return len(items), upserted, nil
}

var ErrSyncInProgress = errors.New("同步正在进行中")
