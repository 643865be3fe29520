package task

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/pkg/upstream"
)

// CatalogSyncer 单资源同步 (由 service.CatalogSyncService 实现)
type CatalogSyncer interface {
	SyncResource(ctx context.Context, resource upstream.Resource) (*dto.SyncResponse, error)
}

// CatalogSyncTask 定时从上游拉取类目 / 商品 / 广告
// 与手动同步共用限流器：冷却期内刚被手动同步过的资源本轮跳过
type CatalogSyncTask struct {
	syncer  CatalogSyncer
	spec    string
	timeout time.Duration
	cron    *cron.Cron
	log     *zap.Logger

	wg sync.WaitGroup
}

// NewCatalogSyncTask 创建同步任务，spec 为秒级 cron 表达式
func NewCatalogSyncTask(syncer CatalogSyncer, spec string, log *zap.Logger) *CatalogSyncTask {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogSyncTask{
		syncer:  syncer,
		spec:    spec,
		timeout: 30 * time.Minute,
		cron:    cron.New(cron.WithSeconds()),
		log:     log.Named("CatalogSyncTask"),
	}
}

// Start 注册并启动定时任务
func (t *CatalogSyncTask) Start() error {
	if _, err := t.cron.AddFunc(t.spec, t.run); err != nil {
		return err
	}
	t.cron.Start()
	t.log.Info("started", zap.String("cron", t.spec))
	return nil
}

// Stop 停止任务，等待正在执行的同步结束
func (t *CatalogSyncTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	t.wg.Wait()
	t.log.Info("stopped")
}

// RunNow 异步执行一轮同步
func (t *CatalogSyncTask) RunNow() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run()
	}()
}

func (t *CatalogSyncTask) run() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	t.SyncOnce(ctx)
}

// SyncOnce 依次同步每个资源，返回实际执行同步的资源数
func (t *CatalogSyncTask) SyncOnce(ctx context.Context) int {
	cooldown := middleware.Cooldown()
	executed := 0

	for _, r := range upstream.Resources {
		if ctx.Err() != nil {
			t.log.Warn("sync round interrupted", zap.Error(ctx.Err()))
			break
		}

		if wait := cooldown.Remaining(string(r)); wait > 0 {
			t.log.Info("skip recently synced resource",
				zap.String("resource", string(r)),
				zap.Duration("retry_after", wait),
			)
			continue
		}

		if _, err := t.syncer.SyncResource(ctx, r); err != nil {
			t.log.Error("resource sync failed", zap.String("resource", string(r)), zap.Error(err))
			continue
		}
		cooldown.Touch(string(r))
		executed++
	}
	return executed
}
