package controller

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/internal/service"
	"dropship_admin_v1/pkg/upstream"
)

// ResourceSyncer 单资源同步 (service.CatalogSyncService 实现)
type ResourceSyncer interface {
	SyncResource(ctx context.Context, resource upstream.Resource) (*dto.SyncResponse, error)
}

// RoundTrigger 触发一轮全量同步 (task.TaskManager 实现)
type RoundTrigger interface {
	TriggerCatalogSync() error
}

// SyncController 手动同步控制器，路由需挂 middleware.SyncRateLimit，失败时释放冷却
type SyncController struct {
	syncer  ResourceSyncer
	trigger RoundTrigger
}

// NewSyncController 创建同步控制器
func NewSyncController(syncer ResourceSyncer, trigger RoundTrigger) *SyncController {
	return &SyncController{syncer: syncer, trigger: trigger}
}

// Sync 立即从上游同步单个资源，resource 为 all 时异步同步全部资源
// @Summary 手动同步
// @Tags Sync
// @Produce json
// @Security BearerAuth
// @Param resource path string true "categories | products | ads | all"
// @Success 200 {object} dto.SyncResponse
// @Success 202 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "同步进行中"
// @Failure 429 {object} map[string]interface{} "限流中"
// @Failure 502 {object} map[string]interface{} "上游错误"
// @Router /api/sync/{resource} [post]
func (c *SyncController) Sync(ctx *gin.Context) {
	name := ctx.Param("resource")

	if name == "all" {
		if err := c.trigger.TriggerCatalogSync(); err != nil {
			middleware.Cooldown().Release(name)
			fail(ctx, err)
			return
		}
		ctx.JSON(http.StatusAccepted, gin.H{
			"code":    0,
			"message": "全量同步任务已启动",
		})
		return
	}

	resource, valid := upstream.ParseResource(name)
	if !valid {
		middleware.Cooldown().Release(name)
		fail(ctx, fmt.Errorf("%w: %s", service.ErrUnknownResource, name))
		return
	}

	resp, err := c.syncer.SyncResource(ctx.Request.Context(), resource)
	if err != nil {
		// 失败后允许立即重试
		middleware.Cooldown().Release(name)
		fail(ctx, err)
		return
	}
	ok(ctx, "同步完成", resp)
}
