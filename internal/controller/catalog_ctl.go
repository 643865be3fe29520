package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/service"
	"dropship_admin_v1/pkg/permission"
)

// ==================== CatalogController 目录控制器 ====================

// CatalogController 类目 / 商品 / 广告共用的列表与维护接口
type CatalogController[T any] struct {
	svc       *service.CatalogService[T]
	exportSvc *service.ExportService

	// prepare 清空客户端传入的主键并返回 external_id
	prepare func(*T) string
}

// NewCatalogController 创建目录控制器
func NewCatalogController[T any](svc *service.CatalogService[T], exportSvc *service.ExportService, prepare func(*T) string) *CatalogController[T] {
	return &CatalogController[T]{svc: svc, exportSvc: exportSvc, prepare: prepare}
}

// NewCategoryController 类目
func NewCategoryController(svc *service.CatalogService[model.Category], exportSvc *service.ExportService) *CatalogController[model.Category] {
	return NewCatalogController(svc, exportSvc, func(c *model.Category) string {
		c.ID = 0
		return c.ExternalID
	})
}

// NewProductController 商品
func NewProductController(svc *service.CatalogService[model.Product], exportSvc *service.ExportService) *CatalogController[model.Product] {
	return NewCatalogController(svc, exportSvc, func(p *model.Product) string {
		p.ID = 0
		return p.ExternalID
	})
}

// NewAdController 广告
func NewAdController(svc *service.CatalogService[model.Ad], exportSvc *service.ExportService) *CatalogController[model.Ad] {
	return NewCatalogController(svc, exportSvc, func(a *model.Ad) string {
		a.ID = 0
		return a.ExternalID
	})
}

// List 列表查询
// @Summary 目录列表 (categories / products / ads)
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param resource path string true "categories | products | ads"
// @Param status query string false "状态页签"
// @Param search query string false "搜索关键词"
// @Param quick_filter query string false "快捷筛选"
// @Param from query string false "开始日期 YYYY-MM-DD"
// @Param to query string false "结束日期 YYYY-MM-DD"
// @Param sort query string false "排序字段"
// @Param order query string false "asc | desc"
// @Param page query int false "页码，从 0 开始"
// @Param page_size query int false "每页数量"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/{resource} [get]
func (c *CatalogController[T]) List(ctx *gin.Context) {
	var q dto.ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, err)
		return
	}
	state, err := q.ToState(ctx.QueryMap("filter"))
	if err != nil {
		fail(ctx, err)
		return
	}

	res, err := c.svc.List(ctx.Request.Context(), state)
	if err != nil {
		fail(ctx, err)
		return
	}

	resp := dto.ListResponse[T]{
		List:      res.Page,
		Page:      state.Page,
		PageSize:  state.PageSize,
		PageCount: res.PageCount,
		Total:     res.TotalMatched,
	}
	if access, found := middleware.GetModuleAccess(ctx); found {
		resp.Access = string(access.AccessLevel)
		resp.Limit = access.LimitCount
	}
	ok(ctx, "", resp)
}

// Meta 列表页可用字段、页签与快捷筛选
// @Summary 目录元数据
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param resource path string true "categories | products | ads"
// @Success 200 {object} service.ResourceMeta
// @Router /api/{resource}/meta [get]
func (c *CatalogController[T]) Meta(ctx *gin.Context) {
	ok(ctx, "", c.svc.Meta())
}

// Get 详情
// @Summary 目录记录详情
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param resource path string true "categories | products | ads"
// @Param id path int true "记录 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/{resource}/{id} [get]
func (c *CatalogController[T]) Get(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	record, err := c.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "", record)
}

// Create 手工新增
// @Summary 新增目录记录
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "categories | products | ads"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/{resource} [post]
func (c *CatalogController[T]) Create(ctx *gin.Context) {
	var record T
	if err := ctx.ShouldBindJSON(&record); err != nil {
		badRequest(ctx, err)
		return
	}

	if err := c.svc.Create(ctx.Request.Context(), c.prepare(&record), &record); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "创建成功", record)
}

// Update 修改可编辑字段
// @Summary 修改目录记录
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "categories | products | ads"
// @Param id path int true "记录 ID"
// @Param request body dto.UpdateRecordRequest true "列名 -> 新值"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/{resource}/{id} [patch]
func (c *CatalogController[T]) Update(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req dto.UpdateRecordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	record, err := c.svc.Update(ctx.Request.Context(), id, req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "更新成功", record)
}

// Delete 删除
// @Summary 删除目录记录
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param resource path string true "categories | products | ads"
// @Param id path int true "记录 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/{resource}/{id} [delete]
func (c *CatalogController[T]) Delete(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.svc.Delete(ctx.Request.Context(), id); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "删除成功", nil)
}

// Export 导出当前查询的全部匹配记录为 CSV
// 查询参数与列表相同，受限浏览的角色不可导出
// @Summary 导出 CSV
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param resource path string true "categories | products | ads"
// @Success 200 {object} dto.ExportResponse
// @Failure 403 {object} map[string]interface{}
// @Router /api/{resource}/export [post]
func (c *CatalogController[T]) Export(ctx *gin.Context) {
	if access, found := middleware.GetModuleAccess(ctx); found && access.AccessLevel != permission.AccessFull {
		ctx.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": "受限浏览不可导出",
		})
		return
	}

	var q dto.ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, err)
		return
	}
	state, err := q.ToState(ctx.QueryMap("filter"))
	if err != nil {
		fail(ctx, err)
		return
	}

	resp, err := service.ExportCSV(ctx.Request.Context(), c.exportSvc, c.svc, state)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "导出成功", resp)
}
