package controller

import (
	"github.com/gin-gonic/gin"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/internal/service"
)

// SavedViewController 当前员工保存的查询条件
type SavedViewController struct {
	viewService *service.SavedViewService
}

// NewSavedViewController 创建视图控制器
func NewSavedViewController(viewService *service.SavedViewService) *SavedViewController {
	return &SavedViewController{viewService: viewService}
}

// List 视图列表
// @Summary 已保存视图
// @Tags SavedView
// @Produce json
// @Security BearerAuth
// @Param resource query string false "categories | products | ads"
// @Success 200 {array} dto.SavedViewVO
// @Router /api/views [get]
func (c *SavedViewController) List(ctx *gin.Context) {
	views, err := c.viewService.List(ctx.Request.Context(), middleware.CurrentUser(ctx).UserID, ctx.Query("resource"))
	if err != nil {
		fail(ctx, err)
		return
	}

	list := make([]dto.SavedViewVO, len(views))
	for i := range views {
		list[i] = service.ToSavedViewVO(&views[i])
	}
	ok(ctx, "", list)
}

// Create 保存视图
// @Summary 保存视图
// @Tags SavedView
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSavedViewRequest true "视图"
// @Success 200 {object} dto.SavedViewVO
// @Failure 400 {object} map[string]interface{}
// @Router /api/views [post]
func (c *SavedViewController) Create(ctx *gin.Context) {
	var req dto.CreateSavedViewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	view, err := c.viewService.Create(ctx.Request.Context(), middleware.CurrentUser(ctx).UserID, &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "保存成功", service.ToSavedViewVO(view))
}

// Delete 删除视图
// @Summary 删除视图
// @Tags SavedView
// @Produce json
// @Security BearerAuth
// @Param id path int true "视图 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/views/{id} [delete]
func (c *SavedViewController) Delete(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.viewService.Delete(ctx.Request.Context(), middleware.CurrentUser(ctx).UserID, id); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "删除成功", nil)
}
