package controller

import (
	"github.com/gin-gonic/gin"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/service"
)

// ==================== PermissionController 权限控制器 ====================

// PermissionController 角色 / 套餐及其模块权限
// 路径中的 :owner 为 roles 或 plans
type PermissionController struct {
	permissionService *service.PermissionService
}

// NewPermissionController 创建权限控制器
func NewPermissionController(permissionService *service.PermissionService) *PermissionController {
	return &PermissionController{permissionService: permissionService}
}

// ==================== 角色 / 套餐 / 模块 ====================

// ListRoles 角色列表
// @Summary 角色列表
// @Tags Permission
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Role
// @Router /api/roles [get]
func (c *PermissionController) ListRoles(ctx *gin.Context) {
	roles, err := c.permissionService.ListRoles(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "", roles)
}

// CreateRole 创建角色 (权限初始化为全部 locked)
// @Summary 创建角色
// @Tags Permission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRoleRequest true "角色"
// @Success 200 {object} model.Role
// @Failure 409 {object} map[string]interface{}
// @Router /api/roles [post]
func (c *PermissionController) CreateRole(ctx *gin.Context) {
	var req dto.CreateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	role, err := c.permissionService.CreateRole(ctx.Request.Context(), req.Name, req.Description)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "创建成功", role)
}

// DeleteRole 删除角色
// @Summary 删除角色
// @Tags Permission
// @Produce json
// @Security BearerAuth
// @Param id path int true "角色 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/roles/{id} [delete]
func (c *PermissionController) DeleteRole(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}
	if err := c.permissionService.DeleteRole(ctx.Request.Context(), id); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "删除成功", nil)
}

// ListPlans 套餐列表
// @Summary 套餐列表
// @Tags Permission
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Plan
// @Router /api/plans [get]
func (c *PermissionController) ListPlans(ctx *gin.Context) {
	plans, err := c.permissionService.ListPlans(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "", plans)
}

// CreatePlan 创建套餐
// @Summary 创建套餐
// @Tags Permission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePlanRequest true "套餐"
// @Success 200 {object} model.Plan
// @Failure 409 {object} map[string]interface{}
// @Router /api/plans [post]
func (c *PermissionController) CreatePlan(ctx *gin.Context) {
	var req dto.CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	plan := &model.Plan{
		Code:       req.Code,
		Name:       req.Name,
		PriceCents: req.PriceCents,
		IsActive:   true,
	}
	if err := c.permissionService.CreatePlan(ctx.Request.Context(), plan); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "创建成功", plan)
}

// ListModules 可授权模块
// @Summary 模块列表
// @Tags Permission
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.AppModule
// @Router /api/modules [get]
func (c *PermissionController) ListModules(ctx *gin.Context) {
	modules, err := c.permissionService.ListModules(ctx.Request.Context())
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "", modules)
}

// ==================== 权限集 ====================

// GetSet 完整权限集
// @Summary 角色 / 套餐的权限集
// @Tags Permission
// @Produce json
// @Security BearerAuth
// @Param owner path string true "roles 或 plans"
// @Param id path int true "角色 / 套餐 ID"
// @Success 200 {object} dto.PermissionSetResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/permissions/{owner}/{id} [get]
func (c *PermissionController) GetSet(ctx *gin.Context) {
	ownerType, ownerID, valid := parseOwner(ctx)
	if !valid {
		return
	}

	set, err := c.permissionService.GetSet(ctx.Request.Context(), ownerType, ownerID)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "", toSetResponse(ownerType, ownerID, set))
}

// InitSet 重置为默认权限
// @Summary 初始化权限集
// @Tags Permission
// @Produce json
// @Security BearerAuth
// @Param owner path string true "roles 或 plans"
// @Param id path int true "角色 / 套餐 ID"
// @Success 200 {object} dto.PermissionSetResponse
// @Router /api/permissions/{owner}/{id}/init [post]
func (c *PermissionController) InitSet(ctx *gin.Context) {
	ownerType, ownerID, valid := parseOwner(ctx)
	if !valid {
		return
	}

	set, err := c.permissionService.InitSet(ctx.Request.Context(), ownerType, ownerID)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "初始化成功", toSetResponse(ownerType, ownerID, set))
}

// Mutate 切换单个模块的单个开关
// @Summary 修改模块权限开关
// @Tags Permission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param owner path string true "roles 或 plans"
// @Param id path int true "角色 / 套餐 ID"
// @Param module path string true "模块编码"
// @Param request body dto.MutationRequest true "field: view | view_details | limited_view | lock_page | hidden"
// @Success 200 {object} dto.ModulePermissionVO
// @Failure 400 {object} map[string]interface{}
// @Router /api/permissions/{owner}/{id}/modules/{module} [patch]
func (c *PermissionController) Mutate(ctx *gin.Context) {
	ownerType, ownerID, valid := parseOwner(ctx)
	if !valid {
		return
	}

	var req dto.MutationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	row, err := c.permissionService.ApplyMutation(ctx.Request.Context(), ownerType, ownerID, ctx.Param("module"), req.Field, *req.Value)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "更新成功", dto.ToModulePermissionVO(row))
}

// SetLimit 修改受限浏览条数
// @Summary 修改 limit_count
// @Tags Permission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param owner path string true "roles 或 plans"
// @Param id path int true "角色 / 套餐 ID"
// @Param module path string true "模块编码"
// @Param request body dto.LimitRequest true "limit_count, null 表示不限"
// @Success 200 {object} dto.ModulePermissionVO
// @Router /api/permissions/{owner}/{id}/modules/{module}/limit [patch]
func (c *PermissionController) SetLimit(ctx *gin.Context) {
	ownerType, ownerID, valid := parseOwner(ctx)
	if !valid {
		return
	}

	var req dto.LimitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	row, err := c.permissionService.SetLimit(ctx.Request.Context(), ownerType, ownerID, ctx.Param("module"), req.LimitCount)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "更新成功", dto.ToModulePermissionVO(row))
}

// Bulk 全选 / 全不选
// @Summary 批量设置权限
// @Tags Permission
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param owner path string true "roles 或 plans"
// @Param id path int true "角色 / 套餐 ID"
// @Param request body dto.BulkRequest true "mode: select_all | deselect_all"
// @Success 200 {object} dto.PermissionSetResponse
// @Router /api/permissions/{owner}/{id}/bulk [post]
func (c *PermissionController) Bulk(ctx *gin.Context) {
	ownerType, ownerID, valid := parseOwner(ctx)
	if !valid {
		return
	}

	var req dto.BulkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	set, err := c.permissionService.ApplyBulk(ctx.Request.Context(), ownerType, ownerID, req.Mode)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "更新成功", toSetResponse(ownerType, ownerID, set))
}

// ==================== 辅助函数 ====================

// parseOwner 解析 :owner 与 :id，失败时已写入响应
func parseOwner(ctx *gin.Context) (model.OwnerType, int64, bool) {
	var ownerType model.OwnerType
	switch ctx.Param("owner") {
	case "roles":
		ownerType = model.OwnerRole
	case "plans":
		ownerType = model.OwnerPlan
	default:
		fail(ctx, service.ErrInvalidOwnerType)
		return "", 0, false
	}

	id := parseID(ctx, "id")
	if id == 0 {
		return "", 0, false
	}
	return ownerType, id, true
}

func toSetResponse(ownerType model.OwnerType, ownerID int64, set []model.ModulePermission) dto.PermissionSetResponse {
	return dto.PermissionSetResponse{
		OwnerType: string(ownerType),
		OwnerID:   ownerID,
		Modules:   dto.ToModulePermissionVOs(set),
	}
}
