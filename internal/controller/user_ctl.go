package controller

import (
	"github.com/gin-gonic/gin"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/service"
)

// UserController 员工账号管理 (需要 users 模块权限)
type UserController struct {
	userService *service.UserService
}

// NewUserController 创建员工控制器
func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// ListUsers 员工列表
// @Summary 员工列表
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "关键词"
// @Param role query string false "角色"
// @Param status query int false "状态"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.UserListResponse
// @Router /api/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	var req dto.UserListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.userService.ListUsers(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "", resp)
}

// CreateUser 创建员工
// @Summary 创建员工
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "员工信息"
// @Success 200 {object} dto.UserInfo
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	user, err := c.userService.CreateUser(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "创建成功", user)
}

// UpdateUser 更新员工
// @Summary 更新员工
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工 ID"
// @Param request body dto.UpdateUserRequest true "员工信息"
// @Success 200 {object} dto.UserInfo
// @Failure 404 {object} map[string]interface{}
// @Router /api/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req dto.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	user, err := c.userService.UpdateUser(ctx.Request.Context(), id, &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "更新成功", user)
}

// DeleteUser 删除员工
// @Summary 删除员工
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param id path int true "员工 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	if err := c.userService.DeleteUser(ctx.Request.Context(), id); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "删除成功", nil)
}
