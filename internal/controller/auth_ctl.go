package controller

import (
	"github.com/gin-gonic/gin"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/internal/service"
)

// AuthController 员工登录 / Token 刷新 / 个人信息
type AuthController struct {
	userService       *service.UserService
	permissionService *service.PermissionService
}

// NewAuthController 创建认证控制器
func NewAuthController(userService *service.UserService, permissionService *service.PermissionService) *AuthController {
	return &AuthController{userService: userService, permissionService: permissionService}
}

// Login 员工登录
// @Summary 员工登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.userService.Login(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "登录成功", resp)
}

// RefreshToken 刷新 Token
// @Summary 刷新 Token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.userService.RefreshToken(ctx.Request.Context(), &req)
	if err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "刷新成功", resp)
}

// GetProfile 当前员工信息及模块权限
// @Summary 当前员工信息
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user, err := c.userService.GetProfile(ctx.Request.Context(), middleware.CurrentUser(ctx).UserID)
	if err != nil {
		fail(ctx, err)
		return
	}

	perms, err := c.permissionService.RolePermissions(ctx.Request.Context(), user.Role)
	if err != nil {
		fail(ctx, err)
		return
	}

	ok(ctx, "", dto.ProfileResponse{
		User:        user,
		Permissions: dto.ToModulePermissionVOs(perms),
	})
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "密码信息"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/auth/password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	if err := c.userService.ChangePassword(ctx.Request.Context(), middleware.CurrentUser(ctx).UserID, &req); err != nil {
		fail(ctx, err)
		return
	}
	ok(ctx, "密码修改成功", nil)
}
