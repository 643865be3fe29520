package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dropship_admin_v1/pkg/logger"
	"dropship_admin_v1/pkg/permission"
)

// ContextKeyAccess 当前请求所需模块的权限 (permission.ModulePermission)
const ContextKeyAccess = "module_access"

// AccessChecker 查询角色对模块的权限 (service.PermissionService 实现)
type AccessChecker interface {
	AccessFor(ctx context.Context, roleName, moduleCode string) (permission.ModulePermission, error)
}

// RequireModule 模块访问校验，需挂在 JWTAuth 之后
// hidden / locked 拒绝访问，limited_access 放行并把权限写入 Context
func RequireModule(checker AccessChecker, module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, ok := loadAccess(c, checker, module)
		if !ok {
			return
		}

		switch access.AccessLevel {
		case permission.AccessHidden:
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "模块不可见",
				"data":    gin.H{"module": module, "access_level": access.AccessLevel},
			})
			c.Abort()
			return
		case permission.AccessLocked:
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "模块已锁定，请升级权限",
				"data":    gin.H{"module": module, "access_level": access.AccessLevel},
			})
			c.Abort()
			return
		}

		auditModule(c, module)
		c.Set(ContextKeyAccess, access)
		c.Next()
	}
}

// RequireSyncAccess 手动同步要求对目标模块 full_access
// 路由参数 resource 为 all 时要求 modules 全部 full_access，不在 modules 内的资源交给控制器处理
func RequireSyncAccess(checker AccessChecker, modules ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resource := c.Param("resource")
		targets := modules
		if resource != "all" {
			if !slices.Contains(modules, resource) {
				c.Next()
				return
			}
			targets = []string{resource}
		}

		for _, module := range targets {
			access, ok := loadAccess(c, checker, module)
			if !ok {
				return
			}
			if access.AccessLevel != permission.AccessFull {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"code":    403,
					"message": "同步需要完整权限",
					"data":    gin.H{"module": module, "access_level": access.AccessLevel},
				})
				return
			}
		}
		c.Next()
	}
}

// loadAccess 按登录员工的角色读取模块权限，失败时已写入响应
func loadAccess(c *gin.Context, checker AccessChecker, module string) (permission.ModulePermission, bool) {
	p := CurrentUser(c)
	if p.Role == "" {
		abortUnauthorized(c, "未获取到用户角色")
		return permission.ModulePermission{}, false
	}

	access, err := checker.AccessFor(c.Request.Context(), p.Role, module)
	if err != nil {
		logger.L().Error("load module access failed",
			zap.Int64("user_id", p.UserID),
			zap.String("role", p.Role),
			zap.String("module", module),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "权限加载失败",
		})
		return permission.ModulePermission{}, false
	}
	return access, true
}

// GetModuleAccess 从 Context 获取模块权限
func GetModuleAccess(c *gin.Context) (permission.ModulePermission, bool) {
	if v, exists := c.Get(ContextKeyAccess); exists {
		access, ok := v.(permission.ModulePermission)
		return access, ok
	}
	return permission.ModulePermission{}, false
}

// RequireFullAccess 写操作要求 full_access，需挂在 RequireModule 之后
func RequireFullAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		access, ok := GetModuleAccess(c)
		if !ok || access.AccessLevel != permission.AccessFull {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "需要完整权限",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
