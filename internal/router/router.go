package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"dropship_admin_v1/internal/controller"
	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/service"
)

// Deps 路由依赖
type Deps struct {
	Log    *zap.Logger
	Access middleware.AccessChecker

	// ExportDir 本地存储目录，非空时以 service.LocalPublicPrefix 挂载静态文件
	ExportDir string

	Auth        *controller.AuthController
	Users       *controller.UserController
	Permissions *controller.PermissionController
	Categories  *controller.CatalogController[model.Category]
	Products    *controller.CatalogController[model.Product]
	Ads         *controller.CatalogController[model.Ad]
	Views       *controller.SavedViewController
	Sync        *controller.SyncController
}

// NewEngine 创建 gin 引擎并注册全局中间件与路由
func NewEngine(deps *Deps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.Metrics(),
	)

	InitRoutes(r, deps)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, deps *Deps) {
	// 1. 基础设施
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// 访问 http://localhost:8080/swagger/index.html 查看文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if deps.ExportDir != "" {
		r.Static(service.LocalPublicPrefix, deps.ExportDir)
	}

	api := r.Group("/api")

	// 2. 认证 (无需登录)
	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.RefreshToken)
	}

	// 3. 以下均需登录
	secured := api.Group("", middleware.JWTAuth(), middleware.AuditContext())
	{
		secured.GET("/auth/profile", deps.Auth.GetProfile)
		secured.PUT("/auth/password", deps.Auth.ChangePassword)

		users := secured.Group("/users", middleware.RequireModule(deps.Access, model.ModuleUsers))
		{
			users.GET("", deps.Users.ListUsers)
			users.POST("", middleware.RequireFullAccess(), deps.Users.CreateUser)
			users.PUT("/:id", middleware.RequireFullAccess(), deps.Users.UpdateUser)
			users.DELETE("/:id", middleware.RequireFullAccess(), deps.Users.DeleteUser)
		}

		// 角色 / 套餐 / 权限集
		perm := secured.Group("", middleware.RequireModule(deps.Access, model.ModulePermissions))
		{
			perm.GET("/modules", deps.Permissions.ListModules)
			perm.GET("/roles", deps.Permissions.ListRoles)
			perm.POST("/roles", middleware.RequireFullAccess(), deps.Permissions.CreateRole)
			perm.DELETE("/roles/:id", middleware.RequireFullAccess(), deps.Permissions.DeleteRole)
			perm.GET("/plans", deps.Permissions.ListPlans)
			perm.POST("/plans", middleware.RequireFullAccess(), deps.Permissions.CreatePlan)

			sets := perm.Group("/permissions/:owner/:id")
			{
				sets.GET("", deps.Permissions.GetSet)
				sets.POST("/init", middleware.RequireFullAccess(), deps.Permissions.InitSet)
				sets.PATCH("/modules/:module", middleware.RequireFullAccess(), deps.Permissions.Mutate)
				sets.PATCH("/modules/:module/limit", middleware.RequireFullAccess(), deps.Permissions.SetLimit)
				sets.POST("/bulk", middleware.RequireFullAccess(), deps.Permissions.Bulk)
			}
		}

		// 目录
		registerCatalog(secured.Group("/categories", middleware.RequireModule(deps.Access, model.ModuleCategories)), deps.Categories)
		registerCatalog(secured.Group("/products", middleware.RequireModule(deps.Access, model.ModuleProducts)), deps.Products)
		registerCatalog(secured.Group("/ads", middleware.RequireModule(deps.Access, model.ModuleAds)), deps.Ads)

		views := secured.Group("/views", middleware.RequireModule(deps.Access, model.ModuleSavedViews))
		{
			views.GET("", deps.Views.List)
			views.POST("", deps.Views.Create)
			views.DELETE("/:id", deps.Views.Delete)
		}

		// 手动同步，要求目标模块 full_access，按资源限流
		secured.POST("/sync/:resource",
			middleware.RequireSyncAccess(deps.Access, model.ModuleCategories, model.ModuleProducts, model.ModuleAds),
			middleware.SyncRateLimit(middleware.Cooldown()),
			deps.Sync.Sync,
		)
	}
}

// registerCatalog 目录资源路由，读操作受模块权限约束，写操作及导出要求 full_access
func registerCatalog[T any](g *gin.RouterGroup, ctl *controller.CatalogController[T]) {
	g.GET("", ctl.List)
	g.GET("/meta", ctl.Meta)
	g.GET("/:id", ctl.Get)
	g.POST("", middleware.RequireFullAccess(), ctl.Create)
	g.POST("/export", ctl.Export)
	g.PATCH("/:id", middleware.RequireFullAccess(), ctl.Update)
	g.DELETE("/:id", middleware.RequireFullAccess(), ctl.Delete)
}
