package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dropship_admin_v1/internal/config"
	"dropship_admin_v1/internal/controller"
	"dropship_admin_v1/internal/middleware"
	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/internal/repository"
	"dropship_admin_v1/internal/router"
	"dropship_admin_v1/internal/service"
	"dropship_admin_v1/internal/task"
	"dropship_admin_v1/pkg/database"
	"dropship_admin_v1/pkg/logger"
	"dropship_admin_v1/pkg/upstream"
)

func main() {
	configPath := flag.String("config", "", "config.yaml 路径")
	flag.Parse()

	// 1. 配置与日志
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	zl, err := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = zl.Sync() }()

	gin.SetMode(cfg.Server.Mode)
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
		Issuer:          cfg.JWT.Issuer,
	})

	// 2. 初始化数据库
	db, err := initDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}

	// 3. 初始化依赖
	deps, err := initDependencies(cfg, db, zl)
	if err != nil {
		zl.Fatal("dependency init failed", zap.Error(err))
	}

	// 4. 启动定时任务
	if err := deps.Tasks.Start(); err != nil {
		zl.Fatal("task start failed", zap.Error(err))
	}

	// 5. 启动服务
	startServer(cfg, deps, zl)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB       *gorm.DB
	Repos    *Repositories
	Services *Services
	Tasks    *task.TaskManager
	Engine   *gin.Engine
}

// Repositories 仓库集合
type Repositories struct {
	User       repository.UserRepository
	Permission repository.PermissionRepository
	SavedView  repository.SavedViewRepository
	Category   repository.CatalogRepository[model.Category]
	Product    repository.CatalogRepository[model.Product]
	Ad         repository.CatalogRepository[model.Ad]
}

// Services 服务集合
type Services struct {
	User       *service.UserService
	Permission *service.PermissionService
	Category   *service.CatalogService[model.Category]
	Product    *service.CatalogService[model.Product]
	Ad         *service.CatalogService[model.Ad]
	SavedView  *service.SavedViewService
	Export     *service.ExportService
	Sync       *service.CatalogSyncService
	Storage    service.StorageProvider
}

// ==================== 初始化函数 ====================

// initDatabase 连接数据库、建表并注册审计回调
func initDatabase(cfg *config.Config, zl *zap.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database, cfg.Log.Level, zl)
	if err != nil {
		return nil, err
	}

	err = database.Migrate(db,
		// 员工 / 权限
		&model.SysUser{}, &model.Role{}, &model.Plan{}, &model.AppModule{}, &model.ModulePermission{},
		// 目录镜像
		&model.Category{}, &model.Product{}, &model.Ad{},
		// 视图
		&model.SavedView{},
	)
	if err != nil {
		return nil, err
	}

	middleware.RegisterAuditCallbacks(db)
	return db, nil
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, zl *zap.Logger) (*Dependencies, error) {
	ctx := context.Background()

	// -------- Repo 层 --------
	repos := &Repositories{
		User:       repository.NewUserRepository(db),
		Permission: repository.NewPermissionRepository(db),
		SavedView:  repository.NewSavedViewRepository(db),
		Category:   repository.NewCategoryRepository(db),
		Product:    repository.NewProductRepository(db),
		Ad:         repository.NewAdRepository(db),
	}

	// -------- 服务层 --------
	services, err := initServices(cfg, repos, zl)
	if err != nil {
		return nil, err
	}

	// 模块 / 系统角色 / 超管账号
	if err := services.Permission.Bootstrap(ctx); err != nil {
		return nil, err
	}
	if err := services.User.EnsureSuperAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return nil, err
	}

	// -------- 定时任务 --------
	tasks := task.NewTaskManager(&task.TaskManagerDeps{
		Syncer: services.Sync,
		Log:    zl,
	}, &task.TaskManagerConfig{
		CatalogEnabled: cfg.Sync.Enabled,
		CatalogCron:    cfg.Sync.Cron,
	})

	// -------- Controller 层 --------
	routerDeps := &router.Deps{
		Log:         zl,
		Access:      services.Permission,
		Auth:        controller.NewAuthController(services.User, services.Permission),
		Users:       controller.NewUserController(services.User),
		Permissions: controller.NewPermissionController(services.Permission),
		Categories:  controller.NewCategoryController(services.Category, services.Export),
		Products:    controller.NewProductController(services.Product, services.Export),
		Ads:         controller.NewAdController(services.Ad, services.Export),
		Views:       controller.NewSavedViewController(services.SavedView),
		Sync:        controller.NewSyncController(services.Sync, tasks),
	}
	if local, ok := services.Storage.(*service.LocalStorage); ok {
		routerDeps.ExportDir = local.BasePath()
	}

	return &Dependencies{
		DB:       db,
		Repos:    repos,
		Services: services,
		Tasks:    tasks,
		Engine:   router.NewEngine(routerDeps),
	}, nil
}

// initServices 初始化所有服务
func initServices(cfg *config.Config, repos *Repositories, zl *zap.Logger) (*Services, error) {
	storage, err := service.NewStorageProvider(cfg.Storage)
	if err != nil {
		return nil, err
	}

	categorySvc, err := service.NewCategoryService(repos.Category)
	if err != nil {
		return nil, err
	}
	productSvc, err := service.NewProductService(repos.Product)
	if err != nil {
		return nil, err
	}
	adSvc, err := service.NewAdService(repos.Ad)
	if err != nil {
		return nil, err
	}

	client := upstream.New(upstream.Config{
		BaseURL:  cfg.Upstream.BaseURL,
		APIKey:   cfg.Upstream.APIKey,
		Timeout:  cfg.Upstream.Timeout,
		PageSize: cfg.Upstream.PageSize,
		Debug:    cfg.Upstream.Debug,
	}, zl)

	return &Services{
		User:       service.NewUserService(repos.User, repos.Permission, zl),
		Permission: service.NewPermissionService(repos.Permission, repos.User, zl),
		Category:   categorySvc,
		Product:    productSvc,
		Ad:         adSvc,
		SavedView: service.NewSavedViewService(repos.SavedView, map[string]service.StateValidator{
			categorySvc.Resource(): categorySvc.Engine(),
			productSvc.Resource():  productSvc.Engine(),
			adSvc.Resource():       adSvc.Engine(),
		}),
		Export:  service.NewExportService(storage, zl),
		Sync:    service.NewCatalogSyncService(client, repos.Category, repos.Product, repos.Ad, zl),
		Storage: storage,
	}, nil
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(cfg *config.Config, deps *Dependencies, zl *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: deps.Engine,
	}

	// 异步启动服务
	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server start failed", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	deps.Tasks.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := deps.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zl.Info("server exited")
}
