package task

import (
	"go.uber.org/zap"
)

// TaskManager 统一管理后台定时任务
type TaskManager struct {
	catalogTask *CatalogSyncTask
	log         *zap.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Syncer CatalogSyncer
	Log    *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	CatalogEnabled bool
	CatalogCron    string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		CatalogEnabled: true,
		CatalogCron:    "0 */30 * * * *",
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	tm := &TaskManager{log: log.Named("TaskManager")}

	if cfg.CatalogEnabled && deps.Syncer != nil {
		tm.catalogTask = NewCatalogSyncTask(deps.Syncer, cfg.CatalogCron, log)
	}
	return tm
}

// Start 启动所有已启用的任务
func (tm *TaskManager) Start() error {
	if tm.catalogTask != nil {
		if err := tm.catalogTask.Start(); err != nil {
			return err
		}
	}
	tm.log.Info("tasks started", zap.Any("status", tm.Status()))
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.catalogTask != nil {
		tm.catalogTask.Stop()
	}
	tm.log.Info("tasks stopped")
}

// TriggerCatalogSync 立即执行一轮目录同步
func (tm *TaskManager) TriggerCatalogSync() error {
	if tm.catalogTask == nil {
		return ErrTaskDisabled
	}
	tm.catalogTask.RunNow()
	return nil
}

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"catalog": tm.catalogTask != nil,
	}
}

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
