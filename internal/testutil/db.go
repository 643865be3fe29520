// Package testutil 测试用 sqlite 内存库
package testutil

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dropship_admin_v1/internal/model"
)

// sqlite 不支持 text[]，products / ads 用测试结构建表，读写仍走真实模型

type productRow struct {
	model.BaseModel
	model.AuditMixin
	ExternalID      string `gorm:"size:64;uniqueIndex;not null"`
	Title           string
	Category        string
	SupplierName    string
	SupplierURL     string
	ImageURL        string
	Price           float64
	Cost            float64
	AvgProfitMargin float64
	Rating          float64
	OrdersCount     int
	IsTrending      bool
	IsWinning       bool
	Status          string
	Tags            string `gorm:"type:text"`
	SyncedAt        *time.Time
}

func (productRow) TableName() string { return "products" }

type adRow struct {
	model.BaseModel
	model.AuditMixin
	ExternalID  string `gorm:"size:64;uniqueIndex;not null"`
	Title       string
	PageName    string
	Category    string
	AdLink      string
	Platform    string
	Country     string
	Likes       int
	Comments    int
	Shares      int
	DaysRunning int
	IsActive    bool
	StartedAt   *time.Time
	Tags        string `gorm:"type:text"`
	SyncedAt    *time.Time
}

func (adRow) TableName() string { return "ads" }

// SetupDB 创建 sqlite 内存库并建好全部表
// 内存库按连接隔离，连接池限制为 1
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&model.SysUser{},
		&model.Role{},
		&model.Plan{},
		&model.AppModule{},
		&model.ModulePermission{},
		&model.Category{},
		&model.SavedView{},
		&productRow{},
		&adRow{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}
