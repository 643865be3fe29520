package model

import (
	"time"

	"github.com/lib/pq"
)

// 数据由 CatalogSyncService 从上游 REST 服务拉取，ExternalID 为上游主键

// RecordStatus 记录状态
type RecordStatus string

const (
	RecordActive   RecordStatus = "active"
	RecordInactive RecordStatus = "inactive"
	RecordDraft    RecordStatus = "draft"
)

// Category 商品类目
type Category struct {
	BaseModel
	AuditMixin
	ExternalID   string       `gorm:"size:64;uniqueIndex;not null" json:"external_id"`
	Name         string       `gorm:"size:255;index" json:"name"`
	Slug         string       `gorm:"size:255" json:"slug"`
	ParentName   string       `gorm:"size:255" json:"parent_name"`
	Description  string       `gorm:"type:text" json:"description"`
	ProductCount int          `gorm:"default:0" json:"product_count"`
	AvgMargin    float64      `gorm:"default:0" json:"avg_profit_margin"`
	Status       RecordStatus `gorm:"size:20;default:'active';index" json:"status"`
	SyncedAt     *time.Time   `json:"synced_at"`
}

func (Category) TableName() string { return "categories" }

// Product 精选商品 (hand-picked product)
type Product struct {
	BaseModel
	AuditMixin
	ExternalID      string         `gorm:"size:64;uniqueIndex;not null" json:"external_id"`
	Title           string         `gorm:"size:255;index" json:"title"`
	Category        string         `gorm:"size:255;index" json:"category"`
	SupplierName    string         `gorm:"size:255" json:"supplier_name"`
	SupplierURL     string         `gorm:"size:512" json:"supplier_url"`
	ImageURL        string         `gorm:"size:512" json:"image_url"`
	Price           float64        `gorm:"default:0" json:"price"`
	Cost            float64        `gorm:"default:0" json:"cost"`
	AvgProfitMargin float64        `gorm:"default:0" json:"avg_profit_margin"` // 百分比
	Rating          float64        `gorm:"default:0" json:"rating"`
	OrdersCount     int            `gorm:"default:0" json:"orders_count"`
	IsTrending      bool           `gorm:"default:false;index" json:"is_trending"`
	IsWinning       bool           `gorm:"default:false" json:"is_winning"`
	Status          RecordStatus   `gorm:"size:20;default:'active';index" json:"status"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`
	SyncedAt        *time.Time     `json:"synced_at"`
}

func (Product) TableName() string { return "products" }

// Ad 广告情报 (Meta Ads)
type Ad struct {
	BaseModel
	AuditMixin
	ExternalID  string         `gorm:"size:64;uniqueIndex;not null" json:"external_id"`
	Title       string         `gorm:"size:255" json:"title"`
	PageName    string         `gorm:"size:255;index" json:"page_name"`
	Category    string         `gorm:"size:255;index" json:"category"`
	AdLink      string         `gorm:"size:512" json:"ad_link"`
	Platform    string         `gorm:"size:50;default:'facebook'" json:"platform"`
	Country     string         `gorm:"size:10" json:"country"`
	Likes       int            `gorm:"default:0" json:"likes"`
	Comments    int            `gorm:"default:0" json:"comments"`
	Shares      int            `gorm:"default:0" json:"shares"`
	DaysRunning int            `gorm:"default:0" json:"days_running"`
	IsActive    bool           `gorm:"index" json:"is_active"`
	StartedAt   *time.Time     `json:"started_at"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	SyncedAt    *time.Time     `json:"synced_at"`
}

func (Ad) TableName() string { return "ads" }

// Engagement 互动总数
func (a *Ad) Engagement() int {
	return a.Likes + a.Comments + a.Shares
}
