package service

import (
	"time"

	"dropship_admin_v1/internal/model"
	rq "dropship_admin_v1/pkg/recordquery"
)

// 字段名与 JSON 字段一致，前端 sort / filter[...] 直接使用

// 快捷筛选阈值
const (
	highMarginPercent  = 40.0
	topRatedScore      = 4.5
	bestSellerOrders   = 1000
	budgetPriceCeiling = 20.0
	popularCategory    = 50
	viralEngagement    = 10000
	longRunningDays    = 30
	freshAdDays        = 7
)

// CategorySchema 类目
var CategorySchema = rq.Schema[model.Category]{
	Fields: map[string]rq.Accessor[model.Category]{
		"id":                func(c model.Category) rq.Value { return rq.Int(c.ID) },
		"external_id":       func(c model.Category) rq.Value { return rq.String(c.ExternalID) },
		"name":              func(c model.Category) rq.Value { return rq.String(c.Name) },
		"slug":              func(c model.Category) rq.Value { return rq.String(c.Slug) },
		"parent_name":       func(c model.Category) rq.Value { return rq.String(c.ParentName) },
		"product_count":     func(c model.Category) rq.Value { return rq.Int(int64(c.ProductCount)) },
		"avg_profit_margin": func(c model.Category) rq.Value { return rq.Number(c.AvgMargin) },
		"status":            func(c model.Category) rq.Value { return rq.String(string(c.Status)) },
		"created_at":        func(c model.Category) rq.Value { return rq.OptionalTime(c.CreatedAt) },
		"synced_at":         func(c model.Category) rq.Value { return optionalTime(c.SyncedAt) },
	},
	SearchFields: []string{"name", "slug", "parent_name"},
	DateField:    "created_at",
	StatusTabs: map[string]rq.Predicate[model.Category]{
		"active":   func(c model.Category) bool { return c.Status == model.RecordActive },
		"inactive": func(c model.Category) bool { return c.Status == model.RecordInactive },
		"draft":    func(c model.Category) bool { return c.Status == model.RecordDraft },
	},
	QuickFilters: map[string]rq.Predicate[model.Category]{
		"high_margin": func(c model.Category) bool { return c.AvgMargin > highMarginPercent },
		"popular":     func(c model.Category) bool { return c.ProductCount >= popularCategory },
		"empty":       func(c model.Category) bool { return c.ProductCount == 0 },
	},
}

// ProductSchema 精选商品
var ProductSchema = rq.Schema[model.Product]{
	Fields: map[string]rq.Accessor[model.Product]{
		"id":                func(p model.Product) rq.Value { return rq.Int(p.ID) },
		"external_id":       func(p model.Product) rq.Value { return rq.String(p.ExternalID) },
		"title":             func(p model.Product) rq.Value { return rq.String(p.Title) },
		"category":          func(p model.Product) rq.Value { return rq.String(p.Category) },
		"supplier_name":     func(p model.Product) rq.Value { return rq.String(p.SupplierName) },
		"price":             func(p model.Product) rq.Value { return rq.Number(p.Price) },
		"cost":              func(p model.Product) rq.Value { return rq.Number(p.Cost) },
		"avg_profit_margin": func(p model.Product) rq.Value { return rq.Number(p.AvgProfitMargin) },
		"rating":            func(p model.Product) rq.Value { return rq.Number(p.Rating) },
		"orders_count":      func(p model.Product) rq.Value { return rq.Int(int64(p.OrdersCount)) },
		"is_trending":       func(p model.Product) rq.Value { return rq.Bool(p.IsTrending) },
		"is_winning":        func(p model.Product) rq.Value { return rq.Bool(p.IsWinning) },
		"status":            func(p model.Product) rq.Value { return rq.String(string(p.Status)) },
		"created_at":        func(p model.Product) rq.Value { return rq.OptionalTime(p.CreatedAt) },
		"synced_at":         func(p model.Product) rq.Value { return optionalTime(p.SyncedAt) },
	},
	SearchFields: []string{"title", "category", "supplier_name"},
	DateField:    "created_at",
	StatusTabs: map[string]rq.Predicate[model.Product]{
		"active":   func(p model.Product) bool { return p.Status == model.RecordActive },
		"inactive": func(p model.Product) bool { return p.Status == model.RecordInactive },
		"draft":    func(p model.Product) bool { return p.Status == model.RecordDraft },
		"trending": func(p model.Product) bool { return p.IsTrending },
		"winning":  func(p model.Product) bool { return p.IsWinning },
	},
	QuickFilters: map[string]rq.Predicate[model.Product]{
		"high_profit":  func(p model.Product) bool { return p.AvgProfitMargin > highMarginPercent },
		"top_rated":    func(p model.Product) bool { return p.Rating >= topRatedScore },
		"best_sellers": func(p model.Product) bool { return p.OrdersCount >= bestSellerOrders },
		"under_20":     func(p model.Product) bool { return p.Price < budgetPriceCeiling },
	},
}

// AdSchema 广告
var AdSchema = rq.Schema[model.Ad]{
	Fields: map[string]rq.Accessor[model.Ad]{
		"id":           func(a model.Ad) rq.Value { return rq.Int(a.ID) },
		"external_id":  func(a model.Ad) rq.Value { return rq.String(a.ExternalID) },
		"title":        func(a model.Ad) rq.Value { return rq.String(a.Title) },
		"page_name":    func(a model.Ad) rq.Value { return rq.String(a.PageName) },
		"category":     func(a model.Ad) rq.Value { return rq.String(a.Category) },
		"ad_link":      func(a model.Ad) rq.Value { return rq.String(a.AdLink) },
		"platform":     func(a model.Ad) rq.Value { return rq.String(a.Platform) },
		"country":      func(a model.Ad) rq.Value { return rq.String(a.Country) },
		"likes":        func(a model.Ad) rq.Value { return rq.Int(int64(a.Likes)) },
		"comments":     func(a model.Ad) rq.Value { return rq.Int(int64(a.Comments)) },
		"shares":       func(a model.Ad) rq.Value { return rq.Int(int64(a.Shares)) },
		"engagement":   func(a model.Ad) rq.Value { return rq.Int(int64(a.Engagement())) },
		"days_running": func(a model.Ad) rq.Value { return rq.Int(int64(a.DaysRunning)) },
		"is_active":    func(a model.Ad) rq.Value { return rq.Bool(a.IsActive) },
		"started_at":   func(a model.Ad) rq.Value { return optionalTime(a.StartedAt) },
		"created_at":   func(a model.Ad) rq.Value { return rq.OptionalTime(a.CreatedAt) },
	},
	SearchFields: []string{"title", "page_name", "ad_link"},
	DateField:    "started_at",
	StatusTabs: map[string]rq.Predicate[model.Ad]{
		"active":   func(a model.Ad) bool { return a.IsActive },
		"inactive": func(a model.Ad) bool { return !a.IsActive },
	},
	QuickFilters: map[string]rq.Predicate[model.Ad]{
		"viral":        func(a model.Ad) bool { return a.Engagement() >= viralEngagement },
		"long_running": func(a model.Ad) bool { return a.DaysRunning >= longRunningDays },
		"new":          func(a model.Ad) bool { return a.DaysRunning <= freshAdDays },
	},
}

func optionalTime(t *time.Time) rq.Value {
	if t == nil {
		return rq.Null()
	}
	return rq.OptionalTime(*t)
}
