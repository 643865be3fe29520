package service

import (
	"time"

	"github.com/lib/pq"

	"dropship_admin_v1/internal/model"
	"dropship_admin_v1/pkg/upstream"
)

// ToCategoryModel 类目
func ToCategoryModel(dto upstream.Category, syncedAt time.Time) model.Category {
	return model.Category{
		ExternalID:   dto.ID,
		Name:         dto.Name,
		Slug:         dto.Slug,
		ParentName:   dto.Parent,
		Description:  dto.Description,
		ProductCount: dto.ProductCount,
		AvgMargin:    dto.AvgProfitMargin,
		Status:       toRecordStatus(dto.Status),
		SyncedAt:     &syncedAt,
	}
}

// ToProductModel 商品
func ToProductModel(dto upstream.Product, syncedAt time.Time) model.Product {
	return model.Product{
		ExternalID:      dto.ID,
		Title:           dto.Title,
		Category:        dto.Category,
		SupplierName:    dto.SupplierName,
		SupplierURL:     dto.SupplierURL,
		ImageURL:        dto.Image,
		Price:           dto.Price,
		Cost:            dto.Cost,
		AvgProfitMargin: profitMargin(dto),
		Rating:          dto.Rating,
		OrdersCount:     dto.Orders,
		IsTrending:      dto.IsTrending,
		IsWinning:       dto.IsWinning,
		Status:          toRecordStatus(dto.Status),
		// Go slice -> Postgres Array
		Tags:     pq.StringArray(dto.Tags),
		SyncedAt: &syncedAt,
	}
}

// ToAdModel 广告
func ToAdModel(dto upstream.Ad, syncedAt time.Time) model.Ad {
	platform := dto.Platform
	if platform == "" {
		platform = "facebook"
	}
	return model.Ad{
		ExternalID:  dto.ID,
		Title:       dto.Title,
		PageName:    dto.PageName,
		Category:    dto.Category,
		AdLink:      dto.AdLink,
		Platform:    platform,
		Country:     dto.Country,
		Likes:       dto.Likes,
		Comments:    dto.Comments,
		Shares:      dto.Shares,
		DaysRunning: dto.DaysRunning,
		IsActive:    dto.IsActive,
		StartedAt:   dto.StartedAt,
		Tags:        pq.StringArray(dto.Tags),
		SyncedAt:    &syncedAt,
	}
}

// profitMargin 上游未给出利润率时按售价与成本计算 (百分比)
func profitMargin(dto upstream.Product) float64 {
	if dto.AvgProfitMargin != 0 || dto.Price <= 0 {
		return dto.AvgProfitMargin
	}
	return (dto.Price - dto.Cost) / dto.Price * 100
}

func toRecordStatus(s string) model.RecordStatus {
	switch model.RecordStatus(s) {
	case model.RecordInactive, model.RecordDraft:
		return model.RecordStatus(s)
	}
	return model.RecordActive
}
