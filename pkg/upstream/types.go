package upstream

import "time"

// Resource 上游 REST 资源名，同时是响应体中数组字段的 key
type Resource string

const (
	ResourceCategories Resource = "categories"
	ResourceProducts   Resource = "products"
	ResourceAds        Resource = "ads"
)

// Resources 全部可同步资源
var Resources = []Resource{ResourceCategories, ResourceProducts, ResourceAds}

// ParseResource 校验资源名
func ParseResource(s string) (Resource, bool) {
	for _, r := range Resources {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Page 单页响应
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
}

// Category 上游类目
type Category struct {
	ID              string  `json:"_id"`
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Parent          string  `json:"parent"`
	Description     string  `json:"description"`
	ProductCount    int     `json:"productCount"`
	AvgProfitMargin float64 `json:"avgProfitMargin"`
	Status          string  `json:"status"`
}

// Product 上游精选商品
type Product struct {
	ID              string   `json:"_id"`
	Title           string   `json:"title"`
	Category        string   `json:"category"`
	SupplierName    string   `json:"supplierName"`
	SupplierURL     string   `json:"supplierUrl"`
	Image           string   `json:"image"`
	Price           float64  `json:"price"`
	Cost            float64  `json:"cost"`
	AvgProfitMargin float64  `json:"avgProfitMargin"`
	Rating          float64  `json:"rating"`
	Orders          int      `json:"orders"`
	IsTrending      bool     `json:"isTrending"`
	IsWinning       bool     `json:"isWinning"`
	Status          string   `json:"status"`
	Tags            []string `json:"tags"`
}

// Ad 上游广告
type Ad struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	PageName    string     `json:"pageName"`
	Category    string     `json:"category"`
	AdLink      string     `json:"adLink"`
	Platform    string     `json:"platform"`
	Country     string     `json:"country"`
	Likes       int        `json:"likes"`
	Comments    int        `json:"comments"`
	Shares      int        `json:"shares"`
	DaysRunning int        `json:"daysRunning"`
	IsActive    bool       `json:"isActive"`
	StartedAt   *time.Time `json:"startedAt"`
	Tags        []string   `json:"tags"`
}
