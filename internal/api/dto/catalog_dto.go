package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	rq "dropship_admin_v1/pkg/recordquery"
)

// DateLayout 日期参数格式
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate  = errors.New("日期格式错误，应为 YYYY-MM-DD")
	ErrInvalidOrder = errors.New("order 只能为 asc 或 desc")
)

// ListQuery 列表查询参数，page 从 0 开始
// 多选列过滤通过 filter[<field>]=v1,v2 传入
type ListQuery struct {
	Status      string `form:"status" json:"status"`
	Search      string `form:"search" json:"search"`
	QuickFilter string `form:"quick_filter" json:"quick_filter"`
	From        string `form:"from" json:"from"`
	To          string `form:"to" json:"to"`
	Sort        string `form:"sort" json:"sort"`
	Order       string `form:"order" json:"order"`
	Page        int    `form:"page,default=0" json:"page"`
	PageSize    int    `form:"page_size,default=20" json:"page_size"`
}

// ToState 转为查询状态
func (q *ListQuery) ToState(filters map[string]string) (rq.State, error) {
	state := rq.State{
		StatusTab:   q.Status,
		SearchQuery: q.Search,
		QuickFilter: q.QuickFilter,
		Page:        q.Page,
		PageSize:    q.PageSize,
	}

	var err error
	if state.DateRange.From, err = parseDate(q.From); err != nil {
		return rq.State{}, err
	}
	if state.DateRange.To, err = parseDate(q.To); err != nil {
		return rq.State{}, err
	}

	if q.Sort != "" {
		switch strings.ToLower(q.Order) {
		case "", "asc":
			state.Sorting = &rq.Sort{Field: q.Sort}
		case "desc":
			state.Sorting = &rq.Sort{Field: q.Sort, Desc: true}
		default:
			return rq.State{}, ErrInvalidOrder
		}
	}

	if len(filters) > 0 {
		state.ColumnFilters = make(map[string][]string, len(filters))
		for field, raw := range filters {
			state.ColumnFilters[field] = splitValues(raw)
		}
	}
	return state, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return &t, nil
}

// splitValues 逗号分隔，去掉空值；全部为空时返回空集合 (不限制)
func splitValues(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

// ListResponse 列表响应
type ListResponse[T any] struct {
	List      []T    `json:"list"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	PageCount int    `json:"page_count"`
	Total     int    `json:"total"`
	Access    string `json:"access_level,omitempty"`
	Limit     *int   `json:"limit_count,omitempty"`
}

// ExportResponse 导出响应
type ExportResponse struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// UpdateRecordRequest PATCH 请求体，key 为列名
type UpdateRecordRequest map[string]interface{}

// SyncResponse 手动同步结果
type SyncResponse struct {
	Resource string `json:"resource"`
	Fetched  int    `json:"fetched"`
	Upserted int64  `json:"upserted"`
	Duration string `json:"duration"`
}
