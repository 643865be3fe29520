package recordquery

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrInvalidField    = errors.New("invalid field")
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrInvalidPage     = errors.New("invalid page")
	ErrInvalidSchema   = errors.New("invalid schema")
)

// Accessor 字段访问器
type Accessor[T any] func(T) Value

// Predicate 具名过滤条件 (状态页签 / 快捷筛选)
type Predicate[T any] func(T) bool

// Schema 记录类型的查询描述，构造 Engine 时一次性校验
type Schema[T any] struct {
	Fields       map[string]Accessor[T]
	SearchFields []string // 参与全文搜索的字段
	DateField    string   // 日期范围过滤使用的字段
	StatusTabs   map[string]Predicate[T]
	QuickFilters map[string]Predicate[T]
}

// DateRange 日期范围 (闭区间，To 按当天结束计算)
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Sort 排序
type Sort struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// State 列表页查询状态
type State struct {
	StatusTab     string              `json:"status_tab,omitempty"`
	SearchQuery   string              `json:"search,omitempty"`
	ColumnFilters map[string][]string `json:"column_filters,omitempty"`
	QuickFilter   string              `json:"quick_filter,omitempty"`
	DateRange     DateRange           `json:"date_range"`
	Sorting       *Sort               `json:"sorting,omitempty"`
	Page          int                 `json:"page"`
	PageSize      int                 `json:"page_size"`
}

// Result 查询结果
type Result[T any] struct {
	Page         []T `json:"page"`
	PageCount    int `json:"page_count"`
	TotalMatched int `json:"total_matched"`
}

// Engine 内存记录查询引擎，构造后只读，可并发使用
type Engine[T any] struct {
	schema Schema[T]
}

// NewEngine 校验 Schema 并创建引擎
func NewEngine[T any](schema Schema[T]) (*Engine[T], error) {
	if len(schema.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}
	for name, acc := range schema.Fields {
		if acc == nil {
			return nil, fmt.Errorf("%w: nil accessor for %q", ErrInvalidSchema, name)
		}
	}
	for _, f := range schema.SearchFields {
		if _, ok := schema.Fields[f]; !ok {
			return nil, fmt.Errorf("%w: search field %q", ErrInvalidSchema, f)
		}
	}
	if schema.DateField != "" {
		if _, ok := schema.Fields[schema.DateField]; !ok {
			return nil, fmt.Errorf("%w: date field %q", ErrInvalidSchema, schema.DateField)
		}
	}
	return &Engine[T]{schema: schema}, nil
}

// MustEngine 同 NewEngine，Schema 非法时 panic (仅用于包级初始化)
func MustEngine[T any](schema Schema[T]) *Engine[T] {
	e, err := NewEngine(schema)
	if err != nil {
		panic(err)
	}
	return e
}

// Field 读取单条记录的字段值
func (e *Engine[T]) Field(record T, name string) (Value, error) {
	acc, ok := e.schema.Fields[name]
	if !ok {
		return Null(), fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return acc(record), nil
}

// FieldNames 字段列表 (按名称排序)
func (e *Engine[T]) FieldNames() []string {
	return sortedNames(e.schema.Fields)
}

// StatusTabNames 状态页签列表 (按名称排序)
func (e *Engine[T]) StatusTabNames() []string {
	return sortedNames(e.schema.StatusTabs)
}

// QuickFilterNames 快捷筛选列表 (按名称排序)
func (e *Engine[T]) QuickFilterNames() []string {
	return sortedNames(e.schema.QuickFilters)
}

// Query 执行 过滤 -> 排序 -> 分页
// 每次都从完整记录集重新计算，不修改 records
func (e *Engine[T]) Query(records []T, state State) (Result[T], error) {
	if state.PageSize <= 0 {
		return Result[T]{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, state.PageSize)
	}
	if state.Page < 0 {
		return Result[T]{}, fmt.Errorf("%w: %d", ErrInvalidPage, state.Page)
	}

	stages, err := e.compile(state)
	if err != nil {
		return Result[T]{}, err
	}

	survivors := make([]T, 0, len(records))
	for _, r := range records {
		if matchAll(stages, r) {
			survivors = append(survivors, r)
		}
	}

	if state.Sorting != nil {
		survivors, err = e.sort(survivors, *state.Sorting)
		if err != nil {
			return Result[T]{}, err
		}
	}

	total := len(survivors)
	pageCount := total / state.PageSize
	if total%state.PageSize != 0 {
		pageCount++
	}

	// 先与页数比较再做乘法，避免超大 page / page_size 溢出
	page := []T{}
	if state.Page < pageCount {
		start := state.Page * state.PageSize
		end := start + min(state.PageSize, total-start)
		page = append(page, survivors[start:end]...)
	}

	return Result[T]{
		Page:         page,
		PageCount:    pageCount,
		TotalMatched: total,
	}, nil
}

// All 返回过滤 + 排序后的全部记录 (导出使用)
func (e *Engine[T]) All(records []T, state State) ([]T, error) {
	state.Page = 0
	state.PageSize = max(len(records), 1)
	res, err := e.Query(records, state)
	if err != nil {
		return nil, err
	}
	return res.Page, nil
}

// Validate 只校验查询状态，不需要记录
func (e *Engine[T]) Validate(state State) error {
	_, err := e.Query(nil, state)
	return err
}

// compile 按固定顺序生成过滤阶段，名称非法时提前失败
func (e *Engine[T]) compile(state State) ([]Predicate[T], error) {
	var stages []Predicate[T]

	// 1. 状态页签
	if state.StatusTab != "" {
		p, ok := e.schema.StatusTabs[state.StatusTab]
		if !ok {
			return nil, fmt.Errorf("%w: status tab %q", ErrInvalidField, state.StatusTab)
		}
		stages = append(stages, p)
	}

	// 2. 日期范围
	if state.DateRange.From != nil || state.DateRange.To != nil {
		if e.schema.DateField == "" {
			return nil, fmt.Errorf("%w: no date field", ErrInvalidField)
		}
		stages = append(stages, e.dateStage(state.DateRange))
	}

	// 3. 快捷筛选 (与状态页签取交集，即使语义重叠)
	if state.QuickFilter != "" {
		p, ok := e.schema.QuickFilters[state.QuickFilter]
		if !ok {
			return nil, fmt.Errorf("%w: quick filter %q", ErrInvalidField, state.QuickFilter)
		}
		stages = append(stages, p)
	}

	// 4. 搜索
	if state.SearchQuery != "" {
		stages = append(stages, e.searchStage(state.SearchQuery))
	}

	// 5. 多选列过滤，空集合表示不限制
	for _, field := range sortedNames(state.ColumnFilters) {
		acc, ok := e.schema.Fields[field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		selected := state.ColumnFilters[field]
		if len(selected) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(selected))
		for _, v := range selected {
			set[v] = struct{}{}
		}
		stages = append(stages, func(r T) bool {
			_, hit := set[acc(r).Text()]
			return hit
		})
	}

	return stages, nil
}

func (e *Engine[T]) dateStage(rng DateRange) Predicate[T] {
	acc := e.schema.Fields[e.schema.DateField]
	var to time.Time
	if rng.To != nil {
		to = EndOfDay(*rng.To)
	}
	return func(r T) bool {
		v := acc(r)
		if v.Kind() != KindTime {
			return false
		}
		t := v.TimeValue()
		if rng.From != nil && t.Before(*rng.From) {
			return false
		}
		if rng.To != nil && t.After(to) {
			return false
		}
		return true
	}
}

func (e *Engine[T]) searchStage(query string) Predicate[T] {
	q := strings.ToLower(query)
	accs := make([]Accessor[T], 0, len(e.schema.SearchFields))
	for _, f := range e.schema.SearchFields {
		accs = append(accs, e.schema.Fields[f])
	}
	return func(r T) bool {
		for _, acc := range accs {
			if strings.Contains(strings.ToLower(acc(r).Text()), q) {
				return true
			}
		}
		return false
	}
}

func matchAll[T any](stages []Predicate[T], r T) bool {
	for _, p := range stages {
		if !p(r) {
			return false
		}
	}
	return true
}

type keyed[T any] struct {
	rec T
	key Value
}

func (e *Engine[T]) sort(records []T, s Sort) ([]T, error) {
	acc, ok := e.schema.Fields[s.Field]
	if !ok {
		return nil, fmt.Errorf("%w: sort %q", ErrInvalidField, s.Field)
	}

	items := make([]keyed[T], len(records))
	for i, r := range records {
		items[i] = keyed[T]{rec: r, key: acc(r)}
	}
	slices.SortStableFunc(items, func(a, b keyed[T]) int {
		if s.Desc {
			return Compare(b.key, a.key)
		}
		return Compare(a.key, b.key)
	})

	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out, nil
}

// EndOfDay 当天 23:59:59.999
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
