package recordquery

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID        int
	Title     string
	Category  string
	Supplier  string
	CreatedAt time.Time
	Margin    float64
	Trending  bool
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testSchema() Schema[testRecord] {
	return Schema[testRecord]{
		Fields: map[string]Accessor[testRecord]{
			"id":         func(r testRecord) Value { return Int(int64(r.ID)) },
			"title":      func(r testRecord) Value { return String(r.Title) },
			"category":   func(r testRecord) Value { return String(r.Category) },
			"supplier":   func(r testRecord) Value { return String(r.Supplier) },
			"created_at": func(r testRecord) Value { return OptionalTime(r.CreatedAt) },
			"margin":     func(r testRecord) Value { return Number(r.Margin) },
			"trending":   func(r testRecord) Value { return Bool(r.Trending) },
		},
		SearchFields: []string{"title", "category", "supplier"},
		DateField:    "created_at",
		StatusTabs: map[string]Predicate[testRecord]{
			"trending":    func(r testRecord) bool { return r.Trending },
			"high_profit": func(r testRecord) bool { return r.Margin > 40 },
		},
		QuickFilters: map[string]Predicate[testRecord]{
			"trending": func(r testRecord) bool { return r.Trending },
			"cheap":    func(r testRecord) bool { return r.Margin < 20 },
		},
	}
}

func testEngine(t *testing.T) *Engine[testRecord] {
	e, err := NewEngine(testSchema())
	require.NoError(t, err)
	return e
}

func fixtures() []testRecord {
	return []testRecord{
		{ID: 1, Title: "Red Shoes", Category: "shoes", Supplier: "Acme", CreatedAt: day("2024-01-01"), Margin: 45, Trending: true},
		{ID: 2, Title: "Blue Hat", Category: "hats", Supplier: "HatCo", CreatedAt: day("2024-02-01"), Margin: 30},
		{ID: 3, Title: "Green Shoes", Category: "shoes", Supplier: "Acme", CreatedAt: day("2024-02-15"), Margin: 45},
		{ID: 4, Title: "Wool Scarf", Category: "scarves", Supplier: "Knit Ltd", CreatedAt: day("2024-03-10"), Margin: 12, Trending: true},
		{ID: 5, Title: "Sun Hat", Category: "hats", Supplier: "HatCo", Margin: 55, Trending: true},
	}
}

func ids(rs []testRecord) []int {
	out := make([]int, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestNewEngine_RejectsUnknownFields(t *testing.T) {
	s := testSchema()
	s.SearchFields = append(s.SearchFields, "missing")
	_, err := NewEngine(s)
	assert.ErrorIs(t, err, ErrInvalidSchema)

	s = testSchema()
	s.DateField = "updated_at"
	_, err = NewEngine(s)
	assert.ErrorIs(t, err, ErrInvalidSchema)

	_, err = NewEngine(Schema[testRecord]{})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestQuery_SearchScenario(t *testing.T) {
	e := testEngine(t)
	records := []testRecord{
		{ID: 1, Category: "shoes", Title: "Red Shoes", CreatedAt: day("2024-01-01"), Margin: 45},
		{ID: 2, Category: "hats", Title: "Blue Hat", CreatedAt: day("2024-02-01"), Margin: 30},
	}

	res, err := e.Query(records, State{SearchQuery: "shoe", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(res.Page))
	assert.Equal(t, 1, res.TotalMatched)
	assert.Equal(t, 1, res.PageCount)
}

func TestQuery_SearchIsCaseInsensitiveAcrossWhitelist(t *testing.T) {
	e := testEngine(t)

	res, err := e.Query(fixtures(), State{SearchQuery: "HATCO", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5}, ids(res.Page))

	// margin 不在搜索白名单
	res, err = e.Query(fixtures(), State{SearchQuery: "45", PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Page)
	assert.Equal(t, 0, res.PageCount)
}

func TestQuery_StatusTabAndQuickFilterAreANDed(t *testing.T) {
	e := testEngine(t)

	res, err := e.Query(fixtures(), State{StatusTab: "high_profit", QuickFilter: "trending", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, ids(res.Page))

	// 语义重叠也按交集处理
	res, err = e.Query(fixtures(), State{StatusTab: "trending", QuickFilter: "trending", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 5}, ids(res.Page))

	res, err = e.Query(fixtures(), State{StatusTab: "high_profit", QuickFilter: "cheap", PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Page)
}

func TestQuery_DateRangeInclusiveEndOfDay(t *testing.T) {
	e := testEngine(t)
	from := day("2024-02-01")
	to := day("2024-02-15") // 当天 00:00，应扩展到 23:59:59.999

	records := append(fixtures(), testRecord{ID: 6, Title: "Late", CreatedAt: day("2024-02-15").Add(23*time.Hour + 59*time.Minute)})
	res, err := e.Query(records, State{DateRange: DateRange{From: &from, To: &to}, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 6}, ids(res.Page))

	// 无日期的记录在启用日期范围时被排除
	res, err = e.Query(fixtures(), State{DateRange: DateRange{From: &from}, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, ids(res.Page))
}

func TestQuery_ColumnFilters(t *testing.T) {
	e := testEngine(t)

	res, err := e.Query(fixtures(), State{
		ColumnFilters: map[string][]string{"category": {"hats", "scarves"}},
		PageSize:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5}, ids(res.Page))

	// 空集合不构成约束
	res, err = e.Query(fixtures(), State{
		ColumnFilters: map[string][]string{"category": {}},
		PageSize:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalMatched)

	res, err = e.Query(fixtures(), State{
		ColumnFilters: map[string][]string{"trending": {"true"}, "supplier": {"HatCo"}},
		PageSize:      10,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{5}, ids(res.Page))
}

func TestQuery_StableSort(t *testing.T) {
	e := testEngine(t)

	res, err := e.Query(fixtures(), State{Sorting: &Sort{Field: "margin", Desc: true}, PageSize: 10})
	require.NoError(t, err)
	// 1 与 3 margin 相同，保持原有顺序
	assert.Equal(t, []int{5, 1, 3, 2, 4}, ids(res.Page))

	res, err = e.Query(fixtures(), State{Sorting: &Sort{Field: "margin"}, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 2, 1, 3, 5}, ids(res.Page))

	res, err = e.Query(fixtures(), State{Sorting: &Sort{Field: "title"}, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1, 5, 4}, ids(res.Page))
}

func TestQuery_Errors(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name  string
		state State
		want  error
	}{
		{"page_size 为 0", State{PageSize: 0}, ErrInvalidPageSize},
		{"page_size 为负", State{PageSize: -3}, ErrInvalidPageSize},
		{"page 为负", State{Page: -1, PageSize: 10}, ErrInvalidPage},
		{"未知排序字段", State{Sorting: &Sort{Field: "price"}, PageSize: 10}, ErrInvalidField},
		{"未知列过滤字段", State{ColumnFilters: map[string][]string{"color": {"red"}}, PageSize: 10}, ErrInvalidField},
		{"未知状态页签", State{StatusTab: "archived", PageSize: 10}, ErrInvalidField},
		{"未知快捷筛选", State{QuickFilter: "viral", PageSize: 10}, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Query(fixtures(), tt.state)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQuery_UnknownSortFieldFailsOnEmptyResult(t *testing.T) {
	e := testEngine(t)
	_, err := e.Query(nil, State{Sorting: &Sort{Field: "nope"}, PageSize: 10})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func sampleStates() []State {
	from := day("2024-01-15")
	return []State{
		{PageSize: 2},
		{SearchQuery: "hat", PageSize: 1},
		{StatusTab: "trending", Sorting: &Sort{Field: "created_at", Desc: true}, PageSize: 2},
		{QuickFilter: "trending", ColumnFilters: map[string][]string{"category": {"hats", "shoes"}}, PageSize: 3},
		{DateRange: DateRange{From: &from}, Sorting: &Sort{Field: "title"}, PageSize: 2},
	}
}

func TestQuery_Idempotent(t *testing.T) {
	e := testEngine(t)
	records := fixtures()
	snapshot := fixtures()

	for i, st := range sampleStates() {
		a, err := e.Query(records, st)
		require.NoError(t, err)
		b, err := e.Query(records, st)
		require.NoError(t, err)
		assert.Equal(t, a, b, "state %d", i)
	}
	assert.Equal(t, snapshot, records, "输入不应被修改")
}

func TestQuery_MonotonicFiltering(t *testing.T) {
	e := testEngine(t)
	records := fixtures()

	for i, st := range sampleStates() {
		base, err := e.Query(records, st)
		require.NoError(t, err)

		narrowed := st
		narrowed.SearchQuery = st.SearchQuery + "s"
		more, err := e.Query(records, narrowed)
		require.NoError(t, err)
		assert.LessOrEqual(t, more.TotalMatched, base.TotalMatched, "state %d", i)

		narrowed = st
		narrowed.QuickFilter = "cheap"
		more, err = e.Query(records, narrowed)
		require.NoError(t, err)
		if st.QuickFilter == "" {
			assert.LessOrEqual(t, more.TotalMatched, base.TotalMatched, "state %d", i)
		}
	}
}

func TestQuery_PaginationCoverage(t *testing.T) {
	e := testEngine(t)
	var records []testRecord
	for i := 1; i <= 23; i++ {
		records = append(records, testRecord{
			ID:       i,
			Title:    fmt.Sprintf("item %02d", i),
			Category: []string{"a", "b", "c"}[i%3],
			Margin:   float64(i % 4),
		})
	}

	st := State{
		ColumnFilters: map[string][]string{"category": {"a", "b"}},
		Sorting:       &Sort{Field: "margin", Desc: true},
		PageSize:      4,
	}
	full, err := e.All(records, st)
	require.NoError(t, err)

	first, err := e.Query(records, st)
	require.NoError(t, err)
	assert.Equal(t, len(full), first.TotalMatched)
	assert.Equal(t, (len(full)+3)/4, first.PageCount)

	var joined []testRecord
	seen := map[int]bool{}
	for p := 0; p < first.PageCount; p++ {
		st.Page = p
		res, err := e.Query(records, st)
		require.NoError(t, err)
		for _, r := range res.Page {
			assert.False(t, seen[r.ID], "重复记录 %d", r.ID)
			seen[r.ID] = true
		}
		joined = append(joined, res.Page...)
	}
	assert.Equal(t, full, joined)

	// 超出范围的页返回空页
	st.Page = first.PageCount
	res, err := e.Query(records, st)
	require.NoError(t, err)
	assert.NotNil(t, res.Page)
	assert.Empty(t, res.Page)
}

func TestQuery_HugePaginationValues(t *testing.T) {
	e := testEngine(t)
	records := fixtures()[:2]

	res, err := e.Query(records, State{Page: math.MaxInt, PageSize: 20})
	require.NoError(t, err)
	assert.NotNil(t, res.Page)
	assert.Empty(t, res.Page)
	assert.Equal(t, 1, res.PageCount)
	assert.Equal(t, 2, res.TotalMatched)

	res, err = e.Query(records, State{PageSize: math.MaxInt})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PageCount)
	assert.Len(t, res.Page, 2)

	res, err = e.Query(records, State{Page: 1, PageSize: math.MaxInt})
	require.NoError(t, err)
	assert.Empty(t, res.Page)
}

func TestEndOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	got := EndOfDay(time.Date(2024, 2, 15, 8, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 2, 15, 23, 59, 59, 999000000, loc), got)
}

func TestEngine_MetaAndValidate(t *testing.T) {
	e := testEngine(t)

	assert.Equal(t, []string{"category", "created_at", "id", "margin", "supplier", "title", "trending"}, e.FieldNames())
	assert.Equal(t, []string{"high_profit", "trending"}, e.StatusTabNames())
	assert.Equal(t, []string{"cheap", "trending"}, e.QuickFilterNames())

	assert.NoError(t, e.Validate(State{PageSize: 10, Sorting: &Sort{Field: "margin"}}))
	assert.ErrorIs(t, e.Validate(State{PageSize: 10, Sorting: &Sort{Field: "price"}}), ErrInvalidField)
	assert.ErrorIs(t, e.Validate(State{PageSize: 10, QuickFilter: "nope"}), ErrInvalidField)
	assert.ErrorIs(t, e.Validate(State{}), ErrInvalidPageSize)
}
