package permission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

// allStates 枚举全部 16 种开关组合，用于性质测试
func allStates() []ModulePermission {
	var out []ModulePermission
	for i := 0; i < 16; i++ {
		p := ModulePermission{
			ModuleID:    "products",
			View:        i&1 != 0,
			ViewDetails: i&2 != 0,
			LimitedView: i&4 != 0,
			LockPage:    i&8 != 0,
		}
		if p.LimitedView {
			p.LimitCount = intPtr(5)
		}
		p.AccessLevel = Derive(p)
		out = append(out, p)
	}
	out = append(out, hidden("products"))
	return out
}

func TestNew_Defaults(t *testing.T) {
	p := New("categories")
	assert.Equal(t, "categories", p.ModuleID)
	assert.Equal(t, AccessLocked, p.AccessLevel)
	assert.False(t, p.View || p.ViewDetails || p.LimitedView || p.LockPage)
	assert.Nil(t, p.LimitCount)
}

func TestResolve_HiddenIsAbsorbing(t *testing.T) {
	for _, prev := range allStates() {
		got, err := Resolve(prev, Mutation{Field: FieldHidden, Value: true})
		require.NoError(t, err)
		assert.Equal(t, ModulePermission{ModuleID: "products", AccessLevel: AccessHidden}, got)
		assert.True(t, Consistent(got))
	}
}

func TestResolve_UnhideResetsToLocked(t *testing.T) {
	prev := ModulePermission{ModuleID: "ads", AccessLevel: AccessHidden}
	got, err := Resolve(prev, Mutation{Field: FieldHidden, Value: false})
	require.NoError(t, err)
	assert.Equal(t, ModulePermission{ModuleID: "ads", LockPage: true, AccessLevel: AccessLocked}, got)
}

func TestResolve_HiddenIgnoresOtherFields(t *testing.T) {
	prev := hidden("ads")
	for _, f := range []Field{FieldView, FieldViewDetails, FieldLimitedView, FieldLockPage} {
		for _, v := range []bool{true, false} {
			got, err := Resolve(prev, Mutation{Field: f, Value: v})
			require.NoError(t, err)
			assert.Equal(t, prev, got, "%s=%v", f, v)
			assert.True(t, Consistent(got))
		}
	}

	_, err := Resolve(prev, Mutation{Field: "delete", Value: true})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestResolve_LockPagePrecedence(t *testing.T) {
	for i := 0; i < 8; i++ {
		prev := ModulePermission{
			ModuleID:    "products",
			View:        i&1 != 0,
			ViewDetails: i&2 != 0,
			LimitedView: i&4 != 0,
		}
		prev.AccessLevel = Derive(prev)

		got, err := Resolve(prev, Mutation{Field: FieldLockPage, Value: true})
		require.NoError(t, err)
		assert.Equal(t, AccessLocked, got.AccessLevel, "组合 %d", i)
	}
}

func TestResolve_DerivationTable(t *testing.T) {
	tests := []struct {
		name string
		prev ModulePermission
		m    Mutation
		want AccessLevel
	}{
		{"开启 view 仅有限访问", New("m"), Mutation{FieldView, true}, AccessLimited},
		{"view + details 完全访问", ModulePermission{View: true}, Mutation{FieldViewDetails, true}, AccessFull},
		{"full 再开 limited 降级", ModulePermission{View: true, ViewDetails: true}, Mutation{FieldLimitedView, true}, AccessLimited},
		{"仅 details 无 view 锁定", New("m"), Mutation{FieldViewDetails, true}, AccessLocked},
		{"关闭 view 回到锁定", ModulePermission{View: true, ViewDetails: true}, Mutation{FieldView, false}, AccessLocked},
		{"解除 lockPage 后按开关推导", ModulePermission{View: true, ViewDetails: true, LockPage: true}, Mutation{FieldLockPage, false}, AccessFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.prev, tt.m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.AccessLevel)
			assert.True(t, Consistent(got))
		})
	}
}

// 解除 lockPage 但 view 仍关闭：仍为 locked
func TestResolve_ClearLockPageAloneStaysLocked(t *testing.T) {
	prev := ModulePermission{LockPage: true, AccessLevel: AccessLocked}
	got, err := Resolve(prev, Mutation{Field: FieldLockPage, Value: false})
	require.NoError(t, err)
	assert.False(t, got.LockPage)
	assert.Equal(t, AccessLocked, got.AccessLevel)
}

func TestResolve_LimitedViewWithoutCountIsAccepted(t *testing.T) {
	prev := ModulePermission{View: true, AccessLevel: AccessLimited}
	got, err := Resolve(prev, Mutation{Field: FieldLimitedView, Value: true})
	require.NoError(t, err)
	assert.True(t, got.LimitedView)
	assert.Nil(t, got.LimitCount)
	assert.Equal(t, AccessLimited, got.AccessLevel)
}

func TestResolve_InvalidField(t *testing.T) {
	prev := New("m")
	got, err := Resolve(prev, Mutation{Field: "delete", Value: true})
	assert.True(t, errors.Is(err, ErrInvalidField))
	assert.Equal(t, prev, got)
}

func TestResolve_DoesNotAliasLimitCount(t *testing.T) {
	prev := ModulePermission{View: true, LimitedView: true, LimitCount: intPtr(10), AccessLevel: AccessLimited}
	got, err := Resolve(prev, Mutation{Field: FieldViewDetails, Value: true})
	require.NoError(t, err)

	*got.LimitCount = 99
	assert.Equal(t, 10, *prev.LimitCount)
}

func TestResolveBulk(t *testing.T) {
	all, err := ResolveBulk("products", BulkSelectAll)
	require.NoError(t, err)
	assert.Equal(t, ModulePermission{
		ModuleID: "products", View: true, ViewDetails: true, AccessLevel: AccessFull,
	}, all)
	assert.True(t, Consistent(all))

	none, err := ResolveBulk("products", BulkDeselectAll)
	require.NoError(t, err)
	assert.Equal(t, ModulePermission{
		ModuleID: "products", LockPage: true, AccessLevel: AccessLocked,
	}, none)

	_, err = ResolveBulk("products", "invert")
	assert.ErrorIs(t, err, ErrInvalidBulkMode)
}

func TestSetLimitCount(t *testing.T) {
	prev := ModulePermission{View: true, LimitedView: true, AccessLevel: AccessLimited}
	got := SetLimitCount(prev, intPtr(20))
	assert.Equal(t, 20, *got.LimitCount)
	assert.Equal(t, AccessLimited, got.AccessLevel)
	assert.Nil(t, prev.LimitCount)

	cleared := SetLimitCount(got, nil)
	assert.Nil(t, cleared.LimitCount)
}

func TestSetLimitCount_HiddenKeepsNilLimit(t *testing.T) {
	prev, err := Resolve(New("ads"), Mutation{Field: FieldHidden, Value: true})
	require.NoError(t, err)

	got := SetLimitCount(prev, intPtr(5))
	assert.Equal(t, AccessHidden, got.AccessLevel)
	assert.Nil(t, got.LimitCount)
	assert.True(t, Consistent(got))
}

func TestParseField(t *testing.T) {
	f, err := ParseField("lock_page")
	require.NoError(t, err)
	assert.Equal(t, FieldLockPage, f)

	_, err = ParseField("lockPage")
	assert.ErrorIs(t, err, ErrInvalidField)
}
