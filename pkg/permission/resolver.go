package permission

import (
	"errors"
	"fmt"
)

// AccessLevel 模块访问级别 (由权限开关推导，仅用于展示与鉴权)
type AccessLevel string

const (
	AccessFull    AccessLevel = "full_access"
	AccessLimited AccessLevel = "limited_access"
	AccessLocked  AccessLevel = "locked"
	AccessHidden  AccessLevel = "hidden"
)

// Valid 是否为合法级别
func (l AccessLevel) Valid() bool {
	switch l {
	case AccessFull, AccessLimited, AccessLocked, AccessHidden:
		return true
	}
	return false
}

// Field 可单独切换的权限字段
type Field string

const (
	FieldView        Field = "view"
	FieldViewDetails Field = "view_details"
	FieldLimitedView Field = "limited_view"
	FieldLockPage    Field = "lock_page"
	FieldHidden      Field = "hidden"
)

// ParseField 解析字段名
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldView, FieldViewDetails, FieldLimitedView, FieldLockPage, FieldHidden:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
}

// BulkMode 批量操作模式
type BulkMode string

const (
	BulkSelectAll   BulkMode = "select_all"
	BulkDeselectAll BulkMode = "deselect_all"
)

var (
	ErrInvalidField    = errors.New("invalid permission field")
	ErrInvalidBulkMode = errors.New("invalid bulk mode")
)

// ModulePermission 单个模块在某个角色/套餐下的权限
// AccessLevel 始终可由其余字段推导 (hidden 除外，它只能通过 hidden 开关进入)
type ModulePermission struct {
	ModuleID    string      `json:"module_id"`
	View        bool        `json:"view"`
	ViewDetails bool        `json:"view_details"`
	LimitedView bool        `json:"limited_view"`
	LimitCount  *int        `json:"limit_count"` // nil + LimitedView 表示不限数量
	LockPage    bool        `json:"lock_page"`
	AccessLevel AccessLevel `json:"access_level"`
}

// Mutation 单字段变更
type Mutation struct {
	Field Field
	Value bool
}

// New 初始化默认权限 (全部关闭，locked)
func New(moduleID string) ModulePermission {
	return ModulePermission{
		ModuleID:    moduleID,
		AccessLevel: AccessLocked,
	}
}

// Derive 按优先级从开关推导访问级别
// lockPage 优先于一切
func Derive(p ModulePermission) AccessLevel {
	switch {
	case p.LockPage:
		return AccessLocked
	case p.View && p.ViewDetails && !p.LimitedView:
		return AccessFull
	case p.View && p.LimitedView:
		return AccessLimited
	case p.View:
		return AccessLimited
	default:
		return AccessLocked
	}
}

// Consistent 检查 AccessLevel 是否与开关一致
func Consistent(p ModulePermission) bool {
	if p.AccessLevel == AccessHidden {
		return !p.View && !p.ViewDetails && !p.LimitedView && !p.LockPage && p.LimitCount == nil
	}
	return p.AccessLevel == Derive(p)
}

// Resolve 应用一次字段变更，返回完整的新权限
// 纯函数：不修改 prev
func Resolve(prev ModulePermission, m Mutation) (ModulePermission, error) {
	next := prev
	next.LimitCount = copyLimit(prev.LimitCount)

	switch m.Field {
	case FieldHidden:
		if m.Value {
			return hidden(prev.ModuleID), nil
		}
		// 取消隐藏：不恢复隐藏前的配置，统一回到锁定状态
		return unhidden(prev.ModuleID), nil
	case FieldView:
		next.View = m.Value
	case FieldViewDetails:
		next.ViewDetails = m.Value
	case FieldLimitedView:
		next.LimitedView = m.Value
	case FieldLockPage:
		next.LockPage = m.Value
	default:
		return prev, fmt.Errorf("%w: %q", ErrInvalidField, m.Field)
	}

	// 隐藏状态下只接受 hidden 开关，其余变更不生效
	if prev.AccessLevel == AccessHidden {
		return hidden(prev.ModuleID), nil
	}

	next.AccessLevel = Derive(next)
	return next, nil
}

// ResolveBulk 全选 / 全不选
func ResolveBulk(moduleID string, mode BulkMode) (ModulePermission, error) {
	switch mode {
	case BulkSelectAll:
		return ModulePermission{
			ModuleID:    moduleID,
			View:        true,
			ViewDetails: true,
			AccessLevel: AccessFull,
		}, nil
	case BulkDeselectAll:
		return ModulePermission{
			ModuleID:    moduleID,
			LockPage:    true,
			AccessLevel: AccessLocked,
		}, nil
	}
	return ModulePermission{}, fmt.Errorf("%w: %q", ErrInvalidBulkMode, mode)
}

// SetLimitCount 仅修改限制数量，不影响访问级别
// 隐藏模块的数量始终为空，原样返回
func SetLimitCount(prev ModulePermission, count *int) ModulePermission {
	if prev.AccessLevel == AccessHidden {
		return hidden(prev.ModuleID)
	}
	next := prev
	next.LimitCount = copyLimit(count)
	return next
}

func hidden(moduleID string) ModulePermission {
	return ModulePermission{
		ModuleID:    moduleID,
		AccessLevel: AccessHidden,
	}
}

func unhidden(moduleID string) ModulePermission {
	return ModulePermission{
		ModuleID:    moduleID,
		LockPage:    true,
		AccessLevel: AccessLocked,
	}
}

func copyLimit(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
