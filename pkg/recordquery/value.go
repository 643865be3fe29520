package recordquery

import (
	"strconv"
	"strings"
	"time"
)

// Kind 字段值类型
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

// Value 字段访问器返回的可比较值
// 同一字段在所有记录上应返回相同 Kind (或 Null)
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
	t    time.Time
}

func Null() Value { return Value{kind: KindNull} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func Int(n int64) Value { return Value{kind: KindNumber, n: float64(n)} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Time(t time.Time) Value { return Value{kind: KindTime, t: t} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) TimeValue() time.Time { return v.t }

// OptionalTime 零值时间视为 Null
func OptionalTime(t time.Time) Value {
	if t.IsZero() {
		return Null()
	}
	return Time(t)
}

// Text 文本表示，用于搜索与多选过滤
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	}
	return ""
}

// Compare 比较两个值：Null 最小；不同 Kind 按 Kind 顺序
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindNumber:
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		}
	case KindBool:
		switch {
		case !a.b && b.b:
			return -1
		case a.b && !b.b:
			return 1
		}
	case KindTime:
		return a.t.Compare(b.t)
	}
	return 0
}
