package middleware

import (
	"context"
	"reflect"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type auditContextKey struct{}

// AuditInfo 操作人及其所在模块，随 request context 传到 service 与 GORM 回调
type AuditInfo struct {
	UserID   int64
	Username string
	Role     string
	Module   string // 经过 RequireModule 的请求才有
}

// Fields 写入业务日志的操作人字段
func (a *AuditInfo) Fields() []zap.Field {
	if a == nil {
		return nil
	}
	fields := []zap.Field{
		zap.Int64("operator_id", a.UserID),
		zap.String("operator_role", a.Role),
	}
	if a.Module != "" {
		fields = append(fields, zap.String("operator_module", a.Module))
	}
	return fields
}

// WithAuditInfo 注入审计信息到 context
func WithAuditInfo(ctx context.Context, info AuditInfo) context.Context {
	return context.WithValue(ctx, auditContextKey{}, &info)
}

// GetAuditInfo 从 context 获取审计信息，未登录时为 nil
func GetAuditInfo(ctx context.Context) *AuditInfo {
	if info, ok := ctx.Value(auditContextKey{}).(*AuditInfo); ok {
		return info
	}
	return nil
}

// AuditContext 把登录员工写入 request context，需挂在 JWTAuth 之后
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p := CurrentUser(c); p.UserID > 0 {
			c.Request = c.Request.WithContext(WithAuditInfo(c.Request.Context(), AuditInfo{
				UserID:   p.UserID,
				Username: p.Username,
				Role:     p.Role,
			}))
		}
		c.Next()
	}
}

// auditModule 记录本次请求命中的模块
func auditModule(c *gin.Context, module string) {
	info := GetAuditInfo(c.Request.Context())
	if info == nil {
		return
	}
	next := *info
	next.Module = module
	c.Request = c.Request.WithContext(WithAuditInfo(c.Request.Context(), next))
}

// RegisterAuditCallbacks Create 时填 CreatedBy/UpdatedBy，Update 时填 UpdatedBy
func RegisterAuditCallbacks(db *gorm.DB) {
	db.Callback().Create().Before("gorm:create").Register("audit:create", stampOperator("CreatedBy", "UpdatedBy"))
	db.Callback().Update().Before("gorm:update").Register("audit:update", stampOperator("UpdatedBy"))
}

func stampOperator(fieldNames ...string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Statement.Context == nil || tx.Statement.Schema == nil {
			return
		}
		info := GetAuditInfo(tx.Statement.Context)
		if info == nil || info.UserID == 0 {
			return
		}

		for _, name := range fieldNames {
			field := tx.Statement.Schema.LookUpField(name)
			if field == nil {
				continue
			}
			eachRow(tx.Statement.ReflectValue, func(row reflect.Value) {
				// 调用方显式赋值的不覆盖
				if _, isZero := field.ValueOf(tx.Statement.Context, row); isZero {
					_ = field.Set(tx.Statement.Context, row, info.UserID)
				}
			})
		}
	}
}

// eachRow 单条与批量写入统一处理
func eachRow(rv reflect.Value, fn func(reflect.Value)) {
	switch rv.Kind() {
	case reflect.Struct:
		fn(rv)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			row := reflect.Indirect(rv.Index(i))
			if row.Kind() == reflect.Struct {
				fn(row)
			}
		}
	}
}
