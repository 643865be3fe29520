package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dropship_admin_v1/pkg/metrics"
)

// SyncRateLimit 手动同步限流，按路由参数 :resource 使用 cd 的冷却记录
//
// 使用示例:
//
//	router.POST("/api/sync/:resource",
//	    middleware.SyncRateLimit(middleware.Cooldown()),
//	    syncCtl.Sync,
//	)
func SyncRateLimit(cd *SyncCooldown) gin.HandlerFunc {
	return func(c *gin.Context) {
		resource := c.Param("resource")
		if resource == "" {
			resource = "all"
		}

		if wait, ok := cd.Acquire(resource); !ok {
			metrics.RateLimitExceeded.WithLabelValues(resource).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(wait),
				"data": gin.H{
					"retry_after": int(wait.Seconds()),
					"resource":    resource,
				},
			})
			return
		}

		c.Next()
	}
}

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())

	if seconds < 60 {
		return fmt.Sprintf("同步冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("同步冷却中，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("同步冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
