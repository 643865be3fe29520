package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dropship_admin_v1/internal/api/dto"
	"dropship_admin_v1/internal/service"
	"dropship_admin_v1/internal/task"
	"dropship_admin_v1/pkg/logger"
	"dropship_admin_v1/pkg/permission"
	rq "dropship_admin_v1/pkg/recordquery"
	"dropship_admin_v1/pkg/upstream"
)

func ok(ctx *gin.Context, message string, data interface{}) {
	body := gin.H{"code": 0, "data": data}
	if message != "" {
		body["message"] = message
	}
	ctx.JSON(http.StatusOK, body)
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"code":    400,
		"message": "参数错误: " + err.Error(),
	})
}

// fail 按错误类型映射 HTTP 状态码
func fail(ctx *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
	}
	ctx.JSON(status, gin.H{
		"code":    status,
		"message": err.Error(),
	})
}

func statusOf(err error) int {
	switch {
	case isAny(err,
		rq.ErrInvalidField, rq.ErrInvalidPageSize, rq.ErrInvalidPage,
		permission.ErrInvalidField, permission.ErrInvalidBulkMode,
		dto.ErrInvalidDate, dto.ErrInvalidOrder,
		service.ErrExternalIDRequired, service.ErrNoFieldsToUpdate, service.ErrFieldNotEditable,
		service.ErrInvalidOwnerType, service.ErrUnknownResource, service.ErrInvalidOldPassword,
		service.ErrSamePassword,
	):
		return http.StatusBadRequest
	case isAny(err, service.ErrInvalidCredentials, service.ErrInvalidToken, service.ErrUserDisabled):
		return http.StatusUnauthorized
	case isAny(err, service.ErrSystemRole, service.ErrCannotDeleteAdmin, service.ErrSuperAdminReserved):
		return http.StatusForbidden
	case isAny(err,
		service.ErrRecordNotFound, service.ErrRoleNotFound, service.ErrPlanNotFound,
		service.ErrModuleNotFound, service.ErrSavedViewNotFound, service.ErrUserNotFound,
	):
		return http.StatusNotFound
	case isAny(err,
		service.ErrExternalIDExists, service.ErrRoleExists, service.ErrRoleInUse,
		service.ErrPlanExists, service.ErrUsernameExists, service.ErrSyncInProgress,
	):
		return http.StatusConflict
	case isAny(err, upstream.ErrUpstreamStatus, upstream.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, task.ErrTaskDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// parseID 解析路径参数，失败时已写入 400 响应并返回 0
func parseID(ctx *gin.Context, key string) int64 {
	id, err := strconv.ParseInt(ctx.Param(key), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "无效的 ID"})
		return 0
	}
	return id
}
