package handlers

import (
	"strconv"

	"staffhub/internal/services"
	"staffhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	service *services.PermissionService
}

func NewPermissionHandler(service *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{
		service: service,
	}
}

// List 获取权限目录（按分类和名称排序）
func (h *PermissionHandler) List(c *gin.Context) {
	// 支持按分类筛选
	if category := c.Query("category"); category != "" {
		permissions, err := h.service.GetByCategory(category)
		if err != nil {
			response.ServerError(c, "查询失败")
			return
		}
		response.Success(c, permissions)
		return
	}

	permissions, err := h.service.ListActive()
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permissions)
}

// GetByCode 根据代码获取权限
func (h *PermissionHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	permission, err := h.service.GetByCode(code)
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, permission)
}

// GetUserPermissions 获取用户在指定租户下的有效权限
func (h *PermissionHandler) GetUserPermissions(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "用户ID格式错误")
		return
	}

	tenantID, err := strconv.ParseUint(c.Query("tenant_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "租户ID格式错误")
		return
	}

	permissions, err := h.service.GetUserPermissions(uint(userID), uint(tenantID))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permissions)
}
