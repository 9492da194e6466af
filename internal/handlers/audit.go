package handlers

import (
	"strconv"
	"time"

	"staffhub/internal/middleware"
	"staffhub/internal/services"
	"staffhub/pkg/pagination"
	"staffhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	service *services.AuditService
}

func NewAuditHandler(service *services.AuditService) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

// List 查询当前租户的审计日志（支持分页和筛选）
func (h *AuditHandler) List(c *gin.Context) {
	tenantID := middleware.CurrentTenantID(c)
	if tenantID == nil {
		response.BadRequest(c, "缺少租户上下文")
		return
	}

	pageParams := pagination.ParsePageParams(c)

	filters := services.AuditLogFilters{
		Action: c.Query("action"),
		Entity: c.Query("entity"),
	}

	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := strconv.ParseUint(userIDStr, 10, 32)
		if err != nil {
			response.BadRequest(c, "用户ID格式错误")
			return
		}
		id := uint(userID)
		filters.UserID = &id
	}

	if startStr := c.Query("start_date"); startStr != "" {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			response.BadRequest(c, "开始时间格式错误")
			return
		}
		filters.StartDate = &start
	}

	if endStr := c.Query("end_date"); endStr != "" {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			response.BadRequest(c, "结束时间格式错误")
			return
		}
		filters.EndDate = &end
	}

	logs, total, err := h.service.GetWithPage(*tenantID, filters, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, logs, pageInfo)
}
