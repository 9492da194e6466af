package handlers

import (
	"strconv"

	"staffhub/internal/middleware"
	"staffhub/internal/services"
	"staffhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleIDsRequest struct {
	RoleIDs []uint `json:"role_ids" binding:"required,min=1"`
}

// SetRolesRequest 整体替换允许传空列表，表示清空该用户在租户下的全部角色
type SetRolesRequest struct {
	RoleIDs []uint `json:"role_ids"`
}

type UserRoleHandler struct {
	service *services.UserRoleService
}

func NewUserRoleHandler(service *services.UserRoleService) *UserRoleHandler {
	return &UserRoleHandler{
		service: service,
	}
}

// resolveTenant 角色绑定操作必须落在一个明确的租户上
func (h *UserRoleHandler) resolveTenant(c *gin.Context) (uint, bool) {
	tenantID := middleware.CurrentTenantID(c)
	if tenantID == nil {
		response.BadRequest(c, "缺少租户上下文")
		return 0, false
	}
	return *tenantID, true
}

// AssignRoles 为用户授予角色（幂等，重复授予不产生新绑定）
func (h *UserRoleHandler) AssignRoles(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "用户ID格式错误")
		return
	}

	var req RoleIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	bindings, err := h.service.AssignRoles(uint(userID), tenantID, req.RoleIDs, middleware.CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色授予成功", bindings)
}

// RemoveRoles 移除用户的角色（软删除绑定）
func (h *UserRoleHandler) RemoveRoles(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "用户ID格式错误")
		return
	}

	var req RoleIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	bindings, err := h.service.RemoveRoles(uint(userID), tenantID, req.RoleIDs, middleware.CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色移除成功", bindings)
}

// SetRoles 整体设置用户在当前租户下的角色
func (h *UserRoleHandler) SetRoles(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "用户ID格式错误")
		return
	}

	var req SetRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	bindings, err := h.service.SetRoles(uint(userID), tenantID, req.RoleIDs, middleware.CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色设置成功", bindings)
}

// GetUserRoles 获取用户在当前租户下的活跃角色绑定
func (h *UserRoleHandler) GetUserRoles(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "用户ID格式错误")
		return
	}

	tenantID, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	bindings, err := h.service.GetUserRoles(uint(userID), tenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, bindings)
}

// GetUserTenants 获取用户有活跃角色的租户及对应角色列表
func (h *UserRoleHandler) GetUserTenants(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "用户ID格式错误")
		return
	}

	summaries, err := h.service.GetUserTenants(uint(userID))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, summaries)
}
