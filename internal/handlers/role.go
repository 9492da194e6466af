package handlers

import (
	"strconv"

	"staffhub/internal/middleware"
	"staffhub/internal/services"
	"staffhub/pkg/pagination"
	"staffhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateRoleRequest struct {
	Code            string   `json:"code" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	IsSystem        bool     `json:"is_system"`
	PermissionCodes []string `json:"permission_codes"`
}

type UpdateRoleRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	IsActive        *bool    `json:"is_active"`
	PermissionCodes []string `json:"permission_codes"`
}

type AssignPermissionsRequest struct {
	// 空列表表示清空权限集
	PermissionCodes []string `json:"permission_codes" binding:"dive,permcode"`
}

type RoleHandler struct {
	service           *services.RoleService
	permissionService *services.PermissionService
}

func NewRoleHandler(service *services.RoleService, permissionService *services.PermissionService) *RoleHandler {
	return &RoleHandler{
		service:           service,
		permissionService: permissionService,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色（作用域为当前操作租户）
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.CurrentTenantID(c)

	role, err := h.service.Create(tenantID, services.CreateRoleInput{
		Code:            req.Code,
		Name:            req.Name,
		Description:     req.Description,
		IsSystem:        req.IsSystem,
		PermissionCodes: req.PermissionCodes,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, role)
}

// GetByID 获取角色
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	role, err := h.service.GetByID(uint(id))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, role)
}

// List 获取当前租户的角色列表（支持分页）
func (h *RoleHandler) List(c *gin.Context) {
	tenantID := middleware.CurrentTenantID(c)

	// 解析分页参数
	pageParams := pagination.ParsePageParams(c)

	roles, total, err := h.service.GetByTenantWithPage(tenantID, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, roles, pageInfo)
}

// Update 更新角色
func (h *RoleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenantID := middleware.CurrentTenantID(c)

	role, err := h.service.Update(tenantID, uint(id), services.UpdateRoleInput{
		Name:            req.Name,
		Description:     req.Description,
		IsActive:        req.IsActive,
		PermissionCodes: req.PermissionCodes,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, role)
}

// Delete 删除角色
func (h *RoleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		response.Fail(c, err)
		return
	}

	response.Success(c, nil)
}

// ========== 权限管理方法 ==========

// AssignPermissions 为角色分配权限（整体替换）
func (h *RoleHandler) AssignPermissions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req AssignPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.service.AssignPermissions(uint(id), req.PermissionCodes); err != nil {
		response.Fail(c, err)
		return
	}

	role, err := h.service.GetByID(uint(id))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "权限分配成功", role)
}

// GetPermissions 获取角色的权限
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	// 确认角色存在
	if _, err := h.service.GetByID(uint(id)); err != nil {
		response.Fail(c, err)
		return
	}

	permissions, err := h.permissionService.GetRolePermissions(uint(id))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permissions)
}

// ResetDefaultPermissions 将系统角色的权限重置为出厂默认集
func (h *RoleHandler) ResetDefaultPermissions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	role, err := h.service.ResetDefaultPermissions(uint(id))
	if err != nil {
		response.Fail(c, err)
		return
	}

	response.SuccessWithMessage(c, "权限已重置为默认集", role)
}
