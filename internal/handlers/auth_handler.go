package handlers

import (
	"strings"
	"time"

	"staffhub/internal/models"
	"staffhub/internal/services"
	"staffhub/pkg/jwt"
	"staffhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService       *services.UserService
	tenantService     *services.TenantService
	userRoleService   *services.UserRoleService
	permissionService *services.PermissionService
	jwtManager        *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, tenantService *services.TenantService, userRoleService *services.UserRoleService, permissionService *services.PermissionService) *AuthHandler {
	return &AuthHandler{
		userService:       userService,
		tenantService:     tenantService,
		userRoleService:   userRoleService,
		permissionService: permissionService,
		jwtManager:        jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token       string   `json:"token"`
	ExpiresAt   int64    `json:"expires_at"`
	User        UserInfo `json:"user"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	TenantID *uint  `json:"tenant_id"`
	Role     string `json:"role"`
}

// resolveAccess 汇总用户在指定租户下的RBAC角色代码与权限代码
// 查询失败时降级为空列表，不阻断登录流程
func (h *AuthHandler) resolveAccess(userID uint, tenantID *uint) ([]string, []string) {
	roleCodes := []string{}
	permissionCodes := []string{}
	if tenantID == nil {
		return roleCodes, permissionCodes
	}
	if codes, err := h.userRoleService.GetUserRoleCodes(userID, *tenantID); err == nil {
		roleCodes = codes
	}
	if codes, err := h.permissionService.GetUserPermissionCodes(userID, *tenantID); err == nil {
		permissionCodes = codes
	}
	return roleCodes, permissionCodes
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 根据用户名获取用户
	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 检查用户状态
	if !h.userService.IsActive(user) {
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 验证密码
	if !user.CheckPassword(req.Password) {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	// 汇总角色和权限，一并写入令牌供守卫使用
	roleCodes, permissionCodes := h.resolveAccess(user.ID, user.TenantID)

	token, err := h.jwtManager.GenerateToken(
		user.ID,
		user.TenantID,
		user.Username,
		user.Role,
		roleCodes,
	)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	// 更新最后登录时间，失败不影响登录流程
	_ = h.userService.UpdateLastLogin(user.ID)

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	resp := LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Name:     user.Name,
			TenantID: user.TenantID,
			Role:     user.Role,
		},
		Roles:       roleCodes,
		Permissions: permissionCodes,
	}

	response.Success(c, resp)
}

// RefreshToken 刷新Token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "缺少认证头")
		return
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Unauthorized(c, "认证头格式错误")
		return
	}

	tokenString := authHeader[7:] // 去掉 "Bearer "

	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		response.Unauthorized(c, "Token无效")
		return
	}

	// 获取用户信息并检查状态
	user, err := h.userService.GetByID(claims.UserID)
	if err != nil {
		response.Unauthorized(c, "用户不存在")
		return
	}
	if !h.userService.IsActive(user) {
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	// 重新汇总角色，保证令牌反映最新的绑定状态
	roleCodes, _ := h.resolveAccess(user.ID, user.TenantID)

	newToken, err := h.jwtManager.GenerateTokenWithTenant(
		user.ID,
		user.TenantID,
		claims.CurrentTenantID,
		user.Username,
		user.Role,
		roleCodes,
	)
	if err != nil {
		response.ServerError(c, "生成新Token失败")
		return
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	response.Success(c, gin.H{
		"token":      newToken,
		"expires_at": expiresAt,
		"message":    "Token刷新成功",
	})
}

// SwitchTenantRequest 切换租户请求
type SwitchTenantRequest struct {
	TenantID uint `json:"tenant_id" binding:"required"`
}

// SwitchTenant 切换当前操作租户（仅超级管理员可用）
func (h *AuthHandler) SwitchTenant(c *gin.Context) {
	claims, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}
	userClaims := claims.(*jwt.JWTClaims)

	var req SwitchTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	// 验证目标租户是否存在且激活
	tenant, err := h.tenantService.GetByID(req.TenantID)
	if err != nil {
		response.NotFound(c, "租户不存在")
		return
	}
	if tenant.Status != models.TenantStatusActive {
		response.BadRequest(c, "目标租户未激活")
		return
	}

	newToken, err := h.jwtManager.GenerateTokenWithTenant(
		userClaims.UserID,
		userClaims.TenantID, // 原始所属租户
		&req.TenantID,       // 当前操作的租户
		userClaims.Username,
		userClaims.Role,
		userClaims.Roles,
	)
	if err != nil {
		response.ServerError(c, "生成新Token失败")
		return
	}

	expiresAt := time.Now().Add(h.jwtManager.GetTokenDuration()).Unix()

	response.Success(c, gin.H{
		"token":      newToken,
		"expires_at": expiresAt,
		"current_tenant": gin.H{
			"id":     tenant.ID,
			"name":   tenant.Name,
			"code":   tenant.Code,
			"status": tenant.Status,
		},
		"message": "切换租户成功",
	})
}

// Me 获取当前登录用户的完整信息
func (h *AuthHandler) Me(c *gin.Context) {
	claims, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, "未登录")
		return
	}
	userClaims := claims.(*jwt.JWTClaims)

	user, err := h.userService.GetByID(userClaims.UserID)
	if err != nil {
		response.NotFound(c, "用户不存在")
		return
	}

	responseData := gin.H{
		"user": gin.H{
			"id":            user.ID,
			"username":      user.Username,
			"email":         user.Email,
			"name":          user.Name,
			"role":          user.Role,
			"status":        user.Status,
			"tenant_id":     user.TenantID,
			"created_at":    user.CreatedAt,
			"last_login_at": user.LastLoginAt,
		},
	}

	// 当前操作租户
	if userClaims.CurrentTenantID != nil {
		if tenant, err := h.tenantService.GetByID(*userClaims.CurrentTenantID); err == nil {
			responseData["current_tenant"] = gin.H{
				"id":     tenant.ID,
				"name":   tenant.Name,
				"code":   tenant.Code,
				"status": tenant.Status,
			}
		}
	}

	// 当前租户下的角色与权限
	roleCodes, permissionCodes := h.resolveAccess(user.ID, userClaims.CurrentTenantID)
	responseData["roles"] = roleCodes
	responseData["permissions"] = permissionCodes

	response.Success(c, responseData)
}
