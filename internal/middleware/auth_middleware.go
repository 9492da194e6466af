package middleware

import (
	"strconv"
	"strings"

	"staffhub/internal/models"
	"staffhub/internal/services"
	"staffhub/pkg/jwt"
	"staffhub/pkg/response"
	"staffhub/pkg/roleref"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware 认证与授权中间件
// 路由注册时通过 RequirePermissions / RequireRoles 声明各操作的访问要求；
// 守卫在请求时读取声明并即时计算决策，不跨请求缓存。
type AuthMiddleware struct {
	userService       *services.UserService
	permissionService *services.PermissionService
	jwtManager        *jwt.JWTManager
}

func NewAuthMiddleware(db *gorm.DB) *AuthMiddleware {
	return NewAuthMiddlewareWithManager(db, jwt.GetJWTManager())
}

// NewAuthMiddlewareWithManager 注入JWT管理器（测试用）
func NewAuthMiddlewareWithManager(db *gorm.DB, jwtManager *jwt.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		userService:       services.NewUserService(db),
		permissionService: services.NewPermissionService(db),
		jwtManager:        jwtManager,
	}
}

// RequireLogin 要求携带有效JWT令牌
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		tokenString := authHeader[7:] // 去掉 "Bearer "

		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 获取用户信息并检查状态
		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}
		if !m.userService.IsActive(user) {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		// 将身份上下文保存到请求上下文
		c.Set("user", user)
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("legacy_role", claims.Role)
		c.Set("role_codes", claims.Roles)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequirePermissions 声明操作所需的权限代码列表（OR语义）
// 持有任一声明的权限即放行；需要AND语义时在路由上声明多次。
// 超级管理员无条件放行，且先于租户判断——系统级身份可以没有租户。
func (m *AuthMiddleware) RequirePermissions(permissionCodes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 未声明任何要求时放行
		if len(permissionCodes) == 0 {
			c.Next()
			return
		}

		claims := currentClaims(c)
		if claims == nil {
			response.Unauthorized(c, "用户未认证")
			c.Abort()
			return
		}

		// 超级管理员绕过所有权限检查
		if isSuperAdmin(claims) {
			c.Next()
			return
		}

		// 其余身份必须能解析出租户
		tenantID := resolveTenantID(c, claims)
		if tenantID == nil {
			response.Forbidden(c, "租户不存在")
			c.Abort()
			return
		}

		userPermissions, err := m.permissionService.GetUserPermissionCodes(claims.UserID, *tenantID)
		if err != nil {
			response.ServerError(c, "权限检查失败")
			c.Abort()
			return
		}

		permissionSet := make(map[string]bool, len(userPermissions))
		for _, code := range userPermissions {
			permissionSet[code] = true
		}
		for _, required := range permissionCodes {
			if permissionSet[required] {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "权限不足，需要以下权限之一: "+strings.Join(permissionCodes, ", "))
		c.Abort()
	}
}

// RequireRoles 声明操作允许的角色列表
// 遗留单角色值和RBAC角色代码都参与比较（见 pkg/roleref），任一命中即放行；
// 超级管理员同样无条件放行。
func (m *AuthMiddleware) RequireRoles(roleCodes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(roleCodes) == 0 {
			c.Next()
			return
		}

		claims := currentClaims(c)
		if claims == nil {
			response.Unauthorized(c, "用户未认证")
			c.Abort()
			return
		}

		refs := roleref.Collect(claims.Role, claims.Roles)
		if isSuperAdmin(claims) || roleref.AnyMatches(refs, roleCodes) {
			c.Next()
			return
		}

		response.Forbidden(c, "权限不足，需要以下角色之一: "+strings.Join(roleCodes, ", "))
		c.Abort()
	}
}

// ========== 身份上下文辅助方法 ==========

// currentClaims 取当前请求的身份声明，未认证时返回nil
func currentClaims(c *gin.Context) *jwt.JWTClaims {
	value, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := value.(*jwt.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// isSuperAdmin 超级管理员判定：遗留角色值或RBAC角色代码任一命中即可
func isSuperAdmin(claims *jwt.JWTClaims) bool {
	refs := roleref.Collect(claims.Role, claims.Roles)
	return roleref.AnyMatches(refs, []string{models.RoleSuperAdmin})
}

// resolveTenantID 解析当前操作的租户
// 优先取传输层提供的 X-Tenant-ID 头，其次取令牌内嵌的当前租户/所属租户。
func resolveTenantID(c *gin.Context, claims *jwt.JWTClaims) *uint {
	if header := c.GetHeader("X-Tenant-ID"); header != "" {
		if id, err := strconv.ParseUint(header, 10, 32); err == nil {
			tenantID := uint(id)
			return &tenantID
		}
	}
	if claims.CurrentTenantID != nil {
		return claims.CurrentTenantID
	}
	return claims.TenantID
}

// CurrentTenantID 供处理器读取当前操作租户
func CurrentTenantID(c *gin.Context) *uint {
	claims := currentClaims(c)
	if claims == nil {
		return nil
	}
	return resolveTenantID(c, claims)
}

// CurrentUserID 供处理器读取当前用户ID，未认证时返回0
func CurrentUserID(c *gin.Context) uint {
	claims := currentClaims(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
