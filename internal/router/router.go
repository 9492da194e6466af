package router

import (
	"regexp"
	"time"

	"staffhub/internal/database"
	"staffhub/internal/handlers"
	"staffhub/internal/middleware"
	"staffhub/internal/models"
	"staffhub/internal/services"
	"staffhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 权限代码格式：分类.动作，全小写下划线
var permCodePattern = regexp.MustCompile(`^[a-z][a-z_]*\.[a-z][a-z_]*$`)

// registerValidators 注册自定义校验规则
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("permcode", func(fl validator.FieldLevel) bool {
			return permCodePattern.MatchString(fl.Field().String())
		})
	}
}

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	registerValidators()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
// 每个操作的访问要求在这里声明：RequirePermissions 为OR语义（任一命中即放行），
// RequireRoles 同时识别遗留角色值和RBAC角色代码。
func registerRoutes(router *gin.Engine) {

	db := database.GetDB()
	auth := middleware.NewAuthMiddleware(db)

	permissionService := services.NewPermissionService(db)
	roleService := services.NewRoleService(db)
	auditService := services.NewAuditServiceWithStream(db, database.GetAuditStream())
	userRoleService := services.NewUserRoleService(db, auditService)
	userService := services.NewUserService(db)
	tenantService := services.NewTenantService(db, roleService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 认证路由
		authHandler := handlers.NewAuthHandler(userService, tenantService, userRoleService, permissionService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)

			// 切换当前操作租户（仅超级管理员）
			authGroup.POST("/switch-tenant", auth.RequireLogin(),
				auth.RequireRoles(models.RoleSuperAdmin), authHandler.SwitchTenant)
		}

		// 权限目录（只读）
		permissionHandler := handlers.NewPermissionHandler(permissionService)
		permissions := api.Group("/permissions", auth.RequireLogin())
		{
			permissions.GET("", auth.RequirePermissions("role.view_all", "user.view_roles"), permissionHandler.List)
			permissions.GET("/:code", auth.RequirePermissions("role.view_all"), permissionHandler.GetByCode)
		}

		// 角色管理
		roleHandler := handlers.NewRoleHandler(roleService, permissionService)
		roles := api.Group("/roles", auth.RequireLogin())
		{
			roles.POST("", auth.RequirePermissions("role.create"), roleHandler.Create)
			roles.GET("", auth.RequirePermissions("role.view_all"), roleHandler.List)
			roles.GET("/:id", auth.RequirePermissions("role.view_all"), roleHandler.GetByID)
			roles.PUT("/:id", auth.RequirePermissions("role.update"), roleHandler.Update)
			roles.DELETE("/:id", auth.RequirePermissions("role.delete"), roleHandler.Delete)

			// 权限集管理（整体替换）
			roles.POST("/:id/permissions", auth.RequirePermissions("role.update"), roleHandler.AssignPermissions)
			roles.GET("/:id/permissions", auth.RequirePermissions("role.view_all"), roleHandler.GetPermissions)
			roles.POST("/:id/reset-permissions", auth.RequirePermissions("role.update"), roleHandler.ResetDefaultPermissions)
		}

		// 用户管理
		userHandler := handlers.NewUserHandler(userService)
		userRoleHandler := handlers.NewUserRoleHandler(userRoleService)
		users := api.Group("/users", auth.RequireLogin())
		{
			users.POST("", auth.RequirePermissions("user.create"), userHandler.Create)
			users.GET("", auth.RequirePermissions("user.view_all"), userHandler.List)
			users.GET("/:id", auth.RequirePermissions("user.view_all"), userHandler.GetByID)
			users.PUT("/:id", auth.RequirePermissions("user.update"), userHandler.Update)

			// 用户权限查询
			users.GET("/:id/permissions", auth.RequirePermissions("user.view_roles"), permissionHandler.GetUserPermissions)

			// 角色绑定管理
			users.POST("/:id/roles", auth.RequirePermissions("user.assign_roles"), userRoleHandler.AssignRoles)
			users.PUT("/:id/roles", auth.RequirePermissions("user.assign_roles"), userRoleHandler.SetRoles)
			users.DELETE("/:id/roles", auth.RequirePermissions("user.remove_roles"), userRoleHandler.RemoveRoles)
			users.GET("/:id/roles", auth.RequirePermissions("user.view_roles"), userRoleHandler.GetUserRoles)
			users.GET("/:id/tenants", auth.RequirePermissions("user.view_roles"), userRoleHandler.GetUserTenants)
		}

		// 租户管理（平台级操作，仅超级管理员）
		tenantHandler := handlers.NewTenantHandler(tenantService)
		tenants := api.Group("/tenants", auth.RequireLogin())
		{
			tenants.POST("", auth.RequireRoles(models.RoleSuperAdmin), tenantHandler.Create)
			tenants.GET("", auth.RequireRoles(models.RoleSuperAdmin), tenantHandler.List)
			tenants.GET("/:id", auth.RequireRoles(models.RoleSuperAdmin, models.RoleAdminRH), tenantHandler.GetByID)
			tenants.PUT("/:id", auth.RequireRoles(models.RoleSuperAdmin), tenantHandler.Update)
		}

		// 审计日志（只读）
		auditHandler := handlers.NewAuditHandler(auditService)
		audits := api.Group("/audit-logs", auth.RequireLogin())
		{
			audits.GET("", auth.RequirePermissions("audit.view_all"), auditHandler.List)
		}
	}
}

// 健康检查处理器
func healthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ping处理器
func ping(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "pong",
	})
}
