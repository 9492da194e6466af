package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staffhub/internal/models"
	"staffhub/pkg/errors"
	"staffhub/pkg/jwt"
	"staffhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type guardFixture struct {
	db         *gorm.DB
	auth       *AuthMiddleware
	jwtManager *jwt.JWTManager
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.UserTenantRole{},
	))

	jwtManager := jwt.NewJWTManager("test-secret", time.Hour)
	return &guardFixture{
		db:         db,
		auth:       NewAuthMiddlewareWithManager(db, jwtManager),
		jwtManager: jwtManager,
	}
}

func (f *guardFixture) createUser(t *testing.T, tenantID *uint, username, legacyRole string) *models.User {
	t.Helper()
	user := &models.User{
		TenantID:     tenantID,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Name:         username,
		Role:         legacyRole,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *guardFixture) createTenant(t *testing.T, code string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: "租户" + code, Code: code, Status: models.TenantStatusActive}
	require.NoError(t, f.db.Create(tenant).Error)
	return tenant
}

// grantPermission 建一个持有指定权限的角色并绑定给用户
func (f *guardFixture) grantPermission(t *testing.T, user *models.User, tenantID uint, permissionCode string) {
	t.Helper()
	perm := &models.Permission{Code: permissionCode, Name: permissionCode, Category: "test", IsActive: true}
	require.NoError(t, f.db.Create(perm).Error)
	role := &models.Role{TenantID: &tenantID, Code: "GRANT_" + permissionCode, Name: "角色" + permissionCode, IsActive: true}
	require.NoError(t, f.db.Create(role).Error)
	require.NoError(t, f.db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error)
	require.NoError(t, f.db.Create(&models.UserTenantRole{
		UserID: user.ID, TenantID: tenantID, RoleID: role.ID,
		IsActive: true, AssignedBy: user.ID, AssignedAt: time.Now(),
	}).Error)
}

func (f *guardFixture) token(t *testing.T, user *models.User, roles []string) string {
	t.Helper()
	token, err := f.jwtManager.GenerateToken(user.ID, user.TenantID, user.Username, user.Role, roles)
	require.NoError(t, err)
	return token
}

func (f *guardFixture) router(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{f.auth.RequireLogin()}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		response.Success(c, gin.H{"ok": true})
	})
	r.GET("/guarded", chain...)
	return r
}

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func doRequest(t *testing.T, r *gin.Engine, token string, headers map[string]string) envelope {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequireLoginMissingToken(t *testing.T) {
	f := newGuardFixture(t)
	r := f.router()

	body := doRequest(t, r, "", nil)
	assert.Equal(t, errors.CodeUnauthorized, body.Code)
}

func TestRequireLoginInactiveUser(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	user := f.createUser(t, &tenant.ID, "alice", models.RoleEmployee)
	token := f.token(t, user, nil)
	require.NoError(t, f.db.Model(user).Update("status", models.UserStatusInactive).Error)

	body := doRequest(t, f.router(), token, nil)
	assert.Equal(t, errors.CodeUnauthorized, body.Code)
}

func TestRequirePermissionsNoRequirementAllows(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	user := f.createUser(t, &tenant.ID, "alice", models.RoleEmployee)
	r := f.router(f.auth.RequirePermissions())

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeSuccess, body.Code)
}

func TestSuperAdminBypassesPermissionCheckWithoutTenant(t *testing.T) {
	f := newGuardFixture(t)
	// 平台超管：无租户归属，也没有任何权限绑定
	user := f.createUser(t, nil, "root", models.RoleSuperAdmin)
	r := f.router(f.auth.RequirePermissions("leave.approve"))

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeSuccess, body.Code)
}

func TestSuperAdminBypassViaRbacCode(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	user := f.createUser(t, &tenant.ID, "alice", models.RoleEmployee)
	r := f.router(f.auth.RequirePermissions("leave.approve"))

	// 遗留角色是普通员工，但RBAC角色列表里有超管代码
	body := doRequest(t, r, f.token(t, user, []string{models.RoleSuperAdmin}), nil)
	assert.Equal(t, errors.CodeSuccess, body.Code)
}

func TestPermissionDeniedWithoutTenant(t *testing.T) {
	f := newGuardFixture(t)
	user := f.createUser(t, nil, "drifter", models.RoleEmployee)
	r := f.router(f.auth.RequirePermissions("leave.approve"))

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeForbidden, body.Code)
	assert.Contains(t, body.Message, "租户")
}

func TestPermissionGranted(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	user := f.createUser(t, &tenant.ID, "alice", models.RoleEmployee)
	f.grantPermission(t, user, tenant.ID, "leave.approve")
	r := f.router(f.auth.RequirePermissions("leave.approve"))

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeSuccess, body.Code)
}

func TestPermissionOrSemantics(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	user := f.createUser(t, &tenant.ID, "manager", models.RoleManager)
	f.grantPermission(t, user, tenant.ID, "leave.approve")
	// 声明多个权限，持有其中之一即放行
	r := f.router(f.auth.RequirePermissions("leave.reject", "leave.approve"))

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeSuccess, body.Code)
}

func TestPermissionDeniedNamesRequiredCodes(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	user := f.createUser(t, &tenant.ID, "alice", models.RoleEmployee)
	r := f.router(f.auth.RequirePermissions("leave.approve", "leave.reject"))

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeForbidden, body.Code)
	assert.Contains(t, body.Message, "leave.approve")
	assert.Contains(t, body.Message, "leave.reject")
}

func TestTenantResolvedFromHeader(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	// 用户无租户归属，租户只能来自传输层
	user := f.createUser(t, nil, "consultant", models.RoleEmployee)
	f.grantPermission(t, user, tenant.ID, "leave.approve")
	r := f.router(f.auth.RequirePermissions("leave.approve"))

	body := doRequest(t, r, f.token(t, user, nil), map[string]string{
		"X-Tenant-ID": fmt.Sprintf("%d", tenant.ID),
	})
	assert.Equal(t, errors.CodeSuccess, body.Code)
}

func TestRequireRolesLegacyCaseInsensitive(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	// 历史数据里遗留角色值存在大小写和空白不一致
	user := f.createUser(t, &tenant.ID, "oldtimer", "  manager  ")
	r := f.router(f.auth.RequireRoles(models.RoleManager))

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeSuccess, body.Code)
}

func TestRequireRolesRbacCode(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	user := f.createUser(t, &tenant.ID, "alice", models.RoleEmployee)
	r := f.router(f.auth.RequireRoles("PLANNER"))

	body := doRequest(t, r, f.token(t, user, []string{"planner"}), nil)
	assert.Equal(t, errors.CodeSuccess, body.Code)
}

func TestRequireRolesDeniedNamesRequired(t *testing.T) {
	f := newGuardFixture(t)
	tenant := f.createTenant(t, "acme")
	user := f.createUser(t, &tenant.ID, "alice", models.RoleEmployee)
	r := f.router(f.auth.RequireRoles(models.RoleManager, models.RoleAdminRH))

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeForbidden, body.Code)
	assert.Contains(t, body.Message, models.RoleManager)
	assert.Contains(t, body.Message, models.RoleAdminRH)
}

func TestRequireRolesSuperAdminBypass(t *testing.T) {
	f := newGuardFixture(t)
	user := f.createUser(t, nil, "root", models.RoleSuperAdmin)
	r := f.router(f.auth.RequireRoles(models.RoleManager))

	body := doRequest(t, r, f.token(t, user, nil), nil)
	assert.Equal(t, errors.CodeSuccess, body.Code)
}
