package services

import (
	"testing"

	"staffhub/internal/models"
	"staffhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserPermissionsUnionDedup(t *testing.T) {
	db := newTestDB(t)
	service := NewPermissionService(db)
	roleService := NewRoleService(db)
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	seedPermissions(t, db, "p.one", "p.two", "p.three")

	role1 := seedRole(t, db, &tenant.ID, "ROLE_ONE", false)
	role2 := seedRole(t, db, &tenant.ID, "ROLE_TWO", false)
	require.NoError(t, roleService.AssignPermissions(role1.ID, []string{"p.one", "p.two"}))
	require.NoError(t, roleService.AssignPermissions(role2.ID, []string{"p.two", "p.three"}))

	seedBinding(t, db, user.ID, tenant.ID, role1.ID)
	seedBinding(t, db, user.ID, tenant.ID, role2.ID)

	// 多角色权限取并集并去重
	codes, err := service.GetUserPermissionCodes(user.ID, tenant.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p.one", "p.two", "p.three"}, codes)
}

func TestGetUserPermissionsFiltersInactivePermission(t *testing.T) {
	db := newTestDB(t)
	service := NewPermissionService(db)
	roleService := NewRoleService(db)
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	perms := seedPermissions(t, db, "p.active", "p.disabled")

	role := seedRole(t, db, &tenant.ID, "ROLE_ONE", false)
	require.NoError(t, roleService.AssignPermissions(role.ID, []string{"p.active", "p.disabled"}))
	seedBinding(t, db, user.ID, tenant.ID, role.ID)

	// 分配后停用的权限不参与解析
	require.NoError(t, db.Model(&perms[1]).Update("is_active", false).Error)

	codes, err := service.GetUserPermissionCodes(user.ID, tenant.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p.active"}, codes)
}

func TestGetUserPermissionsIgnoresInactiveBinding(t *testing.T) {
	db := newTestDB(t)
	service := NewPermissionService(db)
	roleService := NewRoleService(db)
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	seedPermissions(t, db, "p.one")

	role := seedRole(t, db, &tenant.ID, "ROLE_ONE", false)
	require.NoError(t, roleService.AssignPermissions(role.ID, []string{"p.one"}))
	binding := seedBinding(t, db, user.ID, tenant.ID, role.ID)
	require.NoError(t, db.Model(binding).Update("is_active", false).Error)

	codes, err := service.GetUserPermissionCodes(user.ID, tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestGetUserPermissionsScopedToTenant(t *testing.T) {
	db := newTestDB(t)
	service := NewPermissionService(db)
	roleService := NewRoleService(db)
	tenantA := seedTenant(t, db, "租户A", "tenant-a")
	tenantB := seedTenant(t, db, "租户B", "tenant-b")
	user := seedUser(t, db, &tenantA.ID, "alice")
	seedPermissions(t, db, "p.one")

	role := seedRole(t, db, &tenantA.ID, "ROLE_ONE", false)
	require.NoError(t, roleService.AssignPermissions(role.ID, []string{"p.one"}))
	seedBinding(t, db, user.ID, tenantA.ID, role.ID)

	// 权限解析严格限定在查询的租户内
	codes, err := service.GetUserPermissionCodes(user.ID, tenantB.ID)
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestUserHasPermission(t *testing.T) {
	db := newTestDB(t)
	service := NewPermissionService(db)
	roleService := NewRoleService(db)
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	seedPermissions(t, db, "leave.approve")

	role := seedRole(t, db, &tenant.ID, "MANAGER_LIKE", false)
	require.NoError(t, roleService.AssignPermissions(role.ID, []string{"leave.approve"}))
	seedBinding(t, db, user.ID, tenant.ID, role.ID)

	has, err := service.UserHasPermission(user.ID, tenant.ID, "leave.approve")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = service.UserHasPermission(user.ID, tenant.ID, "leave.reject")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestListActiveOrdering(t *testing.T) {
	db := newTestDB(t)
	service := NewPermissionService(db)

	require.NoError(t, db.Create(&models.Permission{Code: "b.one", Name: "乙权限", Category: "beta", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Permission{Code: "a.one", Name: "甲权限", Category: "alpha", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Permission{Code: "a.off", Name: "停用权限", Category: "alpha", IsActive: false}).Error)

	permissions, err := service.ListActive()
	require.NoError(t, err)
	require.Len(t, permissions, 2)
	assert.Equal(t, "alpha", permissions[0].Category)
	assert.Equal(t, "beta", permissions[1].Category)
}

func TestGetByCodeNotFound(t *testing.T) {
	db := newTestDB(t)
	service := NewPermissionService(db)

	_, err := service.GetByCode("nope.nothing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Contains(t, err.Error(), "nope.nothing")
}
