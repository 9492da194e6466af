package services

import (
	"testing"

	"staffhub/internal/models"
	"staffhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRolesIdempotent(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	actor := seedUser(t, db, &tenant.ID, "admin")
	role := seedRole(t, db, &tenant.ID, "PLANNER", false)

	first, err := service.AssignRoles(user.ID, tenant.ID, []uint{role.ID}, actor.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// 重复分配：空操作，不产生新绑定也不发重复审计事件
	second, err := service.AssignRoles(user.ID, tenant.ID, []uint{role.ID}, actor.ID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	var bindingCount int64
	db.Model(&models.UserTenantRole{}).
		Where("user_id = ? AND tenant_id = ? AND role_id = ?", user.ID, tenant.ID, role.ID).
		Count(&bindingCount)
	assert.Equal(t, int64(1), bindingCount)

	var auditCount int64
	db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionRoleAssigned).Count(&auditCount)
	assert.Equal(t, int64(1), auditCount)
}

func TestAssignRolesReactivation(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	actor := seedUser(t, db, &tenant.ID, "admin")
	actor2 := seedUser(t, db, &tenant.ID, "admin2")
	role := seedRole(t, db, &tenant.ID, "PLANNER", false)

	first, err := service.AssignRoles(user.ID, tenant.ID, []uint{role.ID}, actor.ID)
	require.NoError(t, err)

	_, err = service.RemoveRoles(user.ID, tenant.ID, []uint{role.ID}, actor.ID)
	require.NoError(t, err)

	// 重新分配复用原绑定行，刷新分配信息
	again, err := service.AssignRoles(user.ID, tenant.ID, []uint{role.ID}, actor2.ID)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, first[0].ID, again[0].ID)
	assert.True(t, again[0].IsActive)
	assert.Equal(t, actor2.ID, again[0].AssignedBy)

	// 分配、移除、复活各发一条审计事件
	var auditCount int64
	db.Model(&models.AuditLog{}).Count(&auditCount)
	assert.Equal(t, int64(3), auditCount)
}

func TestAssignRolesUnknownRoleFailsWhole(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	role := seedRole(t, db, &tenant.ID, "PLANNER", false)

	_, err := service.AssignRoles(user.ID, tenant.ID, []uint{role.ID, 9999}, user.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	// 整体失败：合法的那个角色也不应被写入
	var bindingCount int64
	db.Model(&models.UserTenantRole{}).Where("user_id = ?", user.ID).Count(&bindingCount)
	assert.Equal(t, int64(0), bindingCount)
}

func TestAssignRolesRejectsOtherTenantRole(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenantA := seedTenant(t, db, "租户A", "tenant-a")
	tenantB := seedTenant(t, db, "租户B", "tenant-b")
	user := seedUser(t, db, &tenantA.ID, "alice")
	otherRole := seedRole(t, db, &tenantB.ID, "PLANNER", false)

	_, err := service.AssignRoles(user.ID, tenantA.ID, []uint{otherRole.ID}, user.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAssignRolesAcceptsSystemScopedRole(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	superRole := seedRole(t, db, nil, models.RoleSuperAdmin, true)

	// 系统级角色对所有租户可见
	bindings, err := service.AssignRoles(user.ID, tenant.ID, []uint{superRole.ID}, user.ID)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
}

func TestAssignRolesUnknownUserOrTenant(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	role := seedRole(t, db, &tenant.ID, "PLANNER", false)

	_, err := service.AssignRoles(9999, tenant.ID, []uint{role.ID}, user.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	_, err = service.AssignRoles(user.ID, 9999, []uint{role.ID}, user.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRemoveRolesNoActiveBinding(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	role := seedRole(t, db, &tenant.ID, "PLANNER", false)

	_, err := service.RemoveRoles(user.ID, tenant.ID, []uint{role.ID}, user.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSetRolesReplace(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	role1 := seedRole(t, db, &tenant.ID, "ROLE_ONE", false)
	role2 := seedRole(t, db, &tenant.ID, "ROLE_TWO", false)
	role3 := seedRole(t, db, &tenant.ID, "ROLE_THREE", false)

	_, err := service.AssignRoles(user.ID, tenant.ID, []uint{role1.ID, role2.ID}, user.ID)
	require.NoError(t, err)

	// 整体替换后只持有新列表
	_, err = service.SetRoles(user.ID, tenant.ID, []uint{role2.ID, role3.ID}, user.ID)
	require.NoError(t, err)

	codes, err := service.GetUserRoleCodes(user.ID, tenant.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ROLE_TWO", "ROLE_THREE"}, codes)

	// role1 的绑定行仍在，只是不活跃
	var inactive models.UserTenantRole
	require.NoError(t, db.Where("user_id = ? AND role_id = ?", user.ID, role1.ID).First(&inactive).Error)
	assert.False(t, inactive.IsActive)
}

func TestSetRolesEmptyListThenAssign(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	role1 := seedRole(t, db, &tenant.ID, "ROLE_ONE", false)
	role2 := seedRole(t, db, &tenant.ID, "ROLE_TWO", false)

	_, err := service.AssignRoles(user.ID, tenant.ID, []uint{role1.ID, role2.ID}, user.ID)
	require.NoError(t, err)

	// 空列表整体替换即清空全部活跃绑定
	bindings, err := service.SetRoles(user.ID, tenant.ID, []uint{}, user.ID)
	require.NoError(t, err)
	assert.Empty(t, bindings)

	codes, err := service.GetUserRoleCodes(user.ID, tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, codes)

	// 清空后重新授予，活跃集合恰好等于新授予的角色
	_, err = service.AssignRoles(user.ID, tenant.ID, []uint{role1.ID}, user.ID)
	require.NoError(t, err)

	codes, err = service.GetUserRoleCodes(user.ID, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_ONE"}, codes)
}

func TestGetUserTenantsGrouping(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenantA := seedTenant(t, db, "租户A", "tenant-a")
	tenantB := seedTenant(t, db, "租户B", "tenant-b")
	user := seedUser(t, db, &tenantA.ID, "alice")
	roleA1 := seedRole(t, db, &tenantA.ID, "ROLE_A1", false)
	roleA2 := seedRole(t, db, &tenantA.ID, "ROLE_A2", false)
	roleB1 := seedRole(t, db, &tenantB.ID, "ROLE_B1", false)

	_, err := service.AssignRoles(user.ID, tenantA.ID, []uint{roleA1.ID, roleA2.ID}, user.ID)
	require.NoError(t, err)
	_, err = service.AssignRoles(user.ID, tenantB.ID, []uint{roleB1.ID}, user.ID)
	require.NoError(t, err)

	// 移除的角色不应出现在汇总里
	_, err = service.RemoveRoles(user.ID, tenantA.ID, []uint{roleA2.ID}, user.ID)
	require.NoError(t, err)

	summaries, err := service.GetUserTenants(user.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, tenantA.ID, summaries[0].Tenant.ID)
	require.Len(t, summaries[0].Roles, 1)
	assert.Equal(t, "ROLE_A1", summaries[0].Roles[0].Code)

	assert.Equal(t, tenantB.ID, summaries[1].Tenant.ID)
	require.Len(t, summaries[1].Roles, 1)
}

func TestUserHasRole(t *testing.T) {
	db := newTestDB(t)
	service := NewUserRoleService(db, NewAuditService(db))
	tenant := seedTenant(t, db, "租户A", "tenant-a")
	user := seedUser(t, db, &tenant.ID, "alice")
	role := seedRole(t, db, &tenant.ID, "PLANNER", false)

	has, err := service.UserHasRole(user.ID, tenant.ID, "PLANNER")
	require.NoError(t, err)
	assert.False(t, has)

	_, err = service.AssignRoles(user.ID, tenant.ID, []uint{role.ID}, user.ID)
	require.NoError(t, err)

	has, err = service.UserHasRole(user.ID, tenant.ID, "PLANNER")
	require.NoError(t, err)
	assert.True(t, has)

	// 不存在的角色代码不报错，返回false
	has, err = service.UserHasRole(user.ID, tenant.ID, "NOPE")
	require.NoError(t, err)
	assert.False(t, has)
}
