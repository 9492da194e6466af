package services

import (
	"fmt"
	"testing"
	"time"

	"staffhub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 每个测试用独立的内存SQLite实例
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.UserTenantRole{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	return db
}

func seedTenant(t *testing.T, db *gorm.DB, name, code string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: name, Code: code, Status: models.TenantStatusActive}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func seedUser(t *testing.T, db *gorm.DB, tenantID *uint, username string) *models.User {
	t.Helper()
	user := &models.User{
		TenantID: tenantID,
		Username: username,
		Email:    username + "@example.com",
		Name:     "测试用户" + username,
		Role:     models.RoleEmployee,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("Test@123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPermissions(t *testing.T, db *gorm.DB, codes ...string) []models.Permission {
	t.Helper()
	permissions := make([]models.Permission, 0, len(codes))
	for _, code := range codes {
		perm := models.Permission{
			Code:     code,
			Name:     "权限" + code,
			Category: models.CategoryUsers,
			IsActive: true,
		}
		require.NoError(t, db.Create(&perm).Error)
		permissions = append(permissions, perm)
	}
	return permissions
}

func seedRole(t *testing.T, db *gorm.DB, tenantID *uint, code string, isSystem bool) *models.Role {
	t.Helper()
	role := &models.Role{
		TenantID: tenantID,
		Code:     code,
		Name:     "角色" + code,
		IsSystem: isSystem,
		IsActive: true,
	}
	require.NoError(t, db.Create(role).Error)
	return role
}

func seedBinding(t *testing.T, db *gorm.DB, userID, tenantID, roleID uint) *models.UserTenantRole {
	t.Helper()
	binding := &models.UserTenantRole{
		UserID:     userID,
		TenantID:   tenantID,
		RoleID:     roleID,
		IsActive:   true,
		AssignedBy: userID,
		AssignedAt: time.Now(),
	}
	require.NoError(t, db.Create(binding).Error)
	return binding
}
