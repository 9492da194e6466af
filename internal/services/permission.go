package services

import (
	goerrors "errors"

	"staffhub/internal/models"
	"staffhub/pkg/errors"

	"gorm.io/gorm"
)

// PermissionService 权限目录与权限解析
// 目录本身只读（由种子数据维护）；解析每次请求实时计算，不做跨请求缓存。
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// ========== 权限目录 ==========

// ListActive 获取所有启用的权限，按分类、名称排序
func (s *PermissionService) ListActive() ([]models.Permission, error) {
	var permissions []models.Permission
	err := s.db.Where("is_active = ?", true).
		Order("category asc, name asc").
		Find(&permissions).Error
	return permissions, err
}

// GetByCode 根据代码获取权限
func (s *PermissionService) GetByCode(code string) (*models.Permission, error) {
	var permission models.Permission
	err := s.db.Where("code = ?", code).First(&permission).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("权限不存在: %s", code)
		}
		return nil, err
	}
	return &permission, nil
}

// GetByCategory 根据分类获取启用的权限
func (s *PermissionService) GetByCategory(category string) ([]models.Permission, error) {
	var permissions []models.Permission
	err := s.db.Where("category = ? AND is_active = ?", category, true).
		Order("name asc").
		Find(&permissions).Error
	return permissions, err
}

// GetRolePermissions 获取角色当前的权限集
func (s *PermissionService) GetRolePermissions(roleID uint) ([]models.Permission, error) {
	var permissions []models.Permission
	err := s.db.
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&permissions).Error
	return permissions, err
}

// RoleHasPermission 检查角色是否持有指定权限
func (s *PermissionService) RoleHasPermission(roleID uint, permissionCode string) (bool, error) {
	var count int64
	err := s.db.Model(&models.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ? AND permissions.code = ?", roleID, permissionCode).
		Count(&count).Error
	return count > 0, err
}

// ========== 权限解析 ==========

// GetUserPermissions 计算用户在租户内的有效权限集
// 遍历活跃绑定 -> 角色 -> 权限，过滤停用权限并按代码去重。
// 角色之间没有继承关系，解析不递归。
func (s *PermissionService) GetUserPermissions(userID, tenantID uint) ([]models.Permission, error) {
	var bindings []models.UserTenantRole
	err := s.db.Where("user_id = ? AND tenant_id = ? AND is_active = ?", userID, tenantID, true).
		Preload("Role.Permissions").
		Find(&bindings).Error
	if err != nil {
		return nil, err
	}

	permissionMap := make(map[string]models.Permission)
	for _, binding := range bindings {
		if binding.Role == nil {
			continue
		}
		for _, permission := range binding.Role.Permissions {
			if permission.IsActive {
				permissionMap[permission.Code] = permission
			}
		}
	}

	permissions := make([]models.Permission, 0, len(permissionMap))
	for _, permission := range permissionMap {
		permissions = append(permissions, permission)
	}
	return permissions, nil
}

// GetUserPermissionCodes 计算用户在租户内的有效权限代码集
func (s *PermissionService) GetUserPermissionCodes(userID, tenantID uint) ([]string, error) {
	permissions, err := s.GetUserPermissions(userID, tenantID)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(permissions))
	for _, permission := range permissions {
		codes = append(codes, permission.Code)
	}
	return codes, nil
}

// UserHasPermission 检查用户在租户内是否持有指定权限
// 语义等价于 GetUserPermissions 结果的成员判断
func (s *PermissionService) UserHasPermission(userID, tenantID uint, permissionCode string) (bool, error) {
	var bindings []models.UserTenantRole
	err := s.db.Where("user_id = ? AND tenant_id = ? AND is_active = ?", userID, tenantID, true).
		Preload("Role.Permissions").
		Find(&bindings).Error
	if err != nil {
		return false, err
	}

	for _, binding := range bindings {
		if binding.Role == nil {
			continue
		}
		for _, permission := range binding.Role.Permissions {
			if permission.IsActive && permission.Code == permissionCode {
				return true, nil
			}
		}
	}
	return false, nil
}
