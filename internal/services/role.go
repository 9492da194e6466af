package services

import (
	goerrors "errors"
	"strings"
	"unicode/utf8"

	"staffhub/internal/models"
	"staffhub/pkg/errors"
	"staffhub/pkg/logger"

	"gorm.io/gorm"
)

// RoleService 角色注册表
// 管理系统级与租户级角色及其权限集。权限集的唯一修改入口是
// AssignPermissions（整体替换），Update 和 ResetDefaultPermissions 都委托给它。
type RoleService struct {
	db       *gorm.DB
	defaults map[string][]string // 角色代码 -> 默认权限基线
}

func NewRoleService(db *gorm.DB) *RoleService {
	return NewRoleServiceWithDefaults(db, DefaultRolePermissions)
}

// NewRoleServiceWithDefaults 注入自定义默认权限基线（测试或私有化部署用）
func NewRoleServiceWithDefaults(db *gorm.DB, defaults map[string][]string) *RoleService {
	return &RoleService{db: db, defaults: defaults}
}

// CreateRoleInput 创建角色参数
type CreateRoleInput struct {
	Code            string
	Name            string
	Description     string
	IsSystem        bool
	PermissionCodes []string
}

// UpdateRoleInput 更新角色参数；nil字段表示不修改
// PermissionCodes 为nil表示不动权限集，空列表表示清空全部权限
type UpdateRoleInput struct {
	Name            *string
	Description     *string
	IsActive        *bool
	PermissionCodes []string
}

// scoped 按租户范围过滤角色（tenantID为nil时匹配系统级角色）
func (s *RoleService) scoped(tenantID *uint) *gorm.DB {
	if tenantID == nil {
		return s.db.Where("tenant_id IS NULL")
	}
	return s.db.Where("tenant_id = ?", *tenantID)
}

// ========== 基础CRUD方法 ==========

// Create 创建角色
// 系统级角色（无租户归属）只允许创建超级管理员角色，防止误建全局高权限角色。
func (s *RoleService) Create(tenantID *uint, input CreateRoleInput) (*models.Role, error) {
	if err := s.ValidateCreateParams(input.Code, input.Name); err != nil {
		return nil, err
	}

	// 检查角色代码是否在同一范围内重复
	var count int64
	s.scoped(tenantID).Model(&models.Role{}).Where("code = ?", input.Code).Count(&count)
	if count > 0 {
		return nil, errors.Conflict("角色代码已存在: %s", input.Code)
	}

	if tenantID == nil && input.Code != models.RoleSuperAdmin {
		return nil, errors.Forbidden("系统级只允许创建 %s 角色", models.RoleSuperAdmin)
	}

	// 先解析权限代码再落库，权限代码有误时不留下孤儿角色
	permissions, err := s.resolvePermissions(input.PermissionCodes)
	if err != nil {
		return nil, err
	}

	role := &models.Role{
		TenantID:    tenantID,
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		IsSystem:    input.IsSystem,
		IsActive:    true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		if len(permissions) == 0 {
			return nil
		}
		return replacePermissions(tx, role.ID, permissions)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(role.ID)
}

// GetByID 根据ID获取角色
func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.Preload("Tenant").Preload("Permissions").First(&role, id).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("角色不存在")
		}
		return nil, err
	}
	return &role, nil
}

// GetByCode 在租户范围内按代码获取角色（含系统级角色兜底）
func (s *RoleService) GetByCode(tenantID *uint, code string) (*models.Role, error) {
	var role models.Role
	err := s.scoped(tenantID).Preload("Permissions").Where("code = ?", code).First(&role).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("角色不存在: %s", code)
		}
		return nil, err
	}
	return &role, nil
}

// GetByTenant 获取范围内的活跃角色列表，按名称排序
func (s *RoleService) GetByTenant(tenantID *uint) ([]*models.Role, error) {
	var roles []*models.Role
	err := s.scoped(tenantID).Where("is_active = ?", true).
		Preload("Permissions").
		Order("name asc").
		Find(&roles).Error
	return roles, err
}

// GetByTenantWithPage 分页获取范围内的活跃角色
func (s *RoleService) GetByTenantWithPage(tenantID *uint, page, pageSize int) ([]*models.Role, int64, error) {
	var roles []*models.Role
	var total int64

	query := s.scoped(tenantID).Model(&models.Role{}).Where("is_active = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Permissions").Order("name asc").Offset(offset).Limit(pageSize).Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// Update 更新角色
// 系统角色（超级管理员除外）只开放权限集修改：名称、描述、启用状态
// 的实际变更一律拒绝，防止破坏平台预置角色的完整性。
func (s *RoleService) Update(tenantID *uint, id uint, input UpdateRoleInput) (*models.Role, error) {
	role, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	// 角色必须属于当前租户范围（系统级角色对所有租户可见）
	if role.TenantID != nil && (tenantID == nil || *role.TenantID != *tenantID) {
		return nil, errors.Forbidden("角色不属于当前租户")
	}

	protected := role.IsSystem && role.Code != models.RoleSuperAdmin
	if protected {
		if (input.Name != nil && *input.Name != role.Name) ||
			(input.Description != nil && *input.Description != role.Description) ||
			(input.IsActive != nil && *input.IsActive != role.IsActive) {
			return nil, errors.Forbidden("系统角色的名称、描述和状态不允许修改，仅可调整权限集")
		}
	}

	if !protected {
		if input.Name != nil {
			if !s.ValidateName(*input.Name) {
				return nil, errors.BadRequest("角色名称长度必须在2-50个字符之间")
			}
			role.Name = *input.Name
		}
		if input.Description != nil {
			role.Description = *input.Description
		}
		if input.IsActive != nil {
			role.IsActive = *input.IsActive
		}
		if err := s.db.Save(role).Error; err != nil {
			return nil, err
		}
	}

	// 权限集修改对所有角色开放（含系统角色）；空列表表示清空
	if input.PermissionCodes != nil {
		codes := make([]string, 0, len(input.PermissionCodes))
		for _, code := range input.PermissionCodes {
			if strings.TrimSpace(code) != "" {
				codes = append(codes, code)
			}
		}
		if err := s.AssignPermissions(id, codes); err != nil {
			return nil, err
		}
	}

	return s.GetByID(id)
}

// Delete 删除角色（软删除）
// 仍被活跃绑定引用的角色不允许删除，避免静默剥夺用户权限。
func (s *RoleService) Delete(id uint) error {
	role, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if role.IsSystem {
		return errors.Forbidden("系统角色不允许删除")
	}

	var bindingCount int64
	s.db.Model(&models.UserTenantRole{}).
		Where("role_id = ? AND is_active = ?", id, true).
		Count(&bindingCount)
	if bindingCount > 0 {
		return errors.Conflict("无法删除角色：仍有 %d 个用户持有该角色", bindingCount)
	}

	return s.db.Model(role).Update("is_active", false).Error
}

// ========== 权限管理方法 ==========

// AssignPermissions 为角色整体替换权限集
// 任一代码无法解析到启用的权限时整个调用失败（报告缺失的代码），
// 不做部分写入；成功时在一个事务里删旧插新。
func (s *RoleService) AssignPermissions(roleID uint, permissionCodes []string) error {
	if _, err := s.GetByID(roleID); err != nil {
		return err
	}

	permissions, err := s.resolvePermissions(permissionCodes)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return replacePermissions(tx, roleID, permissions)
	})
}

// resolvePermissions 将权限代码解析为启用的权限记录
// 任一代码不存在或已停用时整个调用失败，并报告全部缺失的代码。
func (s *RoleService) resolvePermissions(permissionCodes []string) ([]models.Permission, error) {
	var permissions []models.Permission
	if len(permissionCodes) > 0 {
		err := s.db.Where("code IN ? AND is_active = ?", permissionCodes, true).
			Find(&permissions).Error
		if err != nil {
			return nil, err
		}
	}

	foundCodes := make(map[string]bool, len(permissions))
	for _, permission := range permissions {
		foundCodes[permission.Code] = true
	}
	var missing []string
	for _, code := range permissionCodes {
		if !foundCodes[code] {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NotFound("以下权限不存在或已停用: %s", strings.Join(missing, ", "))
	}

	return permissions, nil
}

// replacePermissions 整体替换角色的权限集：删除旧权限集，插入新权限集
func replacePermissions(tx *gorm.DB, roleID uint, permissions []models.Permission) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}
	if len(permissions) == 0 {
		return nil
	}
	rolePermissions := make([]models.RolePermission, 0, len(permissions))
	for _, permission := range permissions {
		rolePermissions = append(rolePermissions, models.RolePermission{
			RoleID:       roleID,
			PermissionID: permission.ID,
		})
	}
	return tx.Create(&rolePermissions).Error
}

// ResetDefaultPermissions 将系统角色的权限集重置为默认基线
func (s *RoleService) ResetDefaultPermissions(roleID uint) (*models.Role, error) {
	role, err := s.GetByID(roleID)
	if err != nil {
		return nil, err
	}

	if !role.IsSystem {
		return nil, errors.Forbidden("仅系统角色支持重置默认权限")
	}

	permissionCodes, ok := s.defaults[role.Code]
	if !ok {
		return nil, errors.NotFound("角色 %s 未定义默认权限基线", role.Code)
	}

	if err := s.AssignPermissions(roleID, permissionCodes); err != nil {
		return nil, err
	}

	return s.GetByID(roleID)
}

// ========== 初始化方法 ==========

// InitializeSystemRoles 初始化系统级角色（幂等，已存在则跳过）
func (s *RoleService) InitializeSystemRoles() error {
	appLogger := logger.GetLogger()

	systemRoles := []models.Role{
		{
			Code:        models.RoleSuperAdmin,
			Name:        "超级管理员",
			Description: "平台最高权限，管理所有租户",
			IsSystem:    true,
			IsActive:    true,
		},
	}

	for _, roleData := range systemRoles {
		var count int64
		s.db.Model(&models.Role{}).
			Where("tenant_id IS NULL AND code = ?", roleData.Code).
			Count(&count)
		if count > 0 {
			continue
		}

		if err := s.db.Create(&roleData).Error; err != nil {
			return err
		}
		if codes, ok := s.defaults[roleData.Code]; ok {
			if err := s.AssignPermissions(roleData.ID, codes); err != nil {
				return err
			}
		}
		appLogger.Infof("系统角色 %s 创建成功", roleData.Code)
	}

	return nil
}

// InitializeTenantRoles 为租户初始化默认角色（幂等，已存在则跳过）
// 在租户开通时调用；新建角色同时附上默认权限基线。
func (s *RoleService) InitializeTenantRoles(tenantID uint) error {
	appLogger := logger.GetLogger()

	defaultRoles := []models.Role{
		{
			Code:        models.RoleAdminRH,
			Name:        "人事管理员",
			Description: "管理租户内全部人力资源数据",
			IsSystem:    true,
			IsActive:    true,
		},
		{
			Code:        models.RoleManager,
			Name:        "经理",
			Description: "团队管理与审批",
			IsSystem:    true,
			IsActive:    true,
		},
		{
			Code:        models.RoleEmployee,
			Name:        "员工",
			Description: "仅访问个人数据",
			IsSystem:    true,
			IsActive:    true,
		},
	}

	for _, roleData := range defaultRoles {
		var count int64
		s.db.Model(&models.Role{}).
			Where("tenant_id = ? AND code = ?", tenantID, roleData.Code).
			Count(&count)
		if count > 0 {
			continue
		}

		roleData.TenantID = &tenantID
		if err := s.db.Create(&roleData).Error; err != nil {
			return err
		}
		if codes, ok := s.defaults[roleData.Code]; ok {
			if err := s.AssignPermissions(roleData.ID, codes); err != nil {
				return err
			}
		}
		appLogger.Infof("租户 %d 默认角色 %s 创建成功", tenantID, roleData.Code)
	}

	return nil
}

// ========== 验证方法 ==========

// ValidateCode 验证角色代码
func (s *RoleService) ValidateCode(code string) bool {
	if len(code) < 2 || len(code) > 50 {
		return false
	}
	// 只允许字母、数字和下划线
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// ValidateName 验证角色名称
func (s *RoleService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 50
}

// ValidateCreateParams 验证创建角色的参数
func (s *RoleService) ValidateCreateParams(code, name string) error {
	if !s.ValidateCode(code) {
		return errors.BadRequest("角色代码长度必须在2-50个字符之间，且只能包含字母、数字和下划线")
	}
	if !s.ValidateName(name) {
		return errors.BadRequest("角色名称长度必须在2-50个字符之间")
	}
	return nil
}
