package services

import (
	goerrors "errors"
	"fmt"
	"unicode/utf8"

	"staffhub/internal/models"
	"staffhub/pkg/errors"

	"gorm.io/gorm"
)

// TenantService 租户管理
// 租户开通时同步初始化默认角色（ADMIN_RH / MANAGER / EMPLOYEE）。
type TenantService struct {
	db          *gorm.DB
	roleService *RoleService
}

func NewTenantService(db *gorm.DB, roleService *RoleService) *TenantService {
	return &TenantService{db: db, roleService: roleService}
}

// Create 创建租户并初始化默认角色
func (s *TenantService) Create(name, code string) (*models.Tenant, error) {
	if err := s.ValidateCreateParams(name, code); err != nil {
		return nil, err
	}

	// 检查代码是否重复
	var count int64
	s.db.Model(&models.Tenant{}).Where("code = ?", code).Count(&count)
	if count > 0 {
		return nil, errors.Conflict("租户代码已存在: %s", code)
	}

	tenant := &models.Tenant{
		Name:   name,
		Code:   code,
		Status: models.TenantStatusActive,
	}

	if err := s.db.Create(tenant).Error; err != nil {
		return nil, err
	}

	if err := s.roleService.InitializeTenantRoles(tenant.ID); err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetByID 根据ID获取租户
func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("租户不存在")
		}
		return nil, err
	}
	return &tenant, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *TenantService) GetWithFiltersAndPage(status, keyword string, page, pageSize int) ([]*models.Tenant, int64, error) {
	var tenants []*models.Tenant
	var total int64

	query := s.db.Model(&models.Tenant{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// Update 更新租户
func (s *TenantService) Update(id uint, name, status string) (*models.Tenant, error) {
	if !s.ValidateName(name) {
		return nil, errors.BadRequest("租户名称长度必须在2-100个字符之间")
	}
	if status != models.TenantStatusActive && status != models.TenantStatusInactive {
		return nil, errors.BadRequest("状态只能是active或inactive")
	}

	tenant, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	tenant.Name = name
	tenant.Status = status

	err = s.db.Save(tenant).Error
	return tenant, err
}

// ========== 验证方法 ==========

// ValidateName 验证租户名称
func (s *TenantService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 100
}

// ValidateCode 验证租户代码
func (s *TenantService) ValidateCode(code string) bool {
	if len(code) < 2 || len(code) > 50 {
		return false
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

// ValidateCreateParams 验证创建租户的参数
func (s *TenantService) ValidateCreateParams(name, code string) error {
	if !s.ValidateName(name) {
		return errors.BadRequest("租户名称长度必须在2-100个字符之间")
	}
	if !s.ValidateCode(code) {
		return errors.BadRequest("租户代码长度必须在2-50个字符之间，且只能包含小写字母、数字、下划线和中划线")
	}
	return nil
}
