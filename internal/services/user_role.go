package services

import (
	goerrors "errors"
	"time"

	"staffhub/internal/models"
	"staffhub/pkg/errors"
	"staffhub/pkg/logger"

	"gorm.io/gorm"
)

// UserRoleService 用户角色绑定账本
// 维护用户-租户-角色三元组的激活生命周期：绑定从不物理删除，
// 移除置为不活跃，重新分配复用原行。每次真实状态变更发审计事件，
// 空操作（重复分配已激活的绑定）不发。
type UserRoleService struct {
	db           *gorm.DB
	auditService *AuditService
}

func NewUserRoleService(db *gorm.DB, auditService *AuditService) *UserRoleService {
	return &UserRoleService{
		db:           db,
		auditService: auditService,
	}
}

// UserTenantSummary 用户在某租户内的角色汇总
type UserTenantSummary struct {
	Tenant *models.Tenant `json:"tenant"`
	Roles  []*models.Role `json:"roles"`
}

// emitAudit 发审计事件；审计失败不影响业务操作，只记日志
func (s *UserRoleService) emitAudit(tenantID, actorID uint, entry AuditEntry) {
	if s.auditService == nil {
		return
	}
	if _, err := s.auditService.Create(tenantID, actorID, entry); err != nil {
		logger.GetLogger().Warnf("审计写入失败（action=%s entity_id=%d）: %v", entry.Action, entry.EntityID, err)
	}
}

// AssignRoles 为用户在租户内分配角色
// 所有roleID先整体校验（存在、属于该租户或系统级、处于启用状态），
// 任一校验失败则整个调用失败、不写任何数据。
// 逐个roleID处理时：不活跃绑定复活并刷新分配信息；已活跃绑定原样跳过；
// 不存在则新建。注意逐个提交不在同一事务里，多角色调用中途失败时
// 已处理的角色保持已提交状态。
func (s *UserRoleService) AssignRoles(userID, tenantID uint, roleIDs []uint, assignedBy uint) ([]*models.UserTenantRole, error) {
	// 验证用户存在
	var userCount int64
	s.db.Model(&models.User{}).Where("id = ?", userID).Count(&userCount)
	if userCount == 0 {
		return nil, errors.NotFound("用户不存在")
	}

	// 验证租户存在
	var tenantCount int64
	s.db.Model(&models.Tenant{}).Where("id = ?", tenantID).Count(&tenantCount)
	if tenantCount == 0 {
		return nil, errors.NotFound("租户不存在")
	}

	// 验证所有角色：属于该租户或系统级，且处于启用状态
	var roles []models.Role
	if len(roleIDs) > 0 {
		err := s.db.Where("id IN ? AND (tenant_id = ? OR tenant_id IS NULL) AND is_active = ?",
			roleIDs, tenantID, true).
			Find(&roles).Error
		if err != nil {
			return nil, err
		}
	}
	roleMap := make(map[uint]*models.Role, len(roles))
	for i := range roles {
		roleMap[roles[i].ID] = &roles[i]
	}
	for _, roleID := range roleIDs {
		if _, ok := roleMap[roleID]; !ok {
			return nil, errors.NotFound("部分角色不存在或不属于该租户")
		}
	}

	results := make([]*models.UserTenantRole, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		role := roleMap[roleID]

		var existing models.UserTenantRole
		err := s.db.Where("user_id = ? AND tenant_id = ? AND role_id = ?", userID, tenantID, roleID).
			First(&existing).Error

		switch {
		case err == nil && existing.IsActive:
			// 已激活的绑定：空操作，不发重复事件
			results = append(results, &existing)

		case err == nil:
			// 复活不活跃的绑定，刷新分配信息
			existing.IsActive = true
			existing.AssignedBy = assignedBy
			existing.AssignedAt = time.Now()
			if err := s.db.Save(&existing).Error; err != nil {
				return nil, err
			}
			results = append(results, &existing)

			s.emitAudit(tenantID, assignedBy, AuditEntry{
				Action:   models.AuditActionRoleAssigned,
				Entity:   models.AuditEntityUserTenantRole,
				EntityID: existing.ID,
				NewValues: map[string]interface{}{
					"user_id":   userID,
					"tenant_id": tenantID,
					"role_id":   roleID,
					"role_code": role.Code,
				},
			})

		case goerrors.Is(err, gorm.ErrRecordNotFound):
			// 新建绑定
			binding := &models.UserTenantRole{
				UserID:     userID,
				TenantID:   tenantID,
				RoleID:     roleID,
				IsActive:   true,
				AssignedBy: assignedBy,
				AssignedAt: time.Now(),
			}
			if err := s.db.Create(binding).Error; err != nil {
				return nil, err
			}
			results = append(results, binding)

			s.emitAudit(tenantID, assignedBy, AuditEntry{
				Action:   models.AuditActionRoleAssigned,
				Entity:   models.AuditEntityUserTenantRole,
				EntityID: binding.ID,
				NewValues: map[string]interface{}{
					"user_id":   userID,
					"tenant_id": tenantID,
					"role_id":   roleID,
					"role_code": role.Code,
				},
			})

		default:
			return nil, err
		}
	}

	return results, nil
}

// RemoveRoles 移除用户在租户内的角色（软失效）
// 只处理活跃绑定；无任何匹配时报错。每个失效的绑定发一条移除事件，
// 事件里带角色代码便于追溯。
func (s *UserRoleService) RemoveRoles(userID, tenantID uint, roleIDs []uint, removedBy uint) ([]*models.UserTenantRole, error) {
	var bindings []models.UserTenantRole
	err := s.db.Where("user_id = ? AND tenant_id = ? AND role_id IN ? AND is_active = ?",
		userID, tenantID, roleIDs, true).
		Preload("Role").
		Find(&bindings).Error
	if err != nil {
		return nil, err
	}

	if len(bindings) == 0 {
		return nil, errors.NotFound("没有可移除的活跃角色")
	}

	results := make([]*models.UserTenantRole, 0, len(bindings))
	for i := range bindings {
		binding := &bindings[i]
		if err := s.db.Model(binding).Update("is_active", false).Error; err != nil {
			return nil, err
		}
		binding.IsActive = false
		results = append(results, binding)

		roleCode := ""
		if binding.Role != nil {
			roleCode = binding.Role.Code
		}
		s.emitAudit(tenantID, removedBy, AuditEntry{
			Action:   models.AuditActionRoleRemoved,
			Entity:   models.AuditEntityUserTenantRole,
			EntityID: binding.ID,
			OldValues: map[string]interface{}{
				"user_id":   userID,
				"tenant_id": tenantID,
				"role_id":   binding.RoleID,
				"role_code": roleCode,
			},
		})
	}

	return results, nil
}

// SetRoles 整体替换用户在租户内的角色
// 先无条件失效该用户在租户内的全部活跃绑定，再走AssignRoles分配新列表，
// 净效果是"从此只持有这些角色"。两步不在同一事务里。
func (s *UserRoleService) SetRoles(userID, tenantID uint, roleIDs []uint, assignedBy uint) ([]*models.UserTenantRole, error) {
	err := s.db.Model(&models.UserTenantRole{}).
		Where("user_id = ? AND tenant_id = ? AND is_active = ?", userID, tenantID, true).
		Update("is_active", false).Error
	if err != nil {
		return nil, err
	}

	return s.AssignRoles(userID, tenantID, roleIDs, assignedBy)
}

// GetUserRoles 获取用户在租户内的活跃绑定（含角色与权限明细）
func (s *UserRoleService) GetUserRoles(userID, tenantID uint) ([]*models.UserTenantRole, error) {
	var bindings []*models.UserTenantRole
	err := s.db.Where("user_id = ? AND tenant_id = ? AND is_active = ?", userID, tenantID, true).
		Preload("Role.Permissions").
		Find(&bindings).Error
	return bindings, err
}

// GetUserTenants 获取用户有活跃绑定的全部租户及各租户内的角色
// 单次查询取回所有绑定，内存里按租户分组聚合。
func (s *UserRoleService) GetUserTenants(userID uint) ([]*UserTenantSummary, error) {
	var bindings []models.UserTenantRole
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Preload("Tenant").
		Preload("Role").
		Order("tenant_id asc").
		Find(&bindings).Error
	if err != nil {
		return nil, err
	}

	summaryMap := make(map[uint]*UserTenantSummary)
	order := make([]uint, 0)
	for i := range bindings {
		binding := &bindings[i]
		summary, ok := summaryMap[binding.TenantID]
		if !ok {
			summary = &UserTenantSummary{Tenant: binding.Tenant}
			summaryMap[binding.TenantID] = summary
			order = append(order, binding.TenantID)
		}
		if binding.Role != nil {
			summary.Roles = append(summary.Roles, binding.Role)
		}
	}

	summaries := make([]*UserTenantSummary, 0, len(order))
	for _, tenantID := range order {
		summaries = append(summaries, summaryMap[tenantID])
	}
	return summaries, nil
}

// UserHasRole 检查用户在租户内是否持有指定角色代码
// 角色查找覆盖租户角色和系统级角色，再确认存在活跃绑定。
func (s *UserRoleService) UserHasRole(userID, tenantID uint, roleCode string) (bool, error) {
	var role models.Role
	err := s.db.Where("code = ? AND (tenant_id = ? OR tenant_id IS NULL)", roleCode, tenantID).
		First(&role).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	var count int64
	err = s.db.Model(&models.UserTenantRole{}).
		Where("user_id = ? AND tenant_id = ? AND role_id = ? AND is_active = ?",
			userID, tenantID, role.ID, true).
		Count(&count).Error
	return count > 0, err
}

// GetUserRoleCodes 获取用户在租户内持有的角色代码列表
func (s *UserRoleService) GetUserRoleCodes(userID, tenantID uint) ([]string, error) {
	bindings, err := s.GetUserRoles(userID, tenantID)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		if binding.Role != nil {
			codes = append(codes, binding.Role.Code)
		}
	}
	return codes, nil
}
