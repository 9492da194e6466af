package models

import "time"

// Role 角色模型
// TenantID 为空表示系统级角色（全平台共享），否则为租户内角色。
// 角色代码在 (tenant_id, code) 内唯一：服务层做存在性检查给出友好冲突提示，
// 复合唯一索引兜底并发创建；系统级角色的NULL租户行不受该索引约束，唯一性由服务层保证。
type Role struct {
	BaseModel
	TenantID    *uint  `gorm:"uniqueIndex:idx_tenant_code" json:"tenant_id"`              // 所属租户（NULL表示系统级角色）
	Code        string `gorm:"size:100;not null;uniqueIndex:idx_tenant_code" json:"code"` // 角色代码，如 "ADMIN_RH"，创建后不可修改
	Name        string `gorm:"size:100;not null" json:"name"`          // 角色名称
	Description string `gorm:"size:255" json:"description"`            // 角色描述
	IsSystem    bool   `gorm:"default:false" json:"is_system"`         // 系统角色：不可删除，仅允许调整权限集
	IsActive    bool   `gorm:"default:true" json:"is_active"`          // 软删除标记

	// 关联关系
	Tenant      *Tenant      `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

// IsSystemScoped 是否为系统级角色（无租户归属）
func (r *Role) IsSystemScoped() bool {
	return r.TenantID == nil
}

// BelongsToTenant 角色是否可在指定租户内使用（本租户角色或系统级角色）
func (r *Role) BelongsToTenant(tenantID uint) bool {
	return r.TenantID == nil || *r.TenantID == tenantID
}

// 系统预定义角色常量
const (
	RoleSuperAdmin = "SUPER_ADMIN" // 平台超级管理员，绕过所有权限检查
	RoleAdminRH    = "ADMIN_RH"    // 人事管理员
	RoleManager    = "MANAGER"     // 团队经理
	RoleEmployee   = "EMPLOYEE"    // 普通员工
)

// RolePermission 角色权限关联表
// 权限集更新始终是整体替换：删除旧行后插入新行，不做增量合并。
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       uint      `gorm:"not null;index" json:"role_id"`
	PermissionID uint      `gorm:"not null;index" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}
