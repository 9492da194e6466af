package models

import "time"

// UserTenantRole 用户-租户-角色绑定表
// (user_id, tenant_id, role_id) 三元组唯一；绑定从不物理删除，
// 移除角色时置 is_active=false，重新分配时复用原行并刷新分配信息。
type UserTenantRole struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_tenant_role" json:"user_id"`
	TenantID   uint      `gorm:"not null;uniqueIndex:idx_user_tenant_role" json:"tenant_id"`
	RoleID     uint      `gorm:"not null;uniqueIndex:idx_user_tenant_role;index" json:"role_id"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"` // 仅活跃绑定参与权限解析
	AssignedBy uint      `json:"assigned_by"`                         // 操作人ID
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`         // 最近一次分配时间
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// 关联
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Role   *Role   `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// TableName 指定表名
func (UserTenantRole) TableName() string {
	return "user_tenant_roles"
}
