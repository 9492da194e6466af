package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 审计日志模型
// 记录角色分配/移除等敏感操作；写入失败不回滚触发它的业务操作。
type AuditLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	TenantID  uint           `gorm:"not null;index" json:"tenant_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"` // 操作人
	Action    string         `gorm:"size:50;not null;index" json:"action"`
	Entity    string         `gorm:"size:50;not null" json:"entity"`
	EntityID  uint           `json:"entity_id"`
	OldValues datatypes.JSON `json:"old_values,omitempty"`
	NewValues datatypes.JSON `json:"new_values,omitempty"`
	IPAddress *string        `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent *string        `gorm:"size:255" json:"user_agent,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 表名
func (AuditLog) TableName() string {
	return "audit_logs"
}

// 审计动作常量
const (
	AuditActionRoleAssigned = "ROLE_ASSIGNED"
	AuditActionRoleRemoved  = "ROLE_REMOVED"
)

// 审计实体常量
const (
	AuditEntityUserTenantRole = "UserTenantRole"
)
