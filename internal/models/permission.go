package models

// Permission 权限模型 - 平台级能力目录，只停用不删除
type Permission struct {
	BaseModel
	Code     string `gorm:"uniqueIndex;size:100;not null" json:"code"` // 权限代码，如 "leave.approve"
	Name     string `gorm:"size:100;not null" json:"name"`             // 权限名称，如 "审批请假"
	Category string `gorm:"size:50;not null;index" json:"category"`    // 所属分类，如 "leaves", "attendance"
	IsActive bool   `gorm:"default:true" json:"is_active"`             // 停用后不参与权限解析
}

// 权限分类常量
const (
	CategoryEmployees  = "employees"  // 员工管理
	CategoryAttendance = "attendance" // 考勤打卡
	CategorySchedules  = "schedules"  // 排班计划
	CategoryShifts     = "shifts"     // 班次管理
	CategoryLeaves     = "leaves"     // 请假管理
	CategoryOvertime   = "overtime"   // 加班管理
	CategoryReports    = "reports"    // 报表统计
	CategoryUsers      = "users"      // 用户与角色
	CategorySettings   = "settings"   // 租户设置
	CategoryAudit      = "audit"      // 审计日志
)
