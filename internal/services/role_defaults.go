package services

// DefaultRolePermissions 系统角色的默认权限基线（角色代码 -> 权限代码列表）
// 作为配置表注入RoleService，ResetDefaultPermissions 用它修复权限漂移。
var DefaultRolePermissions = map[string][]string{
	"SUPER_ADMIN": {
		"employee.view_all", "employee.view_own", "employee.create", "employee.update",
		"employee.delete", "employee.import", "employee.export",
		"attendance.view_all", "attendance.view_own", "attendance.view_team",
		"attendance.create", "attendance.edit", "attendance.correct", "attendance.delete",
		"attendance.import", "attendance.export", "attendance.view_anomalies",
		"schedule.view_all", "schedule.view_own", "schedule.view_team",
		"schedule.create", "schedule.update", "schedule.delete",
		"schedule.manage_team", "schedule.approve_replacement",
		"shift.view_all", "shift.create", "shift.update", "shift.delete",
		"leave.view_all", "leave.view_own", "leave.view_team",
		"leave.create", "leave.update", "leave.approve", "leave.reject", "leave.manage_types",
		"overtime.view_all", "overtime.view_own", "overtime.approve",
		"recovery.view",
		"reports.view_all", "reports.view_attendance", "reports.view_leaves",
		"reports.view_overtime", "reports.export", "reports.view_payroll",
		"user.view_all", "user.create", "user.update", "user.delete",
		"user.view_roles", "user.assign_roles", "user.remove_roles",
		"role.view_all", "role.create", "role.update", "role.delete",
		"tenant.view_settings", "tenant.update_settings", "tenant.manage_sites",
		"tenant.manage_departments", "tenant.manage_positions", "tenant.manage_teams",
		"tenant.manage_holidays", "tenant.manage_devices",
		"audit.view_all",
	},
	"ADMIN_RH": {
		"employee.view_all", "employee.view_own", "employee.create", "employee.update",
		"employee.delete", "employee.import", "employee.export",
		"attendance.view_all", "attendance.view_own", "attendance.view_team",
		"attendance.create", "attendance.edit", "attendance.correct", "attendance.delete",
		"attendance.import", "attendance.export", "attendance.view_anomalies",
		"schedule.view_all", "schedule.view_own", "schedule.view_team",
		"schedule.create", "schedule.update", "schedule.delete",
		"schedule.manage_team", "schedule.approve_replacement",
		"shift.view_all", "shift.create", "shift.update", "shift.delete",
		"leave.view_all", "leave.view_own", "leave.view_team",
		"leave.create", "leave.update", "leave.approve", "leave.reject", "leave.manage_types",
		"overtime.view_all", "overtime.approve",
		"recovery.view",
		"reports.view_all", "reports.view_attendance", "reports.view_leaves",
		"reports.view_overtime", "reports.export", "reports.view_payroll",
		"user.view_all", "user.create", "user.update", "user.delete",
		"user.view_roles", "user.assign_roles", "user.remove_roles",
		"role.view_all", "role.create", "role.update", "role.delete",
		"tenant.view_settings", "tenant.update_settings", "tenant.manage_sites",
		"tenant.manage_departments", "tenant.manage_positions", "tenant.manage_teams",
		"tenant.manage_holidays", "tenant.manage_devices",
		"audit.view_all",
	},
	"MANAGER": {
		"employee.view_team",
		"attendance.view_team", "attendance.view_anomalies", "attendance.correct",
		"schedule.view_team", "schedule.manage_team", "schedule.approve_replacement",
		"leave.view_team", "leave.approve", "leave.reject",
		"overtime.view_all", "overtime.approve",
		"reports.view_attendance", "reports.view_leaves", "reports.view_overtime",
		"reports.export",
	},
	"EMPLOYEE": {
		"employee.view_own",
		"attendance.view_own", "attendance.create",
		"schedule.view_own",
		"leave.view_own", "leave.create", "leave.update",
		"overtime.view_own",
		"reports.view_attendance",
	},
}
