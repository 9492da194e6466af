package main

import (
	"fmt"
	"time"

	"staffhub/internal/database"
	"staffhub/internal/models"
	"staffhub/internal/services"
	"staffhub/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 初始化权限目录
	if err := initializePermissionCatalog(db); err != nil {
		return fmt.Errorf("初始化权限目录失败: %v", err)
	}

	// 2. 创建系统级角色（SUPER_ADMIN）
	roleService := services.NewRoleService(db)
	if err := roleService.InitializeSystemRoles(); err != nil {
		return fmt.Errorf("初始化系统角色失败: %v", err)
	}

	// 3. 创建默认租户（含租户级系统角色）
	if err := createDefaultTenant(db, roleService); err != nil {
		return fmt.Errorf("创建默认租户失败: %v", err)
	}

	// 4. 创建默认管理员用户
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// permissionCatalog 平台权限目录（代码、名称、分类）
// 目录是平台级数据，所有租户共享；新增条目在这里追加，停用走 is_active。
var permissionCatalog = []models.Permission{
	// 员工管理
	{Code: "employee.view_all", Name: "查看全部员工", Category: models.CategoryEmployees},
	{Code: "employee.view_team", Name: "查看团队员工", Category: models.CategoryEmployees},
	{Code: "employee.view_own", Name: "查看本人档案", Category: models.CategoryEmployees},
	{Code: "employee.create", Name: "创建员工", Category: models.CategoryEmployees},
	{Code: "employee.update", Name: "更新员工", Category: models.CategoryEmployees},
	{Code: "employee.delete", Name: "删除员工", Category: models.CategoryEmployees},
	{Code: "employee.import", Name: "导入员工", Category: models.CategoryEmployees},
	{Code: "employee.export", Name: "导出员工", Category: models.CategoryEmployees},

	// 考勤打卡
	{Code: "attendance.view_all", Name: "查看全部考勤", Category: models.CategoryAttendance},
	{Code: "attendance.view_team", Name: "查看团队考勤", Category: models.CategoryAttendance},
	{Code: "attendance.view_own", Name: "查看本人考勤", Category: models.CategoryAttendance},
	{Code: "attendance.create", Name: "打卡记录", Category: models.CategoryAttendance},
	{Code: "attendance.edit", Name: "编辑考勤", Category: models.CategoryAttendance},
	{Code: "attendance.correct", Name: "考勤补正", Category: models.CategoryAttendance},
	{Code: "attendance.delete", Name: "删除考勤", Category: models.CategoryAttendance},
	{Code: "attendance.import", Name: "导入考勤", Category: models.CategoryAttendance},
	{Code: "attendance.export", Name: "导出考勤", Category: models.CategoryAttendance},
	{Code: "attendance.view_anomalies", Name: "查看考勤异常", Category: models.CategoryAttendance},

	// 排班计划
	{Code: "schedule.view_all", Name: "查看全部排班", Category: models.CategorySchedules},
	{Code: "schedule.view_team", Name: "查看团队排班", Category: models.CategorySchedules},
	{Code: "schedule.view_own", Name: "查看本人排班", Category: models.CategorySchedules},
	{Code: "schedule.create", Name: "创建排班", Category: models.CategorySchedules},
	{Code: "schedule.update", Name: "更新排班", Category: models.CategorySchedules},
	{Code: "schedule.delete", Name: "删除排班", Category: models.CategorySchedules},
	{Code: "schedule.manage_team", Name: "管理团队排班", Category: models.CategorySchedules},
	{Code: "schedule.approve_replacement", Name: "审批换班", Category: models.CategorySchedules},

	// 班次管理
	{Code: "shift.view_all", Name: "查看班次", Category: models.CategoryShifts},
	{Code: "shift.create", Name: "创建班次", Category: models.CategoryShifts},
	{Code: "shift.update", Name: "更新班次", Category: models.CategoryShifts},
	{Code: "shift.delete", Name: "删除班次", Category: models.CategoryShifts},

	// 请假管理
	{Code: "leave.view_all", Name: "查看全部请假", Category: models.CategoryLeaves},
	{Code: "leave.view_team", Name: "查看团队请假", Category: models.CategoryLeaves},
	{Code: "leave.view_own", Name: "查看本人请假", Category: models.CategoryLeaves},
	{Code: "leave.create", Name: "提交请假", Category: models.CategoryLeaves},
	{Code: "leave.update", Name: "修改请假", Category: models.CategoryLeaves},
	{Code: "leave.approve", Name: "审批请假", Category: models.CategoryLeaves},
	{Code: "leave.reject", Name: "驳回请假", Category: models.CategoryLeaves},
	{Code: "leave.manage_types", Name: "管理假期类型", Category: models.CategoryLeaves},
	{Code: "recovery.view", Name: "查看调休", Category: models.CategoryLeaves},

	// 加班管理
	{Code: "overtime.view_all", Name: "查看全部加班", Category: models.CategoryOvertime},
	{Code: "overtime.view_own", Name: "查看本人加班", Category: models.CategoryOvertime},
	{Code: "overtime.approve", Name: "审批加班", Category: models.CategoryOvertime},

	// 报表统计
	{Code: "reports.view_all", Name: "查看全部报表", Category: models.CategoryReports},
	{Code: "reports.view_attendance", Name: "查看考勤报表", Category: models.CategoryReports},
	{Code: "reports.view_leaves", Name: "查看请假报表", Category: models.CategoryReports},
	{Code: "reports.view_overtime", Name: "查看加班报表", Category: models.CategoryReports},
	{Code: "reports.view_payroll", Name: "查看薪资报表", Category: models.CategoryReports},
	{Code: "reports.export", Name: "导出报表", Category: models.CategoryReports},

	// 用户与角色
	{Code: "user.view_all", Name: "查看全部用户", Category: models.CategoryUsers},
	{Code: "user.create", Name: "创建用户", Category: models.CategoryUsers},
	{Code: "user.update", Name: "更新用户", Category: models.CategoryUsers},
	{Code: "user.delete", Name: "删除用户", Category: models.CategoryUsers},
	{Code: "user.view_roles", Name: "查看用户角色", Category: models.CategoryUsers},
	{Code: "user.assign_roles", Name: "授予用户角色", Category: models.CategoryUsers},
	{Code: "user.remove_roles", Name: "移除用户角色", Category: models.CategoryUsers},
	{Code: "role.view_all", Name: "查看角色", Category: models.CategoryUsers},
	{Code: "role.create", Name: "创建角色", Category: models.CategoryUsers},
	{Code: "role.update", Name: "更新角色", Category: models.CategoryUsers},
	{Code: "role.delete", Name: "删除角色", Category: models.CategoryUsers},

	// 租户设置
	{Code: "tenant.view_settings", Name: "查看租户设置", Category: models.CategorySettings},
	{Code: "tenant.update_settings", Name: "更新租户设置", Category: models.CategorySettings},
	{Code: "tenant.manage_sites", Name: "管理工作地点", Category: models.CategorySettings},
	{Code: "tenant.manage_departments", Name: "管理部门", Category: models.CategorySettings},
	{Code: "tenant.manage_positions", Name: "管理岗位", Category: models.CategorySettings},
	{Code: "tenant.manage_teams", Name: "管理团队", Category: models.CategorySettings},
	{Code: "tenant.manage_holidays", Name: "管理节假日", Category: models.CategorySettings},
	{Code: "tenant.manage_devices", Name: "管理打卡设备", Category: models.CategorySettings},

	// 审计日志
	{Code: "audit.view_all", Name: "查看审计日志", Category: models.CategoryAudit},
}

// initializePermissionCatalog 初始化权限目录（幂等，按代码补齐缺失条目）
func initializePermissionCatalog(db *gorm.DB) error {
	created := 0
	for _, perm := range permissionCatalog {
		var count int64
		if err := db.Model(&models.Permission{}).Where("code = ?", perm.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		entry := perm
		entry.IsActive = true
		if err := db.Create(&entry).Error; err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		logger.GetLogger().Infof("权限目录初始化完成，新增 %d 个权限", created)
	}
	return nil
}

// createDefaultTenant 创建默认租户并初始化租户级系统角色
func createDefaultTenant(db *gorm.DB, roleService *services.RoleService) error {
	var tenant models.Tenant
	err := db.Where("code = ?", "default").First(&tenant).Error
	if err == nil {
		logger.GetLogger().Info("默认租户已存在，跳过创建")
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	tenant = models.Tenant{
		Name:   "默认租户",
		Code:   "default",
		Status: models.TenantStatusActive,
	}
	if err := db.Create(&tenant).Error; err != nil {
		return err
	}

	// 租户级系统角色：ADMIN_RH / MANAGER / EMPLOYEE
	if err := roleService.InitializeTenantRoles(tenant.ID); err != nil {
		return err
	}

	logger.GetLogger().Info("默认租户创建成功")
	return nil
}

// createDefaultAdmin 创建默认管理员用户
func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("管理员用户已存在，跳过创建")
		return nil
	}

	// 获取默认租户
	var tenant models.Tenant
	if err := db.Where("code = ?", "default").First(&tenant).Error; err != nil {
		return fmt.Errorf("获取默认租户失败: %v", err)
	}

	user := &models.User{
		TenantID: nil, // 平台级身份，不归属任何租户
		Username: "admin",
		Email:    "admin@example.com",
		Name:     "系统管理员",
		Role:     models.RoleSuperAdmin,
		Status:   models.UserStatusActive,
	}

	if err := user.SetPassword("Admin@123"); err != nil {
		return fmt.Errorf("设置密码失败: %v", err)
	}

	if err := db.Create(user).Error; err != nil {
		return err
	}

	// 在默认租户下绑定SUPER_ADMIN角色
	var role models.Role
	if err := db.Where("code = ? AND tenant_id IS NULL", models.RoleSuperAdmin).First(&role).Error; err == nil {
		binding := &models.UserTenantRole{
			UserID:     user.ID,
			TenantID:   tenant.ID,
			RoleID:     role.ID,
			IsActive:   true,
			AssignedBy: user.ID,
			AssignedAt: time.Now(),
		}
		db.Create(binding)
	}

	logger.GetLogger().Infof("默认管理员创建成功 - 用户名: admin, 密码: Admin@123")
	return nil
}
