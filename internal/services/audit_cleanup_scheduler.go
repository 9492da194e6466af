package services

import (
	"fmt"
	"sync"

	"staffhub/pkg/logger"

	"github.com/robfig/cron/v3"
)

// AuditCleanupScheduler 审计日志清理调度器
// 按配置的cron表达式定期删除超过保留期的审计日志。
type AuditCleanupScheduler struct {
	cron          *cron.Cron
	auditService  *AuditService
	retentionDays int
	cronSpec      string
	mu            sync.Mutex
	running       bool
}

// NewAuditCleanupScheduler 创建审计日志清理调度器
func NewAuditCleanupScheduler(auditService *AuditService, retentionDays int, cronSpec string) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		cron:          cron.New(),
		auditService:  auditService,
		retentionDays: retentionDays,
		cronSpec:      cronSpec,
	}
}

// Start 启动调度器
func (s *AuditCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	log := logger.GetLogger()

	_, err := s.cron.AddFunc(s.cronSpec, func() {
		deleted, err := s.auditService.CleanupExpired(s.retentionDays)
		if err != nil {
			log.Errorf("审计日志清理失败: %v", err)
			return
		}
		if deleted > 0 {
			log.Infof("审计日志清理完成，删除 %d 条过期记录", deleted)
		}
	})
	if err != nil {
		return fmt.Errorf("注册审计清理任务失败: %v", err)
	}

	s.cron.Start()
	s.running = true

	log.Infof("审计日志清理调度器启动成功（保留 %d 天，计划 %s）", s.retentionDays, s.cronSpec)
	return nil
}

// Stop 停止调度器
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	logger.GetLogger().Info("审计日志清理调度器已停止")
}
