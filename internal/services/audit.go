package services

import (
	"encoding/json"
	"time"

	"staffhub/internal/models"
	"staffhub/pkg/logger"
	"staffhub/pkg/queue"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditService 审计日志
// 落库为主存储；可选地把事件同步发布到Redis事件流给下游消费。
// 写入失败由调用方决定是否吞掉——角色分配等业务操作从不因审计失败回滚。
type AuditService struct {
	db     *gorm.DB
	stream *queue.RedisQueue
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// NewAuditServiceWithStream 创建带事件流发布的审计服务
func NewAuditServiceWithStream(db *gorm.DB, stream *queue.RedisQueue) *AuditService {
	return &AuditService{db: db, stream: stream}
}

// AuditEntry 审计条目
type AuditEntry struct {
	Action    string
	Entity    string
	EntityID  uint
	OldValues map[string]interface{}
	NewValues map[string]interface{}
	IPAddress *string
	UserAgent *string
}

// AuditLogFilters 审计日志查询条件
type AuditLogFilters struct {
	Action    string
	Entity    string
	UserID    *uint
	StartDate *time.Time
	EndDate   *time.Time
}

// Create 记录审计条目
func (s *AuditService) Create(tenantID, actorID uint, entry AuditEntry) (*models.AuditLog, error) {
	log := &models.AuditLog{
		TenantID:  tenantID,
		UserID:    actorID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	}

	if entry.OldValues != nil {
		data, err := json.Marshal(entry.OldValues)
		if err != nil {
			return nil, err
		}
		log.OldValues = datatypes.JSON(data)
	}
	if entry.NewValues != nil {
		data, err := json.Marshal(entry.NewValues)
		if err != nil {
			return nil, err
		}
		log.NewValues = datatypes.JSON(data)
	}

	if err := s.db.Create(log).Error; err != nil {
		return nil, err
	}

	// 事件流发布尽力而为，失败只记日志
	if s.stream != nil {
		msg := &queue.AuditMessage{
			Action:   entry.Action,
			Entity:   entry.Entity,
			EntityID: entry.EntityID,
			TenantID: tenantID,
			ActorID:  actorID,
			Payload:  entry.NewValues,
		}
		if msg.Payload == nil {
			msg.Payload = entry.OldValues
		}
		if err := s.stream.Publish(msg); err != nil {
			logger.GetLogger().Warnf("审计事件发布失败: %v", err)
		}
	}

	return log, nil
}

// GetWithPage 分页查询租户的审计日志
func (s *AuditService) GetWithPage(tenantID uint, filters AuditLogFilters, page, pageSize int) ([]*models.AuditLog, int64, error) {
	var logs []*models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{}).Where("tenant_id = ?", tenantID)

	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.Entity != "" {
		query = query.Where("entity = ?", filters.Entity)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("created_at <= ?", *filters.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("User").Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// CleanupExpired 清理超过保留期的审计日志，返回删除行数
func (s *AuditService) CleanupExpired(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}
