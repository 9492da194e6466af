package database

import (
	"sync"

	"staffhub/pkg/config"
	"staffhub/pkg/queue"
)

var (
	auditStreamInstance *queue.RedisQueue
	auditStreamOnce     sync.Once
)

// GetAuditStream 获取审计事件流的单例实例；未启用时返回nil
func GetAuditStream() *queue.RedisQueue {
	auditStreamOnce.Do(func() {
		cfg := config.GetConfig()
		if !cfg.Redis.Enabled {
			return
		}
		auditStreamInstance = queue.NewRedisQueue(&queue.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return auditStreamInstance
}

// CloseAuditStream 关闭Redis连接
func CloseAuditStream() error {
	if auditStreamInstance != nil {
		return auditStreamInstance.Close()
	}
	return nil
}
