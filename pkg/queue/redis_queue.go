package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQueue 审计事件流的Redis实现
// 发布是尽力而为：消费方（归档、告警等）丢失事件不影响业务写入。
type RedisQueue struct {
	client *redis.Client
	prefix string
}

// AuditMessage 事件流中的审计消息
type AuditMessage struct {
	Action   string                 `json:"action"`    // ROLE_ASSIGNED / ROLE_REMOVED
	Entity   string                 `json:"entity"`    // 实体类型
	EntityID uint                   `json:"entity_id"` // 实体ID
	TenantID uint                   `json:"tenant_id"`
	ActorID  uint                   `json:"actor_id"` // 操作人ID
	Payload  map[string]interface{} `json:"payload"`  // 变更明细
	Created  int64                  `json:"created"`
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewRedisQueue 创建Redis事件流实例
func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "staffhub:audit"
	}

	return &RedisQueue{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Ping 测试Redis连接
func (q *RedisQueue) Ping() error {
	ctx := context.Background()
	return q.client.Ping(ctx).Err()
}

// Publish 发布审计事件
func (q *RedisQueue) Publish(msg *AuditMessage) error {
	ctx := context.Background()

	if msg.Created == 0 {
		msg.Created = time.Now().Unix()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化审计消息失败: %v", err)
	}

	key := fmt.Sprintf("%s:events", q.prefix)
	return q.client.LPush(ctx, key, data).Err()
}

// Pending 查看待消费的事件数量
func (q *RedisQueue) Pending() (int64, error) {
	ctx := context.Background()
	key := fmt.Sprintf("%s:events", q.prefix)
	return q.client.LLen(ctx, key).Result()
}
