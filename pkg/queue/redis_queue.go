package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQueue 考勤事件的发布订阅通道
type RedisQueue struct {
	client *redis.Client
	prefix string
}

// AttendanceEvent 队列中的考勤事件
type AttendanceEvent struct {
	GymID      uint   `json:"gym_id"`
	MemberID   uint   `json:"member_id"`   // 会员内部ID
	MemberCode string `json:"member_code"` // 会员编号
	MemberName string `json:"member_name"` // 会员姓名
	Action     string `json:"action"`      // check_in 或 check_out
	SessionID  uint   `json:"session_id"`
	OccurredAt int64  `json:"occurred_at"`
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewRedisQueue 创建Redis队列实例
func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "gymhub:attendance"
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

// PublishEvent 发布考勤事件到场馆的实时频道（没有订阅者也不算失败）
func (q *RedisQueue) PublishEvent(event *AttendanceEvent) error {
	ctx := context.Background()

	if event.OccurredAt == 0 {
		event.OccurredAt = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化考勤事件失败: %v", err)
	}

	if err := q.client.Publish(ctx, q.GetEventChannel(event.GymID), data).Err(); err != nil {
		return fmt.Errorf("考勤事件推送失败: %v", err)
	}

	return nil
}

// Subscribe 订阅指定场馆的实时考勤事件
func (q *RedisQueue) Subscribe(ctx context.Context, gymID uint) *redis.PubSub {
	return q.client.Subscribe(ctx, q.GetEventChannel(gymID))
}

// GetEventChannel 场馆实时频道名
func (q *RedisQueue) GetEventChannel(gymID uint) string {
	return fmt.Sprintf("%s:events:%d", q.prefix, gymID)
}
