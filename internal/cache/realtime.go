package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"healthcmd/internal/models"
)

// realtimeSnapshot 写入缓存的实时快照结构
type realtimeSnapshot struct {
	SoldierID string              `json:"soldier_id"`
	Vitals    models.VitalsRecord `json:"vitals"`
	Timestamp string              `json:"timestamp"` // ISO-8601
}

// RealtimeMirror 实时快照镜像：每次 tick/推送提交后把最新记录
// 写入 `<prefix><soldier_id>:realtime`（带 TTL），供同机其它服务读取。
// 仅镜像最新值，不做跨会话持久化。
type RealtimeMirror struct {
	kv        KVStore
	keyPrefix string
	soldierID string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRealtimeMirror 创建实时镜像
func NewRealtimeMirror(kv KVStore, keyPrefix, soldierID string, ttl time.Duration, logger *zap.Logger) *RealtimeMirror {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RealtimeMirror{
		kv:        kv,
		keyPrefix: keyPrefix,
		soldierID: soldierID,
		ttl:       ttl,
		logger:    logger,
	}
}

// Key 镜像键
func (m *RealtimeMirror) Key() string {
	return fmt.Sprintf("%s%s:realtime", m.keyPrefix, m.soldierID)
}

// MirrorSnapshot 写入最新快照（实现 service.Mirror）
func (m *RealtimeMirror) MirrorSnapshot(ctx context.Context, rec models.VitalsRecord, at time.Time) error {
	data, err := json.Marshal(realtimeSnapshot{
		SoldierID: m.soldierID,
		Vitals:    rec,
		Timestamp: at.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal realtime snapshot: %w", err)
	}

	if err := m.kv.Set(ctx, m.Key(), string(data), m.ttl); err != nil {
		return fmt.Errorf("failed to set realtime snapshot: %w", err)
	}
	return nil
}
