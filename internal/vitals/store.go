package vitals

import (
	"sync"

	"go.uber.org/zap"

	"healthcmd/internal/models"
)

// Store 生命体征存储：单个被监测对象的唯一可变记录。
// 可注入实例（非包级全局），测试可各自持有独立副本。
// Store 本身不做范围校验：临床字段的校验是写入方的契约
// （由 Reconciler / Simulator / 推送路径在提交前完成）。
type Store struct {
	mu     sync.RWMutex
	record models.VitalsRecord
	logger *zap.Logger
}

// NewStore 创建存储并装入基线值
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		record: models.DefaultVitals(),
		logger: logger,
	}
}

// Snapshot 返回当前记录的一致快照
func (s *Store) Snapshot() models.VitalsRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Set 写入单个字段
func (s *Store) Set(f models.Field, v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Set(f, v)
}

// SetPair 原子写入血压对（禁止部分提交）
func (s *Store) SetPair(systolic, diastolic float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.Systolic = systolic
	s.record.Diastolic = diastolic
}

// Reset 原子恢复基线值
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = models.DefaultVitals()
	if s.logger != nil {
		s.logger.Info("Vitals store reset to defaults")
	}
}
