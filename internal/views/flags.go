package views

import (
	"sync"
	"time"

	"healthcmd/internal/models"
)

// InvalidFlags 无效输入标记：拒绝源字段的瞬时视觉信号，定时自动清除
type InvalidFlags struct {
	mu     sync.Mutex
	ttl    time.Duration
	seq    map[models.Field]uint64
	active map[models.Field]bool
}

// NewInvalidFlags 创建标记组件，ttl <= 0 时使用 2 秒默认值
func NewInvalidFlags(ttl time.Duration) *InvalidFlags {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &InvalidFlags{
		ttl:    ttl,
		seq:    make(map[models.Field]uint64),
		active: make(map[models.Field]bool),
	}
}

// FlagInvalid 点亮字段标记（实现 producer.FieldFlagger）
func (i *InvalidFlags) FlagInvalid(f models.Field) {
	i.mu.Lock()
	i.seq[f]++
	seq := i.seq[f]
	i.active[f] = true
	i.mu.Unlock()

	time.AfterFunc(i.ttl, func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		// 期间又被重新点亮则交给新的定时器
		if i.seq[f] == seq {
			i.active[f] = false
		}
	})
}

// Flagged 字段当前是否被标记
func (i *InvalidFlags) Flagged(f models.Field) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active[f]
}
