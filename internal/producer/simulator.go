package producer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"healthcmd/internal/models"
)

// Sink 模拟器的提交入口（由监控引擎实现，受模式控制器门控：
// 非 LOCAL 模式或关闭自动更新时，提交会被引擎丢弃）
type Sink interface {
	Snapshot() models.VitalsRecord
	CommitSimulated(values map[models.Field]float64)
}

// simBand 模拟抖动参数：钳制子区间 + 单次最大扰动
type simBand struct {
	min, max float64
	jitter   float64
}

// 模拟钳制区间（钳制而非拒绝：目标是视觉真实感）
var simBands = map[models.Field]simBand{
	models.FieldHeartRate:   {60, 90, 3},
	models.FieldSpO2:        {90, 100, 1},
	models.FieldSystolic:    {110, 130, 2.5},
	models.FieldDiastolic:   {70, 85, 2},
	models.FieldTemperature: {36.1, 37.2, 0.15},
}

// Simulator 传感器抖动模拟器：固定周期对临床字段施加有界随机扰动。
// 只在 LOCAL 模式且自动更新开启时运行，不触碰环境字段。
type Simulator struct {
	interval time.Duration
	sink     Sink
	logger   *zap.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	cancel context.CancelFunc
}

// NewSimulator 创建模拟器
func NewSimulator(interval time.Duration, sink Sink, logger *zap.Logger) *Simulator {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Simulator{
		interval: interval,
		sink:     sink,
		logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start 启动滴答循环（已在运行则为空操作）
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.run(runCtx)

	s.logger.Info("Simulator started",
		zap.Duration("interval", s.interval),
	)
}

// Stop 停止滴答循环（未运行则为空操作）
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.cancel = nil
	s.logger.Info("Simulator stopped")
}

// Running 是否在运行
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Simulator) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick 执行一次扰动并提交。提交是否生效由引擎按当前模式裁决，
// 模式切换后迟到的 tick 会被丢弃。
func (s *Simulator) Tick() {
	current := s.sink.Snapshot()

	values := make(map[models.Field]float64, len(simBands))
	for _, f := range models.ClinicalFields() {
		band := simBands[f]
		delta := (s.randFloat()*2 - 1) * band.jitter
		values[f] = clamp(current.Get(f)+delta, band.min, band.max)
	}

	s.sink.CommitSimulated(values)
}

func (s *Simulator) randFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// clamp 将值钳制到 [min,max]
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
