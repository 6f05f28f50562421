package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"healthcmd/internal/backend"
	"healthcmd/internal/dispatch"
	"healthcmd/internal/models"
	"healthcmd/internal/producer"
	"healthcmd/internal/vitals"
)

// StreamConn 推送通道连接（测试中可替换真实 websocket）
type StreamConn interface {
	Connect(ctx context.Context) error
	Close()
}

// StreamFactory 按给定回调创建推送通道
type StreamFactory func(handlers backend.StreamHandlers) StreamConn

// RemoteFeed 引擎用到的后端操作子集
type RemoteFeed interface {
	Latest(ctx context.Context) (*models.VitalsPushPayload, error)
	PushVitals(ctx context.Context, reading models.VitalsReading) (*models.VitalsPushPayload, error)
}

// Mirror 已提交快照的镜像出口（MQTT / Redis），失败只记日志
type Mirror interface {
	MirrorSnapshot(ctx context.Context, rec models.VitalsRecord, at time.Time) error
}

// Monitor 监控引擎：持有唯一的生命体征存储，整合模式控制器、
// 三类生产者与视图分发。一把互斥锁串行化所有提交+分发，
// 保证每次变更完整跑完扇出后才处理下一个事件。
//
// 模式切换递增 epoch；旧模式遗留的在途结果因 epoch 不匹配
// 在提交前被丢弃（过期响应永远写不进存储）。
type Monitor struct {
	soldierID  string
	store      *vitals.Store
	dispatcher *dispatch.Dispatcher
	chart      dispatch.ChartWidget
	notifier   producer.Notifier
	remote     RemoteFeed
	newStream  StreamFactory
	mirrors    []Mirror
	simulator  *producer.Simulator
	logger     *zap.Logger

	mu           sync.Mutex
	mode         Mode
	epoch        uint64
	autoUpdate   bool
	stream       StreamConn
	lastAnalysis *models.MLAnalysis
	runCtx       context.Context
}

// Options 引擎装配参数
type Options struct {
	SoldierID   string
	Store       *vitals.Store
	Dispatcher  *dispatch.Dispatcher
	Chart       dispatch.ChartWidget
	Notifier    producer.Notifier
	Remote      RemoteFeed    // nil = 后端未配置，仅 LOCAL 能力
	NewStream   StreamFactory // nil 时后端模式不建推送通道
	Mirrors     []Mirror
	SimInterval time.Duration
	Logger      *zap.Logger
}

// NewMonitor 创建监控引擎（初始 LOCAL 模式，自动更新开启）
func NewMonitor(opts Options) *Monitor {
	m := &Monitor{
		soldierID:  opts.SoldierID,
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		chart:      opts.Chart,
		notifier:   opts.Notifier,
		remote:     opts.Remote,
		newStream:  opts.NewStream,
		mirrors:    opts.Mirrors,
		logger:     opts.Logger,
		mode:       ModeLocal,
		autoUpdate: true,
		runCtx:     context.Background(),
	}
	m.simulator = producer.NewSimulator(opts.SimInterval, m, opts.Logger)
	return m
}

// Start 启动引擎：刷一次初始视图，LOCAL 模式下启动模拟器
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	m.runCtx = ctx
	snap := m.store.Snapshot()
	m.dispatcher.RefreshAll(snap)
	startSim := m.mode == ModeLocal && m.autoUpdate
	m.mu.Unlock()

	if startSim {
		m.simulator.Start(ctx)
	}
	m.logger.Info("Monitor started",
		zap.String("soldier_id", m.soldierID),
		zap.String("mode", m.Mode().String()),
	)
}

// Stop 停止引擎
func (m *Monitor) Stop() {
	m.simulator.Stop()

	m.mu.Lock()
	stream := m.stream
	m.stream = nil
	m.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	m.logger.Info("Monitor stopped")
}

// Mode 当前模式
func (m *Monitor) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Snapshot 当前记录快照（producer.Sink）
func (m *Monitor) Snapshot() models.VitalsRecord {
	return m.store.Snapshot()
}

// LastAnalysis 最近一次后端 ML 分析结果（可能为 nil）
func (m *Monitor) LastAnalysis() *models.MLAnalysis {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAnalysis
}

// CommitSimulated 模拟器提交入口（producer.Sink）。
// 非 LOCAL 模式或自动更新关闭时丢弃（迟到的 tick 不得落盘）。
func (m *Monitor) CommitSimulated(values map[models.Field]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode != ModeLocal || !m.autoUpdate {
		m.logger.Debug("Discarding simulated tick",
			zap.String("mode", m.mode.String()),
		)
		return
	}

	for _, f := range models.ClinicalFields() {
		if v, ok := values[f]; ok {
			m.store.Set(f, v)
		}
	}
	m.fanOutLocked(true)
}

// CommitManual 手动提交单字段（producer.CommitSink，值已由调和器校验）
func (m *Monitor) CommitManual(f models.Field, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Set(f, value)
	m.fanOutLocked(false)
}

// CommitManualPair 手动提交血压对
func (m *Monitor) CommitManualPair(systolic, diastolic float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.SetPair(systolic, diastolic)
	m.fanOutLocked(false)
}

// CommitManualBatch 手动批量提交（调和器已保证全部通过校验)
func (m *Monitor) CommitManualBatch(values map[models.Field]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range models.ClinicalFields() {
		if v, ok := values[f]; ok {
			m.store.Set(f, v)
		}
	}
	m.fanOutLocked(false)
}

// applyPush 后端读数提交入口。epoch 不匹配或模式已切走则丢弃；
// 载荷中缺失的字段保持当前值，单个越界字段跳过不影响其余字段。
func (m *Monitor) applyPush(epoch uint64, payload *models.VitalsPushPayload) {
	if payload == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode != ModeBackend || epoch != m.epoch {
		m.logger.Info("Discarding stale backend payload",
			zap.Uint64("payload_epoch", epoch),
			zap.Uint64("current_epoch", m.epoch),
			zap.String("mode", m.mode.String()),
		)
		return
	}

	committed := false
	for _, fv := range payload.FieldValues() {
		if fv.Value == nil {
			continue
		}
		if fv.Field.IsClinical() && !vitals.ValidateField(fv.Field, *fv.Value) {
			m.logger.Warn("Rejecting out-of-range backend value",
				zap.String("field", fv.Field.String()),
				zap.Float64("value", *fv.Value),
			)
			continue
		}
		m.store.Set(fv.Field, *fv.Value)
		committed = true
	}

	if payload.MLAnalysis != nil {
		m.lastAnalysis = payload.MLAnalysis
	}
	if committed {
		m.fanOutLocked(true)
	}
}

// fanOutLocked 提交后的扇出（调用方必须持有 m.mu）。
// series=true 为 tick/推送路径：除视图刷新外还追加图表序列并写镜像；
// 手动单字段编辑不追加图表，避免破坏时间序列间距。
func (m *Monitor) fanOutLocked(series bool) {
	snap := m.store.Snapshot()
	m.dispatcher.RefreshAll(snap)

	if !series {
		return
	}
	now := time.Now()
	if m.chart != nil {
		m.chart.Append(snap, now)
	}
	for _, mirror := range m.mirrors {
		if err := mirror.MirrorSnapshot(m.runCtx, snap, now); err != nil {
			m.logger.Warn("Snapshot mirror failed",
				zap.Error(err),
			)
		}
	}
}

// Reset 原子恢复基线值并刷新视图
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Reset()
	m.lastAnalysis = nil
	m.fanOutLocked(false)
	if m.notifier != nil {
		m.notifier.Notify("Vitals reset to baseline", "info")
	}
}

// SetAutoUpdate 开关自动更新（仅影响 LOCAL 模式下的模拟器）
func (m *Monitor) SetAutoUpdate(enabled bool) {
	m.mu.Lock()
	m.autoUpdate = enabled
	local := m.mode == ModeLocal
	ctx := m.runCtx
	m.mu.Unlock()

	if !local {
		return
	}
	if enabled {
		m.simulator.Start(ctx)
	} else {
		m.simulator.Stop()
	}
}

// SwitchToBackend LOCAL -> BACKEND：停模拟器、关自动更新、
// 建推送通道、立即拉取一次最新读数。已在 BACKEND 则为空操作。
func (m *Monitor) SwitchToBackend(ctx context.Context) error {
	m.mu.Lock()
	if m.mode == ModeBackend {
		m.mu.Unlock()
		return nil
	}
	if m.remote == nil {
		m.mu.Unlock()
		if m.notifier != nil {
			m.notifier.Notify("Backend not configured, staying in local mode", "error")
		}
		return fmt.Errorf("backend feed not configured")
	}
	m.mode = ModeBackend
	m.epoch++
	epoch := m.epoch
	m.autoUpdate = false
	m.mu.Unlock()

	m.simulator.Stop()

	if m.newStream != nil {
		stream := m.newStream(backend.StreamHandlers{
			OnConnect: func(message string) {
				if m.notifier != nil {
					m.notifier.Notify(message, "info")
				}
			},
			OnVitals: func(payload *models.VitalsPushPayload) {
				m.applyPush(epoch, payload)
			},
			OnDown: func(err error) {
				m.logger.Error("Backend live feed down",
					zap.Error(err),
				)
				if m.notifier != nil {
					m.notifier.Notify("Live feed lost, switch modes to recover", "warning")
				}
			},
		})
		if err := stream.Connect(ctx); err != nil {
			// 降级的 BACKEND 态：通道自己继续有界重连
			m.logger.Warn("Push channel connect failed, backend mode degraded",
				zap.Error(err),
			)
		}
		m.mu.Lock()
		m.stream = stream
		m.mu.Unlock()
	}

	// 立即拉取一次最新读数
	if payload, err := m.remote.Latest(ctx); err != nil {
		m.logger.Warn("Initial backend pull failed",
			zap.Error(err),
		)
	} else {
		m.applyPush(epoch, payload)
	}

	if m.notifier != nil {
		m.notifier.Notify("Backend mode engaged", "success")
	}
	m.logger.Info("Switched to backend mode",
		zap.Uint64("epoch", epoch),
	)
	return nil
}

// SwitchToLocal BACKEND -> LOCAL：拆通道、开自动更新、重启模拟器。
// 已在 LOCAL 则为空操作。
func (m *Monitor) SwitchToLocal(ctx context.Context) error {
	m.mu.Lock()
	if m.mode == ModeLocal {
		m.mu.Unlock()
		return nil
	}
	m.mode = ModeLocal
	m.epoch++
	m.autoUpdate = true
	stream := m.stream
	m.stream = nil
	runCtx := m.runCtx
	m.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	m.simulator.Start(runCtx)

	if m.notifier != nil {
		m.notifier.Notify("Local simulation resumed", "success")
	}
	m.logger.Info("Switched to local mode")
	return nil
}

// PushCurrent 把当前快照上报后端；响应中的 ML 分析结果被保留，
// 读数本身不回写存储（BACKEND 模式下推送通道会广播同一份数据）。
func (m *Monitor) PushCurrent(ctx context.Context) error {
	m.mu.Lock()
	remote := m.remote
	m.mu.Unlock()
	if remote == nil {
		return fmt.Errorf("backend feed not configured")
	}

	reading := models.ReadingFromRecord(m.soldierID, m.store.Snapshot(), time.Now().Format(time.RFC3339))
	payload, err := remote.PushVitals(ctx, reading)
	if err != nil {
		if m.notifier != nil {
			m.notifier.Notify("Failed to send vitals to backend", "error")
		}
		return err
	}

	if payload != nil && payload.MLAnalysis != nil {
		m.mu.Lock()
		m.lastAnalysis = payload.MLAnalysis
		m.mu.Unlock()
	}
	if m.notifier != nil {
		m.notifier.Notify("Vitals sent to backend", "success")
	}
	return nil
}
