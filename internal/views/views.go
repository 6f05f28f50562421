package views

import (
	"fmt"
	"sync"
	"time"

	"healthcmd/internal/models"
	"healthcmd/internal/vitals"
)

// FormatValue 字段的显示字符串（数值 + 单位）
func FormatValue(f models.Field, v float64) string {
	switch f {
	case models.FieldTemperature, models.FieldExtTemp:
		return fmt.Sprintf("%.1f %s", v, f.Unit())
	default:
		return fmt.Sprintf("%.0f %s", v, f.Unit())
	}
}

// Display 数值显示板（实现 dispatch.DisplayBoard）
type Display struct {
	mu    sync.Mutex
	lines map[models.Field]string
}

// NewDisplay 创建显示板
func NewDisplay() *Display {
	return &Display{
		lines: make(map[models.Field]string),
	}
}

// RefreshDisplay 刷新全部字段显示
func (d *Display) RefreshDisplay(rec models.VitalsRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range models.AllFields() {
		d.lines[f] = FormatValue(f, rec.Get(f))
	}
}

// Line 当前显示字符串
func (d *Display) Line(f models.Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lines[f]
}

// Status 状态徽章板（实现 dispatch.StatusBoard）
type Status struct {
	mu      sync.Mutex
	fields  map[models.Field]vitals.Level
	overall vitals.Level
}

// NewStatus 创建状态板
func NewStatus() *Status {
	return &Status{
		fields: make(map[models.Field]vitals.Level),
	}
}

// SetFieldStatus 更新单字段状态
func (s *Status) SetFieldStatus(f models.Field, level vitals.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[f] = level
}

// SetOverall 更新整体状态
func (s *Status) SetOverall(level vitals.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overall = level
}

// FieldStatus 当前字段状态
func (s *Status) FieldStatus(f models.Field) vitals.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields[f]
}

// Overall 当前整体状态
func (s *Status) Overall() vitals.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overall
}

// Summary 汇总组件：仅当字符串表示变化时更新条目，
// 写入计数暴露给测试观察冗余刷新。
type Summary struct {
	mu     sync.Mutex
	lines  map[models.Field]string
	writes int
}

// NewSummary 创建汇总组件
func NewSummary() *Summary {
	return &Summary{
		lines: make(map[models.Field]string),
	}
}

// RefreshSummary 条件刷新：显示串未变的字段不触碰
func (s *Summary) RefreshSummary(rec models.VitalsRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range models.AllFields() {
		line := FormatValue(f, rec.Get(f))
		if s.lines[f] != line {
			s.lines[f] = line
			s.writes++
		}
	}
}

// Line 当前汇总串
func (s *Summary) Line(f models.Field) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines[f]
}

// Writes 累计实际写入次数
func (s *Summary) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// SeriesPoint 图表序列点
type SeriesPoint struct {
	At     time.Time
	Record models.VitalsRecord
}

// SeriesBuffer 有界图表序列缓冲（实现 dispatch.ChartWidget）
type SeriesBuffer struct {
	mu       sync.Mutex
	capacity int
	points   []SeriesPoint
}

// NewSeriesBuffer 创建序列缓冲
func NewSeriesBuffer(capacity int) *SeriesBuffer {
	if capacity <= 0 {
		capacity = 30
	}
	return &SeriesBuffer{capacity: capacity}
}

// Append 追加序列点，超容量时丢弃最旧的点
func (b *SeriesBuffer) Append(rec models.VitalsRecord, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.points = append(b.points, SeriesPoint{At: at, Record: rec})
	if len(b.points) > b.capacity {
		b.points = b.points[len(b.points)-b.capacity:]
	}
}

// Replace 整体替换序列（历史回放用）
func (b *SeriesBuffer) Replace(points []models.VitalsRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.points = b.points[:0]
	now := time.Now()
	start := 0
	if len(points) > b.capacity {
		start = len(points) - b.capacity
	}
	for _, rec := range points[start:] {
		b.points = append(b.points, SeriesPoint{At: now, Record: rec})
	}
}

// Points 当前序列快照
func (b *SeriesBuffer) Points() []SeriesPoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]SeriesPoint, len(b.points))
	copy(out, b.points)
	return out
}
