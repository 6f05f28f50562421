package dispatch

import (
	"time"

	"go.uber.org/zap"

	"healthcmd/internal/models"
	"healthcmd/internal/vitals"
)

// DisplayBoard 数值显示视图
type DisplayBoard interface {
	RefreshDisplay(rec models.VitalsRecord)
}

// StatusBoard 状态徽章视图
type StatusBoard interface {
	SetFieldStatus(f models.Field, level vitals.Level)
	SetOverall(level vitals.Level)
}

// SummaryWidget 汇总视图（自行做变更检测）
type SummaryWidget interface {
	RefreshSummary(rec models.VitalsRecord)
}

// ChartWidget 图表组件：仅在 tick/推送路径追加（由引擎调用，
// 不进入 RefreshAll，避免带外手动编辑破坏时间序列间距）
type ChartWidget interface {
	Append(rec models.VitalsRecord, at time.Time)
	Replace(points []models.VitalsRecord)
}

// Dispatcher 更新分发器：每次提交后的唯一扇出点。
// 固定顺序：数值显示 → 逐字段状态 → 整体状态 → 汇总。
// 整体状态永远基于同一快照计算，不会读到过期的字段状态。
type Dispatcher struct {
	display DisplayBoard
	status  StatusBoard
	summary SummaryWidget
	logger  *zap.Logger
}

// NewDispatcher 创建分发器（协作者可为 nil，对应步骤跳过）
func NewDispatcher(display DisplayBoard, status StatusBoard, summary SummaryWidget, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		display: display,
		status:  status,
		summary: summary,
		logger:  logger,
	}
}

// RefreshAll 按固定顺序刷新全部视图协作者
func (d *Dispatcher) RefreshAll(rec models.VitalsRecord) {
	// 1. 数值显示
	if d.display != nil {
		d.display.RefreshDisplay(rec)
	}

	// 2. 逐字段状态分类
	if d.status != nil {
		for _, f := range models.ClinicalFields() {
			d.status.SetFieldStatus(f, vitals.ClassifyRecord(rec, f))
		}

		// 3. 整体状态聚合（心率与血氧取较差者）
		d.status.SetOverall(vitals.Overall(rec))
	}

	// 4. 汇总视图（仅变化的条目真正重绘）
	if d.summary != nil {
		d.summary.RefreshSummary(rec)
	}
}
