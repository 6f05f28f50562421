package producer

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"healthcmd/internal/models"
	"healthcmd/internal/vitals"
)

// CommitSink 手动输入的提交入口（由监控引擎实现：
// 提交后引擎负责触发视图分发）
type CommitSink interface {
	CommitManual(f models.Field, value float64)
	CommitManualPair(systolic, diastolic float64)
	CommitManualBatch(values map[models.Field]float64)
}

// Notifier 通知条（success | error | info | warning）
type Notifier interface {
	Notify(message, kind string)
}

// FieldFlagger 无效输入的瞬时视觉标记（定时自动清除）
type FieldFlagger interface {
	FlagInvalid(f models.Field)
}

// Reconciler 手动输入调和器：解析、校验、全部通过才提交。
// 拒绝时存储保持原值，只标记来源字段。
type Reconciler struct {
	sink   CommitSink
	notify Notifier
	flags  FieldFlagger
	logger *zap.Logger
}

// NewReconciler 创建调和器
func NewReconciler(sink CommitSink, notify Notifier, flags FieldFlagger, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		sink:   sink,
		notify: notify,
		flags:  flags,
		logger: logger,
	}
}

// ApplyVital 应用单个手动输入。返回是否已提交。
func (r *Reconciler) ApplyVital(f models.Field, raw string) bool {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !vitals.ValidateField(f, value) {
		r.reject(f, raw)
		return false
	}

	r.sink.CommitManual(f, value)
	r.notify.Notify(fmt.Sprintf("%s updated to %s %s", f.Label(), formatNumber(value), f.Unit()), "success")
	return true
}

// ApplyBloodPressure 应用血压对：两个子值独立校验，任一失败则整对不提交。
func (r *Reconciler) ApplyBloodPressure(rawSystolic, rawDiastolic string) bool {
	systolic, errS := strconv.ParseFloat(strings.TrimSpace(rawSystolic), 64)
	diastolic, errD := strconv.ParseFloat(strings.TrimSpace(rawDiastolic), 64)

	okS := errS == nil && vitals.ValidateField(models.FieldSystolic, systolic)
	okD := errD == nil && vitals.ValidateField(models.FieldDiastolic, diastolic)
	if !okS || !okD {
		if !okS {
			r.reject(models.FieldSystolic, rawSystolic)
		}
		if !okD {
			r.reject(models.FieldDiastolic, rawDiastolic)
		}
		return false
	}

	r.sink.CommitManualPair(systolic, diastolic)
	r.notify.Notify(fmt.Sprintf("Blood Pressure updated to %s/%s mmHg",
		formatNumber(systolic), formatNumber(diastolic)), "success")
	return true
}

// ApplyAll 批量应用手动输入：先校验所有字段，任一失败则全部不提交。
func (r *Reconciler) ApplyAll(raw map[models.Field]string) bool {
	values := make(map[models.Field]float64, len(raw))
	var failed []string

	for _, f := range models.ClinicalFields() {
		input, ok := raw[f]
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
		if err != nil || !vitals.ValidateField(f, value) {
			r.flags.FlagInvalid(f)
			failed = append(failed, f.Label())
			continue
		}
		values[f] = value
	}

	if len(failed) > 0 {
		r.notify.Notify(fmt.Sprintf("Update rejected, invalid input: %s", strings.Join(failed, ", ")), "error")
		r.logger.Warn("Bulk manual update rejected",
			zap.Strings("invalid_fields", failed),
		)
		return false
	}
	if len(values) == 0 {
		return false
	}

	r.sink.CommitManualBatch(values)
	r.notify.Notify(fmt.Sprintf("%d vitals updated", len(values)), "success")
	return true
}

func (r *Reconciler) reject(f models.Field, raw string) {
	r.flags.FlagInvalid(f)
	r.logger.Warn("Manual input rejected",
		zap.String("field", f.String()),
		zap.String("input", raw),
	)
}

// formatNumber 去掉无意义的小数尾零
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
