package vitals

import (
	"math"

	"healthcmd/internal/models"
)

// Unbounded 表示该侧不做范围检查
func Unbounded() float64 {
	return math.NaN()
}

// Validate 纯校验：value 为数值且落在 [min,max]（含边界）内则接受。
// min/max 为 NaN 时对应一侧不检查（复合字段的外层包装用）。
func Validate(value, min, max float64) bool {
	if math.IsNaN(value) {
		return false
	}
	if !math.IsNaN(min) && value < min {
		return false
	}
	if !math.IsNaN(max) && value > max {
		return false
	}
	return true
}

// AcceptRange 字段的接受范围（手动/后端写入路径使用，拒绝而非钳制）
func AcceptRange(f models.Field) (min, max float64) {
	switch f {
	case models.FieldHeartRate:
		return 40, 200
	case models.FieldSpO2:
		return 70, 100
	case models.FieldSystolic:
		return 80, 200
	case models.FieldDiastolic:
		return 50, 120
	case models.FieldTemperature:
		return 35, 42
	case models.FieldHumidity:
		return 0, 100
	}
	// altitude / ext_temp 不设范围
	return Unbounded(), Unbounded()
}

// ValidateField 按字段接受范围校验
func ValidateField(f models.Field, value float64) bool {
	min, max := AcceptRange(f)
	return Validate(value, min, max)
}
