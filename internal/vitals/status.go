package vitals

import "healthcmd/internal/models"

// Level 三级状态（与 Validate 的接受范围无关，用于视图着色）
type Level int

const (
	LevelStable Level = iota
	LevelWarning
	LevelCritical
)

// String 状态标识
func (l Level) String() string {
	switch l {
	case LevelStable:
		return "stable"
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	}
	return "unknown"
}

// Worse 取较差的状态
func Worse(a, b Level) Level {
	if b > a {
		return b
	}
	return a
}

// Classify 字段的三级状态分类。
// 心率/血氧/体温/收缩压使用专用阈值；舒张压跟随收缩压（血压状态
// 仅由收缩压决定）；环境字段恒为 stable。体温未定义 critical 档。
func Classify(f models.Field, v float64) Level {
	switch f {
	case models.FieldHeartRate:
		if v < 50 || v > 110 {
			return LevelCritical
		}
		if v >= 60 && v <= 100 {
			return LevelStable
		}
		return LevelWarning
	case models.FieldSpO2:
		if v < 88 {
			return LevelCritical
		}
		if v >= 92 && v <= 100 {
			return LevelStable
		}
		return LevelWarning
	case models.FieldTemperature:
		if v >= 36.1 && v <= 37.2 {
			return LevelStable
		}
		return LevelWarning
	case models.FieldSystolic:
		// stable [90,130]，越界 ±10% 升级为 critical
		if v < 90*0.9 || v > 130*1.1 {
			return LevelCritical
		}
		if v >= 90 && v <= 130 {
			return LevelStable
		}
		return LevelWarning
	}
	return LevelStable
}

// ClassifyRecord 基于完整记录的字段状态。
// 舒张压无独立阈值，显示血压整体状态（由收缩压决定）。
func ClassifyRecord(rec models.VitalsRecord, f models.Field) Level {
	if f == models.FieldDiastolic {
		return Classify(models.FieldSystolic, rec.Systolic)
	}
	return Classify(f, rec.Get(f))
}

// Overall 整体状态：心率与血氧中较差者
func Overall(rec models.VitalsRecord) Level {
	return Worse(
		Classify(models.FieldHeartRate, rec.HeartRate),
		Classify(models.FieldSpO2, rec.SpO2),
	)
}
