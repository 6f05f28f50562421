package models

// VitalsPushPayload 后端下发的读数载荷（REST 拉取与推送通道共用）
// 指针字段：缺失 = 保持当前值，不做零填充
type VitalsPushPayload struct {
	HeartRate   *float64    `json:"heart_rate,omitempty"`
	SpO2        *float64    `json:"spo2,omitempty"`
	Systolic    *float64    `json:"systolic,omitempty"`
	Diastolic   *float64    `json:"diastolic,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
	Altitude    *float64    `json:"altitude,omitempty"`
	MLAnalysis  *MLAnalysis `json:"ml_analysis,omitempty"`
}

// FieldValue 载荷中的单个字段值
type FieldValue struct {
	Field Field
	Value *float64
}

// FieldValues 按固定顺序展开载荷字段（nil = 该字段缺失）
func (p *VitalsPushPayload) FieldValues() []FieldValue {
	return []FieldValue{
		{FieldHeartRate, p.HeartRate},
		{FieldSpO2, p.SpO2},
		{FieldSystolic, p.Systolic},
		{FieldDiastolic, p.Diastolic},
		{FieldTemperature, p.Temperature},
		{FieldAltitude, p.Altitude},
	}
}

// MLAnalysis 后端 ML 模型分析结果
type MLAnalysis struct {
	HealthScore           *float64         `json:"health_score,omitempty"`
	OverallRiskLevel      *string          `json:"overall_risk_level,omitempty"`
	OverallRiskPercentage *float64         `json:"overall_risk_percentage,omitempty"`
	Recommendations       []Recommendation `json:"recommendations,omitempty"`
}

// Recommendation 处置建议
type Recommendation struct {
	Priority string `json:"priority"`
	Icon     string `json:"icon"`
	Action   string `json:"action"`
}

// VitalsReading POST /api/vitals 请求体
type VitalsReading struct {
	SoldierID   string  `json:"soldier_id"`
	HeartRate   float64 `json:"heart_rate"`
	SpO2        float64 `json:"spo2"`
	Temperature float64 `json:"temperature"`
	Systolic    float64 `json:"systolic"`
	Diastolic   float64 `json:"diastolic"`
	Altitude    float64 `json:"altitude"`
	Timestamp   string  `json:"timestamp"` // ISO-8601
}

// ReadingFromRecord 由当前记录构造上报请求体
func ReadingFromRecord(soldierID string, rec VitalsRecord, timestamp string) VitalsReading {
	return VitalsReading{
		SoldierID:   soldierID,
		HeartRate:   rec.HeartRate,
		SpO2:        rec.SpO2,
		Temperature: rec.Temperature,
		Systolic:    rec.Systolic,
		Diastolic:   rec.Diastolic,
		Altitude:    rec.Altitude,
		Timestamp:   timestamp,
	}
}
