package models

// Field 生命体征字段（封闭枚举，替代字符串键分发表）
type Field int

const (
	FieldHeartRate Field = iota
	FieldSpO2
	FieldSystolic
	FieldDiastolic
	FieldTemperature
	FieldAltitude
	FieldExtTemp
	FieldHumidity
)

// ClinicalFields 临床字段（写入前必须通过校验的字段）
func ClinicalFields() []Field {
	return []Field{
		FieldHeartRate,
		FieldSpO2,
		FieldSystolic,
		FieldDiastolic,
		FieldTemperature,
	}
}

// AllFields 全部字段（固定顺序，视图刷新按此遍历）
func AllFields() []Field {
	return []Field{
		FieldHeartRate,
		FieldSpO2,
		FieldSystolic,
		FieldDiastolic,
		FieldTemperature,
		FieldAltitude,
		FieldExtTemp,
		FieldHumidity,
	}
}

// IsClinical 是否为临床字段
func (f Field) IsClinical() bool {
	switch f {
	case FieldHeartRate, FieldSpO2, FieldSystolic, FieldDiastolic, FieldTemperature:
		return true
	}
	return false
}

// String 字段标识（与后端 JSON 字段名一致）
func (f Field) String() string {
	switch f {
	case FieldHeartRate:
		return "heart_rate"
	case FieldSpO2:
		return "spo2"
	case FieldSystolic:
		return "systolic"
	case FieldDiastolic:
		return "diastolic"
	case FieldTemperature:
		return "temperature"
	case FieldAltitude:
		return "altitude"
	case FieldExtTemp:
		return "ext_temp"
	case FieldHumidity:
		return "humidity"
	}
	return "unknown"
}

// Label 显示名称
func (f Field) Label() string {
	switch f {
	case FieldHeartRate:
		return "Heart Rate"
	case FieldSpO2:
		return "SpO2"
	case FieldSystolic:
		return "Systolic"
	case FieldDiastolic:
		return "Diastolic"
	case FieldTemperature:
		return "Body Temp"
	case FieldAltitude:
		return "Altitude"
	case FieldExtTemp:
		return "External Temp"
	case FieldHumidity:
		return "Humidity"
	}
	return "Unknown"
}

// Unit 计量单位
func (f Field) Unit() string {
	switch f {
	case FieldHeartRate:
		return "bpm"
	case FieldSpO2, FieldHumidity:
		return "%"
	case FieldSystolic, FieldDiastolic:
		return "mmHg"
	case FieldTemperature, FieldExtTemp:
		return "°C"
	case FieldAltitude:
		return "m"
	}
	return ""
}

// VitalsRecord 被监测对象的当前生命体征记录（进程内唯一真值）
type VitalsRecord struct {
	HeartRate   float64 `json:"heart_rate"`
	SpO2        float64 `json:"spo2"`
	Systolic    float64 `json:"systolic"`
	Diastolic   float64 `json:"diastolic"`
	Temperature float64 `json:"temperature"`
	Altitude    float64 `json:"altitude"`
	ExtTemp     float64 `json:"ext_temp"`
	Humidity    float64 `json:"humidity"`
}

// DefaultVitals 启动基线值
func DefaultVitals() VitalsRecord {
	return VitalsRecord{
		HeartRate:   72,
		SpO2:        96,
		Systolic:    120,
		Diastolic:   80,
		Temperature: 36.8,
		Altitude:    5400,
		ExtTemp:     -15,
		Humidity:    42,
	}
}

// Get 按字段读取
func (r VitalsRecord) Get(f Field) float64 {
	switch f {
	case FieldHeartRate:
		return r.HeartRate
	case FieldSpO2:
		return r.SpO2
	case FieldSystolic:
		return r.Systolic
	case FieldDiastolic:
		return r.Diastolic
	case FieldTemperature:
		return r.Temperature
	case FieldAltitude:
		return r.Altitude
	case FieldExtTemp:
		return r.ExtTemp
	case FieldHumidity:
		return r.Humidity
	}
	return 0
}

// Set 按字段写入（不做校验，校验是调用方契约）
func (r *VitalsRecord) Set(f Field, v float64) {
	switch f {
	case FieldHeartRate:
		r.HeartRate = v
	case FieldSpO2:
		r.SpO2 = v
	case FieldSystolic:
		r.Systolic = v
	case FieldDiastolic:
		r.Diastolic = v
	case FieldTemperature:
		r.Temperature = v
	case FieldAltitude:
		r.Altitude = v
	case FieldExtTemp:
		r.ExtTemp = v
	case FieldHumidity:
		r.Humidity = v
	}
}
