package service

// Mode 数据来源模式：同一时刻只允许一个生产者向存储写入
// （模拟器 或 后端同步客户端；手动输入在两种模式下都允许）
type Mode int

const (
	ModeLocal Mode = iota
	ModeBackend
)

// String 模式标识
func (m Mode) String() string {
	switch m {
	case ModeLocal:
		return "LOCAL"
	case ModeBackend:
		return "BACKEND"
	}
	return "UNKNOWN"
}
