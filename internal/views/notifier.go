package views

import (
	"sync"
	"time"
)

// Kind 通知类型
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Notifier 通知条：固定显示窗口，同屏最多一条（新通知顶替旧通知）
type Notifier struct {
	mu      sync.Mutex
	window  time.Duration
	seq     uint64
	message string
	kind    Kind
	timer   *time.Timer
	echo    func(message string, kind Kind) // 可选回显（控制台/日志）
}

// NewNotifier 创建通知条，window <= 0 时使用 3 秒默认窗口
func NewNotifier(window time.Duration, echo func(message string, kind Kind)) *Notifier {
	if window <= 0 {
		window = 3 * time.Second
	}
	return &Notifier{
		window: window,
		echo:   echo,
	}
}

// Notify 显示通知（实现 producer.Notifier）
func (n *Notifier) Notify(message, kind string) {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.message = message
	n.kind = Kind(kind)
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.window, func() {
		n.clear(seq)
	})
	echo := n.echo
	n.mu.Unlock()

	if echo != nil {
		echo(message, Kind(kind))
	}
}

// clear 仅当没有更新的通知顶替时才清除
func (n *Notifier) clear(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seq != seq {
		return
	}
	n.message = ""
	n.kind = ""
}

// Current 当前可见通知
func (n *Notifier) Current() (message string, kind Kind, visible bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message, n.kind, n.message != ""
}
