package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"healthcmd/internal/models"
)

// 推送通道重连上限：耗尽后通道保持断开（降级的 BACKEND 态），
// 恢复需要用户手动切换模式
const maxReconnectAttempts = 5

// streamEvent 推送通道事件帧：{"event": ..., "data": ...}
type streamEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// connectionResponse connection_response 事件载荷
type connectionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StreamHandlers 推送通道回调（在通道的读 goroutine 上调用）
type StreamHandlers struct {
	OnConnect func(message string)                     // connection_response
	OnVitals  func(payload *models.VitalsPushPayload)  // vitals_update
	OnDown    func(err error)                          // 重连次数耗尽
}

// Stream 后端推送通道：携带命名事件的持久连接
type Stream struct {
	url           string
	clientID      string
	handlers      StreamHandlers
	logger        *zap.Logger
	reconnectWait time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewStream 创建推送通道（未连接）
func NewStream(url string, handlers StreamHandlers, logger *zap.Logger) *Stream {
	return &Stream{
		url:           url,
		clientID:      uuid.NewString(),
		handlers:      handlers,
		logger:        logger,
		reconnectWait: 2 * time.Second,
	}
}

// Connect 建立连接并启动读循环。
// 初次拨号失败也计入重连预算，在后台继续尝试。
func (s *Stream) Connect(ctx context.Context) error {
	conn, err := s.dial(ctx)
	if err != nil {
		s.logger.Warn("Push channel initial dial failed, reconnecting in background",
			zap.String("url", s.url),
			zap.Error(err),
		)
		go s.reconnectLoop(ctx, 1)
		return fmt.Errorf("failed to connect push channel: %w", err)
	}

	s.setConn(conn)
	go s.readLoop(ctx, conn)
	return nil
}

// Connected 通道当前是否已连接
func (s *Stream) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && !s.closed
}

// Close 关闭通道并停止重连（幂等）
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.logger.Info("Push channel closed")
}

func (s *Stream) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("X-Client-ID", s.clientID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *Stream) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		conn.Close()
		return
	}
	s.conn = conn
}

// readLoop 读循环：逐帧分发事件，连接断开后转入重连
func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var ev streamEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if s.isClosed() || ctx.Err() != nil {
				return
			}
			s.logger.Warn("Push channel disconnected",
				zap.Error(err),
			)
			s.reconnectLoop(ctx, 1)
			return
		}
		s.dispatch(ev)
	}
}

// dispatch 按事件名分发到注册的回调
func (s *Stream) dispatch(ev streamEvent) {
	switch ev.Event {
	case "connection_response":
		var cr connectionResponse
		if err := json.Unmarshal(ev.Data, &cr); err != nil {
			s.logger.Warn("Malformed connection_response",
				zap.Error(err),
			)
			return
		}
		s.logger.Info("Push channel connected",
			zap.String("message", cr.Message),
		)
		if s.handlers.OnConnect != nil {
			s.handlers.OnConnect(cr.Message)
		}
	case "vitals_update":
		var payload models.VitalsPushPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			s.logger.Warn("Malformed vitals_update",
				zap.Error(err),
			)
			return
		}
		if s.handlers.OnVitals != nil {
			s.handlers.OnVitals(&payload)
		}
	default:
		s.logger.Debug("Ignoring unknown push event",
			zap.String("event", ev.Event),
		)
	}
}

// reconnectLoop 有界重连：每次等待后重新拨号，成功则恢复读循环
func (s *Stream) reconnectLoop(ctx context.Context, attempt int) {
	for ; attempt <= maxReconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectWait):
		}
		if s.isClosed() {
			return
		}

		conn, err := s.dial(ctx)
		if err != nil {
			s.logger.Warn("Push channel reconnect failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxReconnectAttempts),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Push channel reconnected",
			zap.Int("attempt", attempt),
		)
		s.setConn(conn)
		s.readLoop(ctx, conn)
		return
	}

	s.logger.Error("Push channel reconnect attempts exhausted",
		zap.Int("max_attempts", maxReconnectAttempts),
	)
	if s.handlers.OnDown != nil {
		s.handlers.OnDown(fmt.Errorf("push channel down after %d reconnect attempts", maxReconnectAttempts))
	}
}

func (s *Stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
