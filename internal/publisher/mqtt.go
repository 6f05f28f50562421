package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"healthcmd/internal/models"
)

// snapshotMessage 发布到 MQTT 的快照消息
type snapshotMessage struct {
	SoldierID string              `json:"soldier_id"`
	Vitals    models.VitalsRecord `json:"vitals"`
	Timestamp string              `json:"timestamp"` // ISO-8601
}

// MQTTPublisher 把已提交的生命体征快照镜像到 MQTT 主题，
// 供指挥端其它订阅方消费。发布失败只记日志，不影响提交路径。
type MQTTPublisher struct {
	client    mqtt.Client
	topic     string
	qos       byte
	soldierID string
	logger    *zap.Logger
}

// Options MQTT 发布配置
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// NewMQTTPublisher 创建并连接 MQTT 发布器
func NewMQTTPublisher(opts Options, soldierID string, logger *zap.Logger) (*MQTTPublisher, error) {
	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetCleanSession(true)

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &MQTTPublisher{
		client:    client,
		topic:     opts.Topic,
		qos:       opts.QoS,
		soldierID: soldierID,
		logger:    logger,
	}, nil
}

// MirrorSnapshot 发布最新快照（实现 service.Mirror）
func (p *MQTTPublisher) MirrorSnapshot(ctx context.Context, rec models.VitalsRecord, at time.Time) error {
	payload, err := json.Marshal(snapshotMessage{
		SoldierID: p.soldierID,
		Vitals:    rec,
		Timestamp: at.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot message: %w", err)
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", p.topic, token.Error())
	}
	return nil
}

// Close 断开 MQTT 连接
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250) // 250ms等待时间
}
