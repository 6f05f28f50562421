package config

import (
	"os"
	"strconv"
	"time"
)

// Config 监控引擎配置
type Config struct {
	SoldierID string

	Backend struct {
		BaseURL   string        // 空 = 后端未配置，仅 LOCAL 能力
		StreamURL string        // 推送通道地址
		Timeout   time.Duration // REST 请求超时
	}

	Simulator struct {
		Interval time.Duration // 模拟器滴答周期
	}

	// MQTT 快照镜像（Broker 为空 = 关闭）
	MQTT struct {
		Broker   string
		ClientID string
		Username string
		Password string
		Topic    string
		QoS      byte
	}

	// Redis 实时快照镜像（Addr 为空 = 关闭）
	Redis struct {
		Addr      string
		Password  string
		DB        int
		KeyPrefix string
		TTL       time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置（带默认值）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.SoldierID = getEnv("SOLDIER_ID", "SOL-7842-ALPHA")

	cfg.Backend.BaseURL = getEnv("BACKEND_BASE_URL", "http://localhost:5000")
	cfg.Backend.StreamURL = getEnv("BACKEND_STREAM_URL", "ws://localhost:5000/stream")
	cfg.Backend.Timeout = time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 10)) * time.Second

	cfg.Simulator.Interval = time.Duration(getEnvInt("SIM_INTERVAL_SECONDS", 3)) * time.Second

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "healthcmd")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "healthcmd/vitals")
	cfg.MQTT.QoS = 1

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.KeyPrefix = getEnv("CACHE_REALTIME_PREFIX", "health-cmd:soldier:")
	cfg.Redis.TTL = time.Duration(getEnvInt("CACHE_REALTIME_TTL", 30)) * time.Second

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
