package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"healthcmd/internal/backend"
	"healthcmd/internal/cache"
	"healthcmd/internal/config"
	"healthcmd/internal/dispatch"
	"healthcmd/internal/logger"
	"healthcmd/internal/producer"
	"healthcmd/internal/publisher"
	"healthcmd/internal/service"
	"healthcmd/internal/views"
	"healthcmd/internal/vitals"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "healthcmd")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. 视图协作者
	display := views.NewDisplay()
	statusBoard := views.NewStatus()
	summary := views.NewSummary()
	chart := views.NewSeriesBuffer(30)
	flags := views.NewInvalidFlags(0)
	notifier := views.NewNotifier(0, func(message string, kind views.Kind) {
		fmt.Printf("[%s] %s\n", kind, message)
	})

	dispatcher := dispatch.NewDispatcher(display, statusBoard, summary, log)

	// 4. 后端客户端（未配置则降级为仅 LOCAL 能力）
	var client *backend.Client
	var remote service.RemoteFeed
	var newStream service.StreamFactory
	if cfg.Backend.BaseURL != "" {
		client = backend.NewClient(cfg.Backend.BaseURL, cfg.SoldierID, cfg.Backend.Timeout, log)
		remote = client
		streamURL := cfg.Backend.StreamURL
		newStream = func(handlers backend.StreamHandlers) service.StreamConn {
			return backend.NewStream(streamURL, handlers, log)
		}
	} else {
		log.Warn("Backend base URL not configured, backend mode disabled")
	}

	// 5. 快照镜像（可选，配置缺失 = 功能关闭，不致命）
	var mirrors []service.Mirror
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unavailable, realtime mirror disabled",
				zap.Error(err),
			)
		} else {
			mirrors = append(mirrors, cache.NewRealtimeMirror(
				cache.NewRedisKVStore(redisClient),
				cfg.Redis.KeyPrefix,
				cfg.SoldierID,
				cfg.Redis.TTL,
				log,
			))
			defer redisClient.Close()
		}
	}
	if cfg.MQTT.Broker != "" {
		pub, err := publisher.NewMQTTPublisher(publisher.Options{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
			QoS:      cfg.MQTT.QoS,
		}, cfg.SoldierID, log)
		if err != nil {
			log.Warn("MQTT unavailable, snapshot publisher disabled",
				zap.Error(err),
			)
		} else {
			mirrors = append(mirrors, pub)
			defer pub.Close()
		}
	}

	// 6. 存储与引擎
	store := vitals.NewStore(log)
	monitor := service.NewMonitor(service.Options{
		SoldierID:   cfg.SoldierID,
		Store:       store,
		Dispatcher:  dispatcher,
		Chart:       chart,
		Notifier:    notifier,
		Remote:      remote,
		NewStream:   newStream,
		Mirrors:     mirrors,
		SimInterval: cfg.Simulator.Interval,
		Logger:      log,
	})
	reconciler := producer.NewReconciler(monitor, notifier, flags, log)

	// 7. 启动（支持优雅关闭）
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor.Start(ctx)
	defer monitor.Stop()

	if client != nil && client.Available(ctx) {
		log.Info("Backend is operational",
			zap.String("base_url", cfg.Backend.BaseURL),
		)
	}

	// 8. 操作员控制台（手动输入面）
	cons := newConsole(monitor, reconciler, client, display, statusBoard, notifier, chart)
	consoleDone := make(chan struct{})
	go func() {
		cons.run(ctx)
		close(consoleDone)
	}()

	// 9. 等待信号或控制台退出
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case <-consoleDone:
	}
	cancel()
	log.Info("Health command console stopped")
}
