package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"websocket_relay_service/internal/relay/api/handlers"
	"websocket_relay_service/internal/relay/app"
	"websocket_relay_service/internal/relay/repository"
	"websocket_relay_service/internal/relay/router"
	"websocket_relay_service/pkg/config"
	"websocket_relay_service/pkg/database"
	"websocket_relay_service/pkg/eventlog"
	"websocket_relay_service/pkg/logger"
	"websocket_relay_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.RelayService, config.EnvConfig.RelayServiceLogPath)
	cfg := config.LoadConfig[config.Relay](config.EnvConfig.RelayService, config.EnvConfig.RelayServiceYAMLPath)

	// 2. 建立 Redis 連線 (Pub/Sub bridge, optional)
	var pubsub *repository.RelayPubSub
	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedisClient(cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			logger.Log.Fatal(
				"Unable to connect to redis",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
		}
		pubsub = repository.NewRelayPubSub(redisClient, cfg.Redis.Channel)
	}

	// 3. 初始化 Repository
	conns := repository.NewMemoryConnectionRepository()
	rooms := repository.NewMemoryRoomRepository(conns)
	history := repository.NewMemoryHistoryRepository(cfg.History.MaxPerRoom)

	// 4. 初始化 UseCases / Broker
	messageUC := app.NewMessageUseCase(history)
	events := eventlog.New(cfg.EventLog.MaxEntries)
	limiter := middlewares.NewRateLimiter(
		time.Duration(cfg.RateLimit.WindowMs)*time.Millisecond,
		cfg.RateLimit.Max,
	)

	hub := app.NewWebsocketHub()
	broker := app.NewBroker(conns, rooms, messageUC, events, limiter, hub, pubsub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broker.StartBridge(ctx)

	// 5. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.RelayServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	// 注册路由
	router.RegisterRoutes(
		r,
		app.NewRelayWebsocketHandler(broker, hub),
		handlers.NewQueryHandler(broker),
		handlers.NewEventHandler(broker),
		limiter,
	)

	// graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("shutdown signal received")
		if err := r.Shutdown(); err != nil {
			logger.Log.Errorf("shutdown error:", err)
		}
	}()

	port := cfg.Port
	if port == "" {
		port = config.EnvConfig.RelayServicePort
	}
	log.Printf("Relay Service listening on :%s", port)
	if err := r.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}

	logger.Log.Info("relay service stopped")
	logger.Log.Sync()
}
