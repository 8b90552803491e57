package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/api"
	"github.com/d60-Lab/storefront/internal/api/handler"
	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/notify"
	"github.com/d60-Lab/storefront/internal/push"
	"github.com/d60-Lab/storefront/internal/realtime"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/pkg/database"
	"github.com/d60-Lab/storefront/pkg/logger"
	"github.com/d60-Lab/storefront/pkg/token"
	"github.com/d60-Lab/storefront/pkg/tracing"
)

const shutdownTimeout = 15 * time.Second

func runServer(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			SampleRate:       cfg.Sentry.SampleRate,
			AttachStacktrace: true,
		})
		if err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	users := repository.NewUserRepository(db)
	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	notifications := repository.NewNotificationRepository(db)
	subs := repository.NewPushSubscriptionRepository(db)

	backend, closeBackend, err := newCacheBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()
	recipients := cache.NewRecipientCache(users, backend, cfg.Cache.TTL, log.Named("cache"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expire)
	registry := realtime.NewRegistry()
	live := realtime.NewServer(registry, tokens, realtime.Options{
		WriteTimeout:   cfg.Delivery.LiveWriteTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, log.Named("realtime"))

	deps := notify.Deps{
		Store:         notifications,
		Recipients:    recipients,
		Audience:      users,
		Subscriptions: subs,
		Live:          registry,
		Metrics:       notify.NewMetrics(reg),
		Logger:        log.Named("notify"),
	}
	if cfg.Push.Enabled {
		deps.Push = push.NewWebPushSender(push.WebPushConfig{
			VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
			Subscriber:      cfg.Push.Subscriber,
			TTL:             cfg.Push.TTL,
			Timeout:         cfg.Push.Timeout,
			Rate:            cfg.Push.Rate,
			Burst:           cfg.Push.Burst,
		})
	}
	engine := notify.NewEngine(deps, notify.Options{
		Workers:      cfg.Delivery.Workers,
		QueueSize:    cfg.Delivery.QueueSize,
		LiveTimeout:  cfg.Delivery.LiveWriteTimeout,
		PushTimeout:  cfg.Push.Timeout,
		StoreTimeout: cfg.Delivery.StoreTimeout,
	})
	stopEngine := engine.Start()
	go drainLatency(ctx, engine)

	h := handler.NewHandler(handler.Services{
		Activity:       service.NewActivityService(notifications, users),
		Preference:     service.NewPreferenceService(users, recipients, log.Named("preference")),
		Broadcast:      service.NewBroadcastService(engine),
		Order:          service.NewOrderService(orders, products, users, engine, log.Named("order")),
		Product:        service.NewProductService(products, users, engine, log.Named("product")),
		Subscription:   service.NewSubscriptionService(subs),
		VAPIDPublicKey: pushPublicKey(cfg.Push),
	})
	router := api.NewRouter(api.RouterConfig{
		Mode:           cfg.Server.Mode,
		ServiceName:    cfg.Tracing.ServiceName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Tracing:        cfg.Tracing.Enabled,
		Sentry:         cfg.Sentry.DSN != "",
		Swagger:        cfg.Server.Mode != "release",
		Tokens:         tokens,
		Gatherer:       reg,
		Live:           live,
	}, h)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", zap.Error(err))
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}
	if err := stopEngine(sctx); err != nil {
		log.Warn("delivery workers did not drain", zap.Int("queued", engine.QueueLen()), zap.Error(err))
	}
	liveUsers, liveConns := registry.Stats()
	log.Info("stopped", zap.Int("live_users", liveUsers), zap.Int("live_conns", liveConns))
	return nil
}

// newCacheBackend 按配置选择 redis / 进程内缓存；none 时返回 nil
func newCacheBackend(ctx context.Context, cfg *config.Config) (cache.Backend, func(), error) {
	switch cfg.Cache.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return cache.NewRedisBackend(client), func() { _ = client.Close() }, nil
	case "memory":
		return cache.NewMemoryBackend(cfg.Cache.TTL, 2*cfg.Cache.TTL), func() {}, nil
	}
	return nil, func() {}, nil
}

func pushPublicKey(cfg config.PushConfig) string {
	if !cfg.Enabled {
		return ""
	}
	return cfg.VAPIDPublicKey
}

// drainLatency 消费投递耗时采样，避免采样通道写满
func drainLatency(ctx context.Context, engine *notify.Engine) {
	samples := engine.Metrics()
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-samples:
			if !ok {
				return
			}
			logger.Debug("delivery completed", zap.Duration("latency", d))
		}
	}
}
