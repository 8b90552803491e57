package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/notify"
	"github.com/d60-Lab/storefront/internal/realtime"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/pkg/database"
)

// discardConn 只计数的在线连接
type discardConn struct {
	id      string
	emitted *atomic.Int64
}

func (c discardConn) ID() string { return c.id }

func (c discardConn) Emit(context.Context, string, interface{}) error {
	c.emitted.Add(1)
	return nil
}

func (c discardConn) Close() error { return nil }

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	db, err := database.InitDB(cfg)
	if err != nil {
		panic(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		panic(err)
	}

	recipients := envInt("RECIPIENTS", 1000)
	repeat := envInt("REPEAT", 20)
	online := envInt("ONLINE_PERCENT", 30)
	workers := envInt("WORKERS", cfg.Delivery.Workers)

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	registry := realtime.NewRegistry()
	var emitted atomic.Int64
	ids := make([]string, recipients)
	prefs := model.DefaultNotificationPreferences()
	for i := range ids {
		u := &model.User{ID: uuid.New().String(), Username: "bench-" + uuid.New().String()[:12], Role: model.RoleUser, Preferences: &prefs}
		if err := users.Create(ctx, u); err != nil {
			panic(err)
		}
		ids[i] = u.ID
		if i*100 < recipients*online {
			registry.Register(u.ID, discardConn{id: uuid.New().String(), emitted: &emitted})
		}
	}

	engine := notify.NewEngine(notify.Deps{
		Store:      repository.NewNotificationRepository(db),
		Recipients: cache.NewRecipientCache(users, cache.NewMemoryBackend(time.Minute, time.Minute), time.Minute, nil),
		Audience:   users,
		Live:       registry,
	}, notify.Options{Workers: workers, QueueSize: recipients * repeat})
	stop := engine.Start()

	persists := make([]time.Duration, 0, repeat)
	for i := 0; i < repeat; i++ {
		st := time.Now()
		_, err := engine.Fanout(ctx, notify.Draft{
			RecipientIDs: ids,
			Type:         model.TypeAdminMessage,
			Title:        "Benchmark",
			Message:      fmt.Sprintf("round %d", i),
		})
		if err != nil {
			panic(err)
		}
		persists = append(persists, time.Since(st))
	}

	sctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := stop(sctx); err != nil {
		fmt.Fprintln(os.Stderr, "drain:", err)
	}

	deliveries := make([]time.Duration, 0, recipients*repeat)
	samples := engine.Metrics()
drain:
	for {
		select {
		case d := <-samples:
			deliveries = append(deliveries, d)
		default:
			break drain
		}
	}

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(float64(len(xs)) * p)
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}
	avg := func(vs []time.Duration) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		var sum time.Duration
		for _, d := range vs {
			sum += d
		}
		return sum / time.Duration(len(vs))
	}

	fmt.Printf("RECIPIENTS=%d REPEAT=%d ONLINE=%d%% WORKERS=%d\n", recipients, repeat, online, workers)
	fmt.Printf("Fan-out persist: avg=%v p95=%v p99=%v\n", avg(persists), pct(persists, 0.95), pct(persists, 0.99))
	fmt.Printf("Delivery (enqueue->done, %d samples): avg=%v p95=%v p99=%v\n", len(deliveries), avg(deliveries), pct(deliveries, 0.95), pct(deliveries, 0.99))
	fmt.Printf("Live emits: %d\n", emitted.Load())
}
