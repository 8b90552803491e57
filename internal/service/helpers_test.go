package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/notify"
	"github.com/d60-Lab/storefront/internal/repository"
)

// recordingNotifier 记录每次扇出请求，inner 非空时转发给真实引擎
type recordingNotifier struct {
	mu     sync.Mutex
	drafts []notify.Draft
	inner  Notifier
	err    error
}

func (r *recordingNotifier) Fanout(ctx context.Context, d notify.Draft) ([]*model.Notification, error) {
	r.mu.Lock()
	r.drafts = append(r.drafts, d)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.inner == nil {
		return nil, nil
	}
	return r.inner.Fanout(ctx, d)
}

func (r *recordingNotifier) Drafts() []notify.Draft {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Draft(nil), r.drafts...)
}

func (r *recordingNotifier) ByType(t model.NotificationType) []notify.Draft {
	var out []notify.Draft
	for _, d := range r.Drafts() {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

type testEnv struct {
	db            *gorm.DB
	users         repository.UserRepository
	products      repository.ProductRepository
	orders        repository.OrderRepository
	notifications repository.NotificationRepository
	subs          repository.PushSubscriptionRepository
	engine        *notify.Engine
	notifier      *recordingNotifier
}

// newTestEnv 内存 SQLite + 真实扇出引擎（不接实时与推送通道）
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repository.AutoMigrate(db))

	env := &testEnv{
		db:            db,
		users:         repository.NewUserRepository(db),
		products:      repository.NewProductRepository(db),
		orders:        repository.NewOrderRepository(db),
		notifications: repository.NewNotificationRepository(db),
		subs:          repository.NewPushSubscriptionRepository(db),
	}
	env.engine = notify.NewEngine(notify.Deps{
		Store:      env.notifications,
		Recipients: userLookup{env.users},
		Audience:   env.users,
	}, notify.Options{Workers: 1, QueueSize: 64})
	stop := env.engine.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = stop(ctx)
	})
	env.notifier = &recordingNotifier{inner: env.engine}
	return env
}

// userLookup 直接查库的收件人解析
type userLookup struct{ users repository.UserRepository }

func (l userLookup) LookupRecipients(ctx context.Context, ids []string) (map[string]model.RecipientProfile, error) {
	list, err := l.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.RecipientProfile, len(list))
	for _, u := range list {
		out[u.ID] = u.Profile()
	}
	return out, nil
}

func (e *testEnv) user(t *testing.T, id string, role model.UserRole, prefs *model.NotificationPreferences) *model.User {
	t.Helper()
	u := &model.User{ID: id, Username: id, Name: id + " name", Email: id + "@example.com", Role: role, Preferences: prefs}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) product(t *testing.T, sellerID string, price float64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{Name: "Amber Musk", Price: price, Stock: stock, SellerID: sellerID}
	require.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *testEnv) inbox(t *testing.T, recipientID string) []*model.Notification {
	t.Helper()
	page, err := e.notifications.List(context.Background(), recipientID, repository.NotificationFilter{IncludeHidden: true, PageSize: repository.MaxPageSize})
	require.NoError(t, err)
	return page.Items
}

func prefs(orderUpdates, promotions, priceAlerts bool) *model.NotificationPreferences {
	return &model.NotificationPreferences{OrderUpdates: orderUpdates, Promotions: promotions, PriceAlerts: priceAlerts}
}
