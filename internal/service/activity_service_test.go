package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/storefront/internal/apperr"
	"github.com/d60-Lab/storefront/internal/model"
	"github.com/d60-Lab/storefront/internal/notify"
)

func seedActivity(t *testing.T, env *testEnv, recipient string) {
	t.Helper()
	ctx := context.Background()
	drafts := []notify.Draft{
		{Type: model.TypeOrderStatus, Title: "Order Shipped", Message: "parcel on its way", Payload: model.OrderPayload{OrderID: "o1", OrderStatus: model.OrderStatusShipped}},
		{Type: model.TypeNewProduct, Title: "New Product Available!", Message: "Check out our new product: Oud", Payload: model.ProductPayload{ProductID: "p1"}},
		{Type: model.TypeAdminMessage, Title: "Maintenance", Message: "Parcel lockers offline tonight"},
	}
	for _, d := range drafts {
		d.RecipientIDs = []string{recipient}
		_, err := env.engine.Fanout(ctx, d)
		require.NoError(t, err)
	}
}

func TestRecentExcludesCleared(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", model.RoleUser, prefs(true, true, true))
	svc := NewActivityService(env.notifications, env.users)
	ctx := context.Background()
	seedActivity(t, env, "u1")

	page, err := svc.Recent(ctx, "u1", RecentQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Maintenance", page.Items[0].Title)

	cut := page.Items[1].CreatedAt
	n, err := svc.ClearRecent(ctx, "u1", &cut)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	page, err = svc.Recent(ctx, "u1", RecentQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Maintenance", page.Items[0].Title)

	inbox, err := svc.Inbox(ctx, "u1", InboxQuery{})
	require.NoError(t, err)
	assert.Len(t, inbox.Items, 3)
}

func TestRecentAfterAndPaging(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", model.RoleUser, prefs(true, true, true))
	svc := NewActivityService(env.notifications, env.users)
	seedActivity(t, env, "u1")

	page, err := svc.Recent(context.Background(), "u1", RecentQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.EqualValues(t, 3, page.Total)
	assert.True(t, page.HasMore)

	after := page.Items[1].CreatedAt
	page, err = svc.Recent(context.Background(), "u1", RecentQuery{After: &after})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestInboxHidesSwitchedOffTypes(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", model.RoleUser, prefs(true, true, true))
	svc := NewActivityService(env.notifications, env.users)
	prefSvc := NewPreferenceService(env.users, nil, nil)
	ctx := context.Background()
	seedActivity(t, env, "u1")

	_, err := prefSvc.Update(ctx, "u1", UpdatePreferenceInput{Type: model.PrefPromotions, Enabled: boolPtr(false)})
	require.NoError(t, err)

	page, err := svc.Inbox(ctx, "u1", InboxQuery{Filter: InboxAll})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, n := range page.Items {
		assert.NotEqual(t, model.TypeNewProduct, n.Type)
	}

	page, err = svc.Inbox(ctx, "u1", InboxQuery{Search: "PARCEL"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	_, err = svc.Inbox(ctx, "u1", InboxQuery{Filter: "starred"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetMarksReadAndIsRecipientScoped(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", model.RoleUser, prefs(true, true, true))
	env.user(t, "u2", model.RoleUser, prefs(true, true, true))
	svc := NewActivityService(env.notifications, env.users)
	ctx := context.Background()
	seedActivity(t, env, "u1")
	items := env.inbox(t, "u1")

	_, err := svc.Get(ctx, "u2", items[0].ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := svc.Get(ctx, "u1", items[0].ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	again, err := svc.MarkRead(ctx, "u1", items[0].ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)

	page, err := svc.Inbox(ctx, "u1", InboxQuery{Filter: InboxUnread})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	n, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	page, err = svc.Inbox(ctx, "u1", InboxQuery{Filter: InboxUnread})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestPreferenceDefaultsAndInvalidation(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "u1", model.RoleUser, nil)
	inv := &invalidations{}
	svc := NewPreferenceService(env.users, inv, nil)
	ctx := context.Background()

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultNotificationPreferences(), got)
	stored, err := env.users.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, stored.Preferences)

	got, err = svc.Update(ctx, "u1", UpdatePreferenceInput{Type: model.PrefPromotions, Enabled: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, got.Promotions)
	assert.True(t, got.OrderUpdates)
	assert.Equal(t, []string{"u1", "u1"}, inv.ids)

	_, err = svc.Update(ctx, "u1", UpdatePreferenceInput{Type: "newsletter", Enabled: boolPtr(true)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Get(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSubscriptionRegisterAndUnregister(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSubscriptionService(env.subs)
	ctx := context.Background()
	in := RegisterSubscriptionInput{
		Endpoint: "https://push.example.com/send/abc",
		Keys:     SubscriptionKeys{P256dh: "key", Auth: "secret"},
	}

	first, err := svc.Register(ctx, "u1", in)
	require.NoError(t, err)
	in.Keys.Auth = "rotated"
	second, err := svc.Register(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "rotated", second.Auth)

	err = svc.Unregister(ctx, "u2", in.Endpoint)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	require.NoError(t, svc.Unregister(ctx, "u1", in.Endpoint))
	left, err := env.subs.ListForUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = svc.Register(ctx, "u1", RegisterSubscriptionInput{Endpoint: in.Endpoint})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSendAdminMessage(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "admin", model.RoleAdmin, nil)
	env.user(t, "u1", model.RoleUser, prefs(false, false, false))
	env.user(t, "u2", model.RoleSeller, nil)
	svc := NewBroadcastService(env.engine)
	ctx := context.Background()

	sent, err := svc.SendAdminMessage(ctx, AdminMessageInput{SenderID: "admin", Title: " Sale ", Message: "Weekend sale starts now"})
	require.NoError(t, err)
	assert.Len(t, sent, 2)
	assert.Empty(t, env.inbox(t, "admin"))
	u1 := env.inbox(t, "u1")
	require.Len(t, u1, 1)
	assert.Equal(t, "Sale", u1[0].Title)
	assert.Equal(t, "admin", u1[0].Sender())

	sent, err = svc.SendAdminMessage(ctx, AdminMessageInput{SenderID: "admin", Title: "Hi", Message: "Just you", RecipientIDs: []string{"u2", "ghost"}})
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "u2", sent[0].RecipientID)

	_, err = svc.SendAdminMessage(ctx, AdminMessageInput{SenderID: "admin", Title: "  ", Message: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

type invalidations struct{ ids []string }

func (i *invalidations) Invalidate(_ context.Context, id string) error {
	i.ids = append(i.ids, id)
	return nil
}

func boolPtr(v bool) *bool { return &v }
