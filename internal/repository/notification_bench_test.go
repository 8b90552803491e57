package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/d60-Lab/storefront/internal/model"
)

func BenchmarkCreateBatch(b *testing.B) {
	repo := NewNotificationRepository(openTestDB(b))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch := make([]*model.Notification, 100)
		for j := range batch {
			batch[j] = &model.Notification{RecipientID: fmt.Sprintf("u%03d", j), Type: model.TypeAdminMessage, Title: "t", Message: "m", Data: []byte(`{}`)}
		}
		if err := repo.CreateBatch(ctx, batch); err != nil {
			b.Fatalf("create batch: %v", err)
		}
	}
}

func BenchmarkListRecent(b *testing.B) {
	repo := NewNotificationRepository(openTestDB(b))
	ctx := context.Background()
	batch := make([]*model.Notification, 2000)
	for i := range batch {
		batch[i] = &model.Notification{RecipientID: fmt.Sprintf("u%02d", i%20), Type: model.TypeOrderStatus, Title: "t", Message: "m", Data: []byte(`{}`)}
	}
	if err := repo.CreateBatch(ctx, batch); err != nil {
		b.Fatalf("seed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := repo.List(ctx, fmt.Sprintf("u%02d", i%20), NotificationFilter{Page: 1, PageSize: 20}); err != nil {
			b.Fatalf("list: %v", err)
		}
	}
}
