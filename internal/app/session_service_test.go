package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/persistence"
	"github.com/storefront-next/internal/session"

	"go.uber.org/zap"
)

func TestRunnerFlushesSessionsOnShutdown(t *testing.T) {
	backend := persistence.NewMemoryBackend()
	manager := session.NewManager(session.Options{
		Namespace:     "storefront:cart_items",
		SweepInterval: time.Hour,
	}, session.Deps{Backend: backend, Logger: zap.NewNop().Sugar()})

	sess := manager.Get(context.Background(), "visitor-1")
	product := cart.ProductSnapshot{ID: "p1", Title: "Mug", UnitPrice: models.MustParseMoney("9.90")}
	if err := sess.Store.AddItem(product, 2, nil, nil); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	runner := NewRunner(NewSessionService(manager))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := runner.Run(ctx, time.Second, zap.NewNop().Sugar()); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("run failed: %v", err)
	}

	if manager.Len() != 0 {
		t.Fatalf("sessions want 0 after stop got %d", manager.Len())
	}
	data, err := persistence.Bind(backend, persistence.JoinKey("storefront:cart_items", "visitor-1")).Load(context.Background())
	if err != nil || data == nil {
		t.Fatalf("persisted cart want data got %q err=%v", string(data), err)
	}
	items, err := cart.DecodeItems(data)
	if err != nil {
		t.Fatalf("decode persisted cart failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("persisted items want 1x2 got %+v", items)
	}
}
