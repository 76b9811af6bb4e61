package repository

import (
	"context"
	"testing"
	"time"

	"github.com/storefront-next/internal/models"
)

func TestOrderCreateWithItemsAndMarkNotified(t *testing.T) {
	db := openRepositoryTestDB(t, "order_repo")
	repo := NewOrderRepository(db)

	order := &models.Order{
		OrderNo:        "SF0001",
		SessionID:      "s-1",
		Status:         "placed",
		FullName:       "Ada Lovelace",
		Email:          "ada@example.com",
		SubtotalAmount: models.MustParseMoney("20.00"),
		TotalAmount:    models.MustParseMoney("20.00"),
	}
	items := []models.OrderItem{
		{LineID: "1", ProductID: "1", Title: "A", UnitPrice: models.MustParseMoney("10.00"), Quantity: 2, TotalPrice: models.MustParseMoney("20.00")},
	}
	if err := repo.Create(context.Background(), order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.ID == 0 {
		t.Fatalf("order id not assigned")
	}

	got, err := repo.GetByOrderNo("SF0001")
	if err != nil || got == nil {
		t.Fatalf("get by order no failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("items want 1 x2 got %+v", got.Items)
	}
	if got.NotifiedAt != nil {
		t.Fatalf("notified_at want nil")
	}

	first := time.Now().UTC().Truncate(time.Second)
	if err := repo.MarkNotified(order.ID, first); err != nil {
		t.Fatalf("mark notified failed: %v", err)
	}
	if err := repo.MarkNotified(order.ID, first.Add(time.Hour)); err != nil {
		t.Fatalf("mark notified again failed: %v", err)
	}
	got, err = repo.GetByID(order.ID)
	if err != nil || got == nil || got.NotifiedAt == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !got.NotifiedAt.Equal(first) {
		t.Fatalf("notified_at want %v got %v", first, got.NotifiedAt)
	}
}

func TestPromoRuleGetByCode(t *testing.T) {
	db := openRepositoryTestDB(t, "promo_repo")
	repo := NewPromoRuleRepository(db)

	if err := repo.Create(&models.PromoRule{Code: "SAVE40", Kind: "valid", Amount: models.MustParseMoney("40"), IsActive: true}); err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	rule, err := repo.GetByCode("SAVE40")
	if err != nil || rule == nil {
		t.Fatalf("get rule failed: %v", err)
	}
	if rule.Kind != "valid" {
		t.Fatalf("kind want valid got %s", rule.Kind)
	}
	missing, err := repo.GetByCode("NOPE")
	if err != nil || missing != nil {
		t.Fatalf("missing rule want nil got %+v err=%v", missing, err)
	}
}
