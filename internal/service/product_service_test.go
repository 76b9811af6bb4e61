package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewProductService(repository.NewProductRepository(db)), db
}

func TestSnapshotCarriesStockLimit(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	limited := &models.Product{Slug: "mug", Title: "Mug", PriceAmount: models.MustParseMoney("10"), Stock: 4, IsActive: true}
	unlimited := &models.Product{Slug: "ebook", Title: "Ebook", PriceAmount: models.MustParseMoney("3"), IsActive: true}
	for _, p := range []*models.Product{limited, unlimited} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	snap, limit, err := svc.Snapshot(limited.ID)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if snap.ID != fmt.Sprint(limited.ID) || snap.Title != "Mug" || snap.UnitPrice.String() != "10.00" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if limit == nil || *limit != 4 {
		t.Fatalf("limit want 4 got %v", limit)
	}

	_, limit, err = svc.Snapshot(unlimited.ID)
	if err != nil || limit != nil {
		t.Fatalf("unlimited product want nil limit got %v err=%v", limit, err)
	}

	if _, _, err := svc.Snapshot(9999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing want ErrProductNotFound got %v", err)
	}
	if err := db.Model(unlimited).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if _, _, err := svc.Snapshot(unlimited.ID); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("inactive want ErrProductInactive got %v", err)
	}
}

func TestCartServiceAddItemClampsToStock(t *testing.T) {
	svc, db := setupProductServiceTest(t)
	p := &models.Product{Slug: "mug", Title: "Mug", PriceAmount: models.MustParseMoney("10"), Stock: 3, IsActive: true}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	store := cart.NewStore(context.Background(), nil, cart.Options{Logger: zap.NewNop().Sugar()})
	defer store.Close(context.Background())
	carts := NewCartService(svc)

	if err := carts.AddItem(store, AddCartItemInput{ProductID: p.ID, Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := carts.AddItem(store, AddCartItemInput{ProductID: p.ID, Quantity: 5}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if store.ItemCount() != 3 {
		t.Fatalf("item count want 3 got %d", store.ItemCount())
	}
	if err := carts.AddItem(store, AddCartItemInput{ProductID: p.ID, Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("zero quantity want ErrInvalidQuantity got %v", err)
	}
}
