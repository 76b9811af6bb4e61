package promo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func setupGormRulesTest(t *testing.T) (*GormRules, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promo_rules_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PromoRule{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewGormRules(repository.NewPromoRuleRepository(db)), db
}

func TestRulesFromConfigRejectsUnknownKind(t *testing.T) {
	_, err := RulesFromConfig([]config.PromoRuleConfig{{Code: "X", Kind: "bogus"}})
	if err == nil {
		t.Fatalf("unknown kind should fail")
	}
	_, err = RulesFromConfig([]config.PromoRuleConfig{{Code: "X", Kind: "valid", Amount: "abc"}})
	if err == nil {
		t.Fatalf("bad amount should fail")
	}
}

func TestGormRulesLookupAndCache(t *testing.T) {
	rules, db := setupGormRulesTest(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.UseClient(client, "sf")
	t.Cleanup(func() {
		cache.UseClient(nil, "")
		_ = client.Close()
	})

	rows := []models.PromoRule{
		{Code: "SPRING", Kind: "valid", Amount: models.MustParseMoney("12.5"), IsActive: true},
		{Code: "PAUSED", Kind: "valid", Amount: models.MustParseMoney("3"), IsActive: true},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("create rule failed: %v", err)
		}
	}
	if err := db.Model(&models.PromoRule{}).Where("code = ?", "PAUSED").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	rule, err := rules.Lookup(context.Background(), "spring")
	if err != nil || rule == nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if rule.Kind != KindValid || rule.Amount.String() != "12.50" {
		t.Fatalf("unexpected rule %+v", rule)
	}
	if !mr.Exists("sf:promo_rule:SPRING") {
		t.Fatalf("rule should be cached, keys=%v", mr.Keys())
	}

	paused, err := rules.Lookup(context.Background(), "PAUSED")
	if err != nil || paused == nil || !paused.Inactive {
		t.Fatalf("paused rule want inactive got %+v err=%v", paused, err)
	}

	missing, err := rules.Lookup(context.Background(), "NOPE")
	if err != nil || missing != nil {
		t.Fatalf("missing want nil got %+v err=%v", missing, err)
	}
}

func TestGormRulesSaveInvalidatesCache(t *testing.T) {
	rules, _ := setupGormRulesTest(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.UseClient(client, "sf")
	t.Cleanup(func() {
		cache.UseClient(nil, "")
		_ = client.Close()
	})

	ctx := context.Background()
	if err := rules.Save(ctx, &models.PromoRule{Code: " summer ", Kind: "valid", Amount: models.MustParseMoney("5"), IsActive: true}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	first, err := rules.Lookup(ctx, "SUMMER")
	if err != nil || first == nil || first.Amount.String() != "5.00" {
		t.Fatalf("lookup want 5.00 got %+v err=%v", first, err)
	}
	if !mr.Exists("sf:promo_rule:SUMMER") {
		t.Fatalf("rule should be cached, keys=%v", mr.Keys())
	}

	if err := rules.Save(ctx, &models.PromoRule{Code: "SUMMER", Kind: "expired", Amount: models.MustParseMoney("8"), IsActive: true}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if mr.Exists("sf:promo_rule:SUMMER") {
		t.Fatalf("save should drop cached rule")
	}
	second, err := rules.Lookup(ctx, "summer")
	if err != nil || second == nil || second.Kind != KindExpired || second.Amount.String() != "8.00" {
		t.Fatalf("lookup after save want expired 8.00 got %+v err=%v", second, err)
	}

	if err := rules.Save(ctx, &models.PromoRule{Code: "  "}); err == nil {
		t.Fatalf("empty code should fail")
	}
}

func TestChainRulesFirstHitWins(t *testing.T) {
	gormRules, db := setupGormRulesTest(t)
	if err := db.Create(&models.PromoRule{Code: "SAVE40", Kind: "expired", IsActive: true}).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Create(&models.PromoRule{Code: "VIP", Kind: "valid", Amount: models.MustParseMoney("7"), IsActive: true}).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}
	chain := ChainRules{gormRules, defaultRules(t)}

	rule, err := chain.Lookup(context.Background(), "SAVE40")
	if err != nil || rule == nil || rule.Kind != KindExpired {
		t.Fatalf("database rule should win, got %+v err=%v", rule, err)
	}
	rule, err = chain.Lookup(context.Background(), "INVALID")
	if err != nil || rule == nil || rule.Kind != KindInvalid {
		t.Fatalf("static fallback want invalid got %+v err=%v", rule, err)
	}
	rule, err = chain.Lookup(context.Background(), "VIP")
	if err != nil || rule == nil || rule.Amount.String() != "7.00" {
		t.Fatalf("vip want 7.00 got %+v err=%v", rule, err)
	}
}
