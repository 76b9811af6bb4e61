package promo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func defaultRules(t *testing.T) *StaticRules {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Decode(v)
	if err != nil {
		t.Fatalf("decode config failed: %v", err)
	}
	rules, err := RulesFromConfig(cfg.Promo.Rules)
	if err != nil {
		t.Fatalf("rules from config failed: %v", err)
	}
	return rules
}

func setupEngineTest(t *testing.T, delay time.Duration) (*Engine, *cart.Store) {
	t.Helper()
	store := cart.NewStore(context.Background(), nil, cart.Options{Logger: zap.NewNop().Sugar()})
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	engine := NewEngine(store, defaultRules(t), Options{Delay: delay, Logger: zap.NewNop().Sugar()})
	return engine, store
}

func TestApplyValidCodeThenRejectSecond(t *testing.T) {
	engine, store := setupEngineTest(t, 0)

	status, err := engine.Apply(context.Background(), "  save40 ")
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if status.State != StateApplied || status.Code != "SAVE40" {
		t.Fatalf("status want applied SAVE40 got %+v", status)
	}
	if store.Discount().String() != "40.00" {
		t.Fatalf("discount want 40.00 got %s", store.Discount().String())
	}

	_, err = engine.Apply(context.Background(), "SAVE40")
	if !errors.Is(err, ErrPromoAlreadyApplied) {
		t.Fatalf("second apply want ErrPromoAlreadyApplied got %v", err)
	}
	if ReasonOf(err) != ReasonAlreadyApplied {
		t.Fatalf("reason want already_applied got %s", ReasonOf(err))
	}
	if store.Discount().String() != "40.00" {
		t.Fatalf("discount must stay 40.00 got %s", store.Discount().String())
	}
}

func TestApplyRejections(t *testing.T) {
	cases := []struct {
		code   string
		err    error
		reason Reason
	}{
		{code: "expired", err: ErrPromoExpired, reason: ReasonExpired},
		{code: "INVALID", err: ErrPromoInvalid, reason: ReasonInvalid},
		{code: "HELLO", err: ErrPromoUnrecognized, reason: ReasonUnrecognized},
		{code: "   ", err: ErrPromoInvalid, reason: ReasonInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			engine, store := setupEngineTest(t, 0)
			status, err := engine.Apply(context.Background(), tc.code)
			if !errors.Is(err, tc.err) {
				t.Fatalf("want %v got %v", tc.err, err)
			}
			if ReasonOf(err) != tc.reason {
				t.Fatalf("reason want %s got %s", tc.reason, ReasonOf(err))
			}
			if status.State != StateIdle || status.LastError != tc.reason {
				t.Fatalf("status want idle/%s got %+v", tc.reason, status)
			}
			if !store.Discount().IsZero() {
				t.Fatalf("discount must stay zero")
			}
		})
	}
}

func TestEmptyCodeSkipsDelay(t *testing.T) {
	engine, _ := setupEngineTest(t, time.Second)
	start := time.Now()
	if _, err := engine.Apply(context.Background(), ""); !errors.Is(err, ErrPromoInvalid) {
		t.Fatalf("want ErrPromoInvalid got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("empty code should not wait, took %v", elapsed)
	}
}

func TestConcurrentApplyRejectedWhileInFlight(t *testing.T) {
	engine, store := setupEngineTest(t, 100*time.Millisecond)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = engine.Apply(context.Background(), "SAVE40")
	}()

	deadline := time.Now().Add(time.Second)
	for engine.Status().State != StateValidating {
		if time.Now().After(deadline) {
			t.Fatalf("engine never entered validating")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := engine.Apply(context.Background(), "SAVE40"); !errors.Is(err, ErrPromoInFlight) {
		t.Fatalf("concurrent apply want ErrPromoInFlight got %v", err)
	}

	if err := store.AddItem(cart.ProductSnapshot{ID: "p1", UnitPrice: models.MustParseMoney("10")}, 1, nil, nil); err != nil {
		t.Fatalf("store should stay usable during validation: %v", err)
	}

	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first apply failed: %v", firstErr)
	}
	if store.GrandTotal().String() != "0.00" {
		t.Fatalf("grand total want 0.00 got %s", store.GrandTotal().String())
	}
}

func TestApplyStatusMatchesReturnedError(t *testing.T) {
	engine, _ := setupEngineTest(t, time.Millisecond)
	codes := []string{"SAVE40", "EXPIRED", "HELLO", "INVALID"}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				engine.Clear()
				return
			}
			status, err := engine.Apply(context.Background(), codes[i%len(codes)])
			switch {
			case err == nil:
				if status.State != StateApplied || status.Code != "SAVE40" {
					t.Errorf("success want applied SAVE40 got %+v", status)
				}
			case errors.Is(err, ErrPromoInFlight):
				if status.State != StateValidating {
					t.Errorf("in flight want validating got %+v", status)
				}
			case errors.Is(err, ErrPromoAlreadyApplied):
			default:
				if status.State != StateIdle || status.LastError != ReasonOf(err) {
					t.Errorf("rejection %v want idle/%s got %+v", err, ReasonOf(err), status)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestClearReturnsToIdle(t *testing.T) {
	engine, store := setupEngineTest(t, 0)
	if _, err := engine.Apply(context.Background(), "SAVE40"); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	engine.Clear()
	if engine.Status().State != StateIdle {
		t.Fatalf("state want idle got %s", engine.Status().State)
	}
	if !store.Discount().IsZero() {
		t.Fatalf("discount want zero got %s", store.Discount().String())
	}
	if _, err := engine.Apply(context.Background(), "SAVE40"); err != nil {
		t.Fatalf("apply after clear failed: %v", err)
	}
}

func TestExternalDiscountBlocksApply(t *testing.T) {
	engine, store := setupEngineTest(t, 0)
	store.SetDiscount(models.MustParseMoney("5"))
	if _, err := engine.Apply(context.Background(), "SAVE40"); !errors.Is(err, ErrPromoAlreadyApplied) {
		t.Fatalf("want ErrPromoAlreadyApplied got %v", err)
	}
}

type brokenSource struct{}

func (brokenSource) Lookup(context.Context, string) (*Rule, error) {
	return nil, errors.New("db down")
}

func TestLookupFailureIsUnavailable(t *testing.T) {
	store := cart.NewStore(context.Background(), nil, cart.Options{Logger: zap.NewNop().Sugar()})
	defer store.Close(context.Background())
	engine := NewEngine(store, brokenSource{}, Options{Logger: zap.NewNop().Sugar()})

	_, err := engine.Apply(context.Background(), "SAVE40")
	if !errors.Is(err, ErrPromoUnavailable) || ReasonOf(err) != ReasonUnavailable {
		t.Fatalf("want ErrPromoUnavailable got %v", err)
	}
	if engine.Status().State != StateIdle {
		t.Fatalf("state want idle")
	}
}

func TestEndsAtInPastIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	rules := NewStaticRules(Rule{Code: "OLD", Kind: KindValid, Amount: models.MustParseMoney("5"), EndsAt: &past})
	store := cart.NewStore(context.Background(), nil, cart.Options{Logger: zap.NewNop().Sugar()})
	defer store.Close(context.Background())
	engine := NewEngine(store, rules, Options{Now: func() time.Time { return now }, Logger: zap.NewNop().Sugar()})

	if _, err := engine.Apply(context.Background(), "old"); !errors.Is(err, ErrPromoExpired) {
		t.Fatalf("want ErrPromoExpired got %v", err)
	}
}

func TestReasonOfWrapped(t *testing.T) {
	if ReasonOf(nil) != ReasonNone {
		t.Fatalf("nil want none")
	}
	if ReasonOf(errors.New("other")) != ReasonNone {
		t.Fatalf("foreign error want none")
	}
	wrapped := errors.Join(errors.New("ctx"), ErrPromoExpired)
	if ReasonOf(wrapped) != ReasonExpired {
		t.Fatalf("wrapped want expired")
	}
}
