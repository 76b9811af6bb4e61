package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/persistence"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func setupManagerTest(t *testing.T, backend persistence.Backend, clock *fakeClock) *Manager {
	t.Helper()
	m := NewManager(Options{
		Namespace:   "storefront:cart_items",
		ShippingFee: models.MustParseMoney("5"),
		IdleTTL:     30 * time.Minute,
	}, Deps{
		Backend: backend,
		Logger:  zap.NewNop().Sugar(),
		Now:     clock.Now,
	})
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func TestGetBuildsOneSessionPerID(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := setupManagerTest(t, persistence.NewMemoryBackend(), clock)

	a := m.Get(context.Background(), "a")
	if a != m.Get(context.Background(), "a") {
		t.Fatalf("same id should return the same session")
	}
	b := m.Get(context.Background(), "b")
	if a.Store == b.Store {
		t.Fatalf("sessions must not share a store")
	}
	if a.Store.ShippingFee().String() != "5.00" {
		t.Fatalf("shipping fee want 5.00 got %s", a.Store.ShippingFee().String())
	}
	if m.Len() != 2 {
		t.Fatalf("len want 2 got %d", m.Len())
	}
}

func TestSweepEvictsIdleAndReloadsFromStorage(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	backend := persistence.NewMemoryBackend()
	m := setupManagerTest(t, backend, clock)

	sess := m.Get(context.Background(), "visitor")
	if err := sess.Store.AddItem(cart.ProductSnapshot{ID: "p1", UnitPrice: models.MustParseMoney("3")}, 2, nil, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	m.Get(context.Background(), "active")

	clock.now = clock.now.Add(20 * time.Minute)
	m.Get(context.Background(), "active")
	clock.now = clock.now.Add(15 * time.Minute)

	if evicted := m.Sweep(clock.now); evicted != 1 {
		t.Fatalf("evicted want 1 got %d", evicted)
	}
	if m.Len() != 1 {
		t.Fatalf("len want 1 got %d", m.Len())
	}

	data, ok, err := backend.Get(context.Background(), "storefront:cart_items:visitor")
	if err != nil || !ok {
		t.Fatalf("evicted session should be flushed, ok=%v err=%v", ok, err)
	}
	items, err := cart.DecodeItems(data)
	if err != nil || len(items) != 1 {
		t.Fatalf("unexpected persisted items %+v err=%v", items, err)
	}

	reloaded := m.Get(context.Background(), "visitor")
	if reloaded == sess {
		t.Fatalf("evicted session should be rebuilt")
	}
	if reloaded.Store.ItemCount() != 2 {
		t.Fatalf("reloaded item count want 2 got %d", reloaded.Store.ItemCount())
	}
}

func TestSweepKeepsSessionWithAttachedStream(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := setupManagerTest(t, persistence.NewMemoryBackend(), clock)

	sess := m.Get(context.Background(), "visitor")
	detach := sess.Attach()
	var seen []int
	unsubscribe := sess.Store.Subscribe(func(snap cart.Snapshot) {
		seen = append(seen, snap.ItemCount)
	})
	defer unsubscribe()

	clock.now = clock.now.Add(31 * time.Minute)
	if evicted := m.Sweep(clock.now); evicted != 0 {
		t.Fatalf("session with open stream must not be evicted, evicted=%d", evicted)
	}
	again := m.Get(context.Background(), "visitor")
	if again != sess {
		t.Fatalf("attached session should be reused")
	}
	if err := again.Store.AddItem(cart.ProductSnapshot{ID: "p1", UnitPrice: models.MustParseMoney("1")}, 2, nil, nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(seen) != 2 || seen[1] != 2 {
		t.Fatalf("subscriber want [0 2] got %v", seen)
	}

	detach()
	detach()
	if sess.Streams() != 0 {
		t.Fatalf("streams want 0 got %d", sess.Streams())
	}
	clock.now = clock.now.Add(29 * time.Minute)
	if evicted := m.Sweep(clock.now); evicted != 0 {
		t.Fatalf("detach should refresh last seen, evicted=%d", evicted)
	}
	clock.now = clock.now.Add(2 * time.Minute)
	if evicted := m.Sweep(clock.now); evicted != 1 {
		t.Fatalf("evicted want 1 got %d", evicted)
	}
	select {
	case <-sess.Store.Closed():
	default:
		t.Fatalf("evicted store should signal closed")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	m := NewManager(Options{IdleTTL: time.Minute, SweepInterval: 5 * time.Millisecond}, Deps{Logger: zap.NewNop().Sugar(), Now: clock.Now})
	m.Get(context.Background(), "x")
	clock.now = clock.now.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	deadline := time.Now().Add(time.Second)
	for m.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("run loop did not sweep")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", 1)
	id := NewSessionID()
	signed, expiresAt, err := tokens.Issue(id)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry should be in the future")
	}
	got, err := tokens.Parse(signed)
	if err != nil || got != id {
		t.Fatalf("parse want %s got %s err=%v", id, got, err)
	}

	other := NewTokens("other-secret", 1)
	if _, err := other.Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret want ErrInvalidToken got %v", err)
	}
	if _, err := tokens.Parse("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage want ErrInvalidToken got %v", err)
	}
	badID, _, _ := tokens.Issue("not-a-uuid")
	if _, err := tokens.Parse(badID); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("non-uuid sid want ErrInvalidToken got %v", err)
	}
}
