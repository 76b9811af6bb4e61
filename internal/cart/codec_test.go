package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/persistence"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var moneyComparer = cmp.Comparer(func(a, b models.Money) bool { return a.Equal(b) })

func TestPersistRoundTripKeepsOrderAndContents(t *testing.T) {
	backend := persistence.NewMemoryBackend()
	adapter := persistence.Bind(backend, testCartKey)
	store := setupStoreTest(t, adapter)

	withExtra := product("p3", "7.25")
	withExtra.Extra = map[string]json.RawMessage{"brand": json.RawMessage(`"acme"`)}
	_ = store.AddItem(product("p2", "3.10"), 2, nil, nil)
	_ = store.AddItem(product("p1", "10"), 1, intPtr(5), Variation{"color": "red", "size": "m"})
	_ = store.AddItem(withExtra, 4, nil, nil)
	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	reloaded := setupStoreTest(t, adapter)
	if diff := cmp.Diff(store.Items(), reloaded.Items(), moneyComparer); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeAcceptsNumericFields(t *testing.T) {
	raw := `[{"product":{"id":42,"title":"Mug","unitPrice":12.5,"image":"/m.png","stock":9},"quantity":3,"stockLimit":9,"selectedVariation":{"color":"white"}}]`
	items, err := DecodeItems([]byte(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []LineItem{{
		ID: "42|color=white",
		Product: ProductSnapshot{
			ID:        "42",
			Title:     "Mug",
			UnitPrice: models.MustParseMoney("12.50"),
			Image:     "/m.png",
			Extra:     map[string]json.RawMessage{"stock": json.RawMessage(`9`)},
		},
		Quantity:          3,
		StockLimit:        intPtr(9),
		SelectedVariation: Variation{"color": "white"},
	}}
	if diff := cmp.Diff(want, items, moneyComparer); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsCorruptPayloads(t *testing.T) {
	cases := map[string]string{
		"not_json":         `{{{`,
		"object":           `{"product":{"id":"p1"},"quantity":1}`,
		"string":           `"[]"`,
		"entry_not_object": `[1]`,
		"missing_product":  `[{"quantity":1}]`,
		"null_product":     `[{"product":null,"quantity":1}]`,
		"product_string":   `[{"product":"p1","quantity":1}]`,
		"missing_id":       `[{"product":{"title":"x"},"quantity":1}]`,
		"empty_id":         `[{"product":{"id":"  "},"quantity":1}]`,
		"missing_quantity": `[{"product":{"id":"p1"}}]`,
		"zero_quantity":    `[{"product":{"id":"p1"},"quantity":0}]`,
		"float_quantity":   `[{"product":{"id":"p1"},"quantity":1.5}]`,
		"string_quantity":  `[{"product":{"id":"p1"},"quantity":"2"}]`,
		"bool_quantity":    `[{"product":{"id":"p1"},"quantity":true}]`,
		"string_limit":     `[{"product":{"id":"p1"},"quantity":1,"stockLimit":"3"}]`,
		"bad_stock_limit":  `[{"product":{"id":"p1"},"quantity":1,"stockLimit":-2}]`,
		"duplicate":        `[{"product":{"id":"p1"},"quantity":1},{"product":{"id":"p1"},"quantity":2}]`,
		"partially_valid":  `[{"product":{"id":"p1"},"quantity":1},{"quantity":2}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			items, err := DecodeItems([]byte(raw))
			if !errors.Is(err, ErrPersistedStateCorrupt) {
				t.Fatalf("want ErrPersistedStateCorrupt got %v", err)
			}
			if items != nil {
				t.Fatalf("corrupt payload must not yield items, got %+v", items)
			}
		})
	}
}

func TestDecodeClampsQuantityToStoredLimit(t *testing.T) {
	items, err := DecodeItems([]byte(`[{"product":{"id":"p1"},"quantity":8,"stockLimit":3}]`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if items[0].Quantity != 3 {
		t.Fatalf("quantity want 3 got %d", items[0].Quantity)
	}
}

func TestDecodeTreatsNullStockLimitAsUnlimited(t *testing.T) {
	items, err := DecodeItems([]byte(`[{"product":{"id":"p1"},"quantity":5000000,"stockLimit":null}]`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if items[0].StockLimit != nil {
		t.Fatalf("stock limit want nil got %v", *items[0].StockLimit)
	}
	if items[0].Quantity != MaxLineQuantity {
		t.Fatalf("quantity want %d got %d", MaxLineQuantity, items[0].Quantity)
	}
}

func TestCorruptPersistedStateStartsEmptyAndLogs(t *testing.T) {
	backend := persistence.NewMemoryBackend()
	adapter := persistence.Bind(backend, testCartKey)
	if err := adapter.Save(context.Background(), []byte(`[{"product":{"id":"p1"},"quantity":1},{"product":{}}]`)); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	store := NewStore(context.Background(), adapter, Options{Logger: zap.New(core).Sugar()})
	defer store.Close(context.Background())

	if len(store.Items()) != 0 {
		t.Fatalf("corrupt state must load as empty cart, got %+v", store.Items())
	}
	if logs.FilterMessage("cart_persisted_state_corrupt").Len() != 1 {
		t.Fatalf("corrupt state should be logged once, got %v", logs.All())
	}

	_ = store.AddItem(product("p9", "1"), 1, nil, nil)
	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	items, err := DecodeItems(mustLoad(t, adapter))
	if err != nil || len(items) != 1 || items[0].ID != "p9" {
		t.Fatalf("next write should replace corrupt state, got %+v err=%v", items, err)
	}
}

type failingLoadAdapter struct{}

func (failingLoadAdapter) Load(context.Context) ([]byte, error) {
	return nil, errors.New("storage unavailable")
}
func (failingLoadAdapter) Save(context.Context, []byte) error { return nil }
func (failingLoadAdapter) Key() string                        { return testCartKey }

func TestLoadFailureStartsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := NewStore(context.Background(), failingLoadAdapter{}, Options{Logger: zap.New(core).Sugar()})
	defer store.Close(context.Background())
	if len(store.Items()) != 0 {
		t.Fatalf("want empty cart")
	}
	if logs.FilterMessage("cart_persisted_state_load_failed").Len() != 1 {
		t.Fatalf("load failure should be logged")
	}
}

func mustLoad(t *testing.T, adapter persistence.Adapter) []byte {
	t.Helper()
	data, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return data
}
