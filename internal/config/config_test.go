package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	SetDefaults(v)
	if yaml != "" {
		if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
			t.Fatalf("read config failed: %v", err)
		}
	}
	return v
}

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode(newTestViper(t, ""))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Cart.Persistence.Namespace != "storefront:cart_items" {
		t.Fatalf("unexpected namespace: %s", cfg.Cart.Persistence.Namespace)
	}
	if cfg.Promo.Source != "static" {
		t.Fatalf("unexpected promo source: %s", cfg.Promo.Source)
	}
	if len(cfg.Promo.Rules) != 3 {
		t.Fatalf("expected 3 default promo rules, got %d", len(cfg.Promo.Rules))
	}
	found := false
	for _, rule := range cfg.Promo.Rules {
		if rule.Code == "SAVE40" {
			found = true
			if rule.Kind != "valid" || rule.Amount != "40" {
				t.Fatalf("unexpected SAVE40 rule: %+v", rule)
			}
		}
	}
	if !found {
		t.Fatalf("SAVE40 default rule missing")
	}
}

func TestDecodeOverrides(t *testing.T) {
	cfg, err := Decode(newTestViper(t, `
cart:
  shipping_fee: "12.50"
  persistence:
    driver: redis
promo:
  validation_delay_ms: 5
  rules:
    - code: WELCOME
      kind: valid
      amount: "5"
`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.Cart.ShippingFee != "12.50" {
		t.Fatalf("unexpected shipping fee: %s", cfg.Cart.ShippingFee)
	}
	if cfg.Cart.Persistence.Driver != "redis" {
		t.Fatalf("unexpected driver: %s", cfg.Cart.Persistence.Driver)
	}
	if cfg.Cart.Persistence.Namespace != "storefront:cart_items" {
		t.Fatalf("namespace default should survive partial override, got %s", cfg.Cart.Persistence.Namespace)
	}
	if cfg.Promo.ValidationDelayMS != 5 {
		t.Fatalf("unexpected delay: %d", cfg.Promo.ValidationDelayMS)
	}
	if len(cfg.Promo.Rules) != 1 || cfg.Promo.Rules[0].Code != "WELCOME" {
		t.Fatalf("rules override failed: %+v", cfg.Promo.Rules)
	}
}
