package checkout

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"
)

// PersonalInfo 结账个人信息表单
type PersonalInfo struct {
	FullName    string `json:"full_name" validate:"required,max=128"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"required,max=32"`
	AddressLine string `json:"address_line" validate:"required,max=255"`
	City        string `json:"city" validate:"required,max=128"`
	PostalCode  string `json:"postal_code" validate:"required,max=32"`
	Country     string `json:"country" validate:"required,max=64"`
}

func (p PersonalInfo) normalized() PersonalInfo {
	return PersonalInfo{
		FullName:    strings.TrimSpace(p.FullName),
		Email:       strings.TrimSpace(p.Email),
		Phone:       strings.TrimSpace(p.Phone),
		AddressLine: strings.TrimSpace(p.AddressLine),
		City:        strings.TrimSpace(p.City),
		PostalCode:  strings.TrimSpace(p.PostalCode),
		Country:     strings.TrimSpace(p.Country),
	}
}

// Order 提交时刻的订单快照
type Order struct {
	SessionID   string          `json:"session_id,omitempty"`
	Customer    PersonalInfo    `json:"customer"`
	Items       []cart.LineItem `json:"items"`
	ItemCount   int             `json:"item_count"`
	Subtotal    models.Money    `json:"subtotal"`
	ShippingFee models.Money    `json:"shipping_fee"`
	Discount    models.Money    `json:"discount"`
	GrandTotal  models.Money    `json:"grand_total"`
	PromoCode   string          `json:"promo_code,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	// CartVersion 快照对应的提交版本
	CartVersion uint64 `json:"cart_version"`
}

// Receipt 提交成功回执
type Receipt struct {
	OrderID    uint         `json:"order_id,omitempty"`
	OrderNo    string       `json:"order_no"`
	GrandTotal models.Money `json:"grand_total"`
	PlacedAt   time.Time    `json:"placed_at"`
}

func buildOrder(sessionID string, info PersonalInfo, snap cart.Snapshot, promoCode string, now time.Time) Order {
	return Order{
		SessionID:   sessionID,
		Customer:    info,
		Items:       snap.Items,
		ItemCount:   snap.ItemCount,
		Subtotal:    snap.Subtotal,
		ShippingFee: snap.ShippingFee,
		Discount:    snap.Discount,
		GrandTotal:  snap.GrandTotal,
		PromoCode:   promoCode,
		SubmittedAt: now,
		CartVersion: snap.Version,
	}
}
