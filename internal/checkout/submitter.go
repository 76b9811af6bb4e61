package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// Submitter 订单提交端
type Submitter interface {
	Submit(ctx context.Context, order Order) (Receipt, error)
}

// ErrMockRejected 模拟提交失败
var ErrMockRejected = errors.New("mock submitter rejected order")

// MockSubmitter 模拟提交：等待固定延迟，可强制失败
type MockSubmitter struct {
	Latency time.Duration
	Fail    bool
}

// Submit 模拟提交
func (m *MockSubmitter) Submit(ctx context.Context, order Order) (Receipt, error) {
	if m.Latency > 0 {
		timer := time.NewTimer(m.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}
	if m.Fail {
		return Receipt{}, ErrMockRejected
	}
	return Receipt{
		OrderNo:    generateOrderNo(),
		GrandTotal: order.GrandTotal,
		PlacedAt:   time.Now(),
	}, nil
}

// GormSubmitter 写入 orders 与 order_items
type GormSubmitter struct {
	repo repository.OrderRepository
}

// NewGormSubmitter 创建数据库提交端
func NewGormSubmitter(repo repository.OrderRepository) *GormSubmitter {
	return &GormSubmitter{repo: repo}
}

// Submit 持久化订单
func (g *GormSubmitter) Submit(ctx context.Context, order Order) (Receipt, error) {
	row := &models.Order{
		OrderNo:        generateOrderNo(),
		SessionID:      order.SessionID,
		Status:         constants.OrderStatusPlaced,
		FullName:       order.Customer.FullName,
		Email:          order.Customer.Email,
		Phone:          order.Customer.Phone,
		AddressLine:    order.Customer.AddressLine,
		City:           order.Customer.City,
		PostalCode:     order.Customer.PostalCode,
		Country:        order.Customer.Country,
		PromoCode:      order.PromoCode,
		SubtotalAmount: order.Subtotal,
		ShippingAmount: order.ShippingFee,
		DiscountAmount: order.Discount,
		TotalAmount:    order.GrandTotal,
	}
	items := make([]models.OrderItem, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, models.OrderItem{
			LineID:     line.ID,
			ProductID:  line.Product.ID,
			Title:      line.Product.Title,
			Image:      line.Product.Image,
			Variation:  variationJSON(line.SelectedVariation),
			UnitPrice:  line.Product.UnitPrice,
			Quantity:   line.Quantity,
			TotalPrice: line.LineTotal(),
		})
	}
	if err := g.repo.Create(ctx, row, items); err != nil {
		return Receipt{}, fmt.Errorf("persist order: %w", err)
	}
	return Receipt{
		OrderID:    row.ID,
		OrderNo:    row.OrderNo,
		GrandTotal: row.TotalAmount,
		PlacedAt:   row.CreatedAt,
	}, nil
}

func variationJSON(variation map[string]string) models.JSON {
	if len(variation) == 0 {
		return nil
	}
	out := make(models.JSON, len(variation))
	for k, v := range variation {
		out[k] = v
	}
	return out
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s%s%s", constants.OrderNoPrefix, now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}

