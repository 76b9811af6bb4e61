package cart

import "github.com/storefront-next/internal/models"

// Snapshot 某次提交后的只读视图，派生值随快照一起计算
type Snapshot struct {
	Version     uint64       `json:"version"`
	Items       []LineItem   `json:"items"`
	Subtotal    models.Money `json:"subtotal"`
	Discount    models.Money `json:"discount"`
	ShippingFee models.Money `json:"shipping_fee"`
	GrandTotal  models.Money `json:"grand_total"`
	ItemCount   int          `json:"item_count"`
	DrawerOpen  bool         `json:"drawer_open"`
}

// Subtotal 计算 Σ 单价 × 数量
func Subtotal(items []LineItem) models.Money {
	total := models.Money{}
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// GrandTotal 计算 max(0, 小计 + 运费 - 优惠)
func GrandTotal(subtotal, shippingFee, discount models.Money) models.Money {
	return subtotal.Add(shippingFee).Sub(discount).NonNegative()
}

// ItemCount 计算 Σ 数量
func ItemCount(items []LineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func buildSnapshot(version uint64, items []LineItem, discount, shippingFee models.Money, drawerOpen bool) Snapshot {
	subtotal := Subtotal(items)
	return Snapshot{
		Version:     version,
		Items:       cloneItems(items),
		Subtotal:    subtotal,
		Discount:    discount,
		ShippingFee: shippingFee,
		GrandTotal:  GrandTotal(subtotal, shippingFee, discount),
		ItemCount:   ItemCount(items),
		DrawerOpen:  drawerOpen,
	}
}
