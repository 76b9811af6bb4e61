package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/storefront-next/internal/models"
)

// ProductSnapshot 加入购物车时的商品快照，之后商品改价不影响已加入的条目
type ProductSnapshot struct {
	ID        string
	Title     string
	UnitPrice models.Money
	Image     string
	// Extra 其余展示字段，原样保留
	Extra map[string]json.RawMessage
}

// Variation 规格选择，例如 color=red
type Variation map[string]string

// LineItem 购物车条目
type LineItem struct {
	ID                string          `json:"id"`
	Product           ProductSnapshot `json:"product"`
	Quantity          int             `json:"quantity"`
	StockLimit        *int            `json:"stockLimit,omitempty"`
	SelectedVariation Variation       `json:"selectedVariation,omitempty"`
}

// LineTotal 条目小计
func (i LineItem) LineTotal() models.Money {
	return i.Product.UnitPrice.MulInt(i.Quantity)
}

// IdentityKey 由商品 ID 与规格组合出条目标识，形如 id|k=v,k=v；各部分中的分隔符会被转义
func IdentityKey(productID string, variation Variation) string {
	id := url.QueryEscape(strings.TrimSpace(productID))
	if len(variation) == 0 {
		return id
	}
	pairs := make([]string, 0, len(variation))
	for k, v := range variation {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
	}
	sort.Strings(pairs)
	return id + "|" + strings.Join(pairs, ",")
}

// Clone 深拷贝
func (v Variation) Clone() Variation {
	if v == nil {
		return nil
	}
	out := make(Variation, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Clone 深拷贝
func (p ProductSnapshot) Clone() ProductSnapshot {
	out := p
	if p.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, raw := range p.Extra {
			out.Extra[k] = append(json.RawMessage(nil), raw...)
		}
	}
	return out
}

func (i LineItem) clone() LineItem {
	out := i
	out.Product = i.Product.Clone()
	out.SelectedVariation = i.SelectedVariation.Clone()
	if i.StockLimit != nil {
		limit := *i.StockLimit
		out.StockLimit = &limit
	}
	return out
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for idx, item := range items {
		out[idx] = item.clone()
	}
	return out
}

var productCoreKeys = map[string]struct{}{
	"id":        {},
	"title":     {},
	"unitPrice": {},
	"image":     {},
}

// MarshalJSON 输出 {id,title,unitPrice,image,...extra}
func (p ProductSnapshot) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(p.Extra)+4)
	for k, raw := range p.Extra {
		if _, core := productCoreKeys[k]; core {
			continue
		}
		fields[k] = raw
	}
	fields["id"] = p.ID
	fields["title"] = p.Title
	fields["unitPrice"] = p.UnitPrice
	fields["image"] = p.Image
	return json.Marshal(fields)
}

// UnmarshalJSON 要求为对象且 id 非空；id 可以是字符串或数字
func (p *ProductSnapshot) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("product: not an object")
	}
	id, err := decodeProductID(fields["id"])
	if err != nil {
		return err
	}
	out := ProductSnapshot{ID: id}
	if raw, ok := fields["title"]; ok {
		if err := json.Unmarshal(raw, &out.Title); err != nil {
			return fmt.Errorf("product.title: %w", err)
		}
	}
	if raw, ok := fields["unitPrice"]; ok {
		if err := json.Unmarshal(raw, &out.UnitPrice); err != nil {
			return fmt.Errorf("product.unitPrice: %w", err)
		}
	}
	if raw, ok := fields["image"]; ok {
		if err := json.Unmarshal(raw, &out.Image); err != nil {
			return fmt.Errorf("product.image: %w", err)
		}
	}
	for k, raw := range fields {
		if _, core := productCoreKeys[k]; core {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[k] = append(json.RawMessage(nil), raw...)
	}
	*p = out
	return nil
}

func decodeProductID(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", fmt.Errorf("product.id: missing")
	}
	var id string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return "", fmt.Errorf("product.id: %w", err)
		}
	} else {
		var num json.Number
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&num); err != nil {
			return "", fmt.Errorf("product.id: %w", err)
		}
		id = num.String()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("product.id: empty")
	}
	return id, nil
}
