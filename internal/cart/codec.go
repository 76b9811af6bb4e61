package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// persistedItem 数量字段保留原始 JSON，只接受数字字面量
type persistedItem struct {
	Product           *ProductSnapshot `json:"product"`
	Quantity          json.RawMessage  `json:"quantity"`
	StockLimit        json.RawMessage  `json:"stockLimit,omitempty"`
	SelectedVariation Variation        `json:"selectedVariation,omitempty"`
}

// EncodeItems 序列化条目列表（持久化格式）
func EncodeItems(items []LineItem) ([]byte, error) {
	out := make([]persistedItem, 0, len(items))
	for _, item := range items {
		product := item.Product
		entry := persistedItem{
			Product:           &product,
			Quantity:          json.RawMessage(strconv.Itoa(item.Quantity)),
			SelectedVariation: item.SelectedVariation,
		}
		if item.StockLimit != nil {
			entry.StockLimit = json.RawMessage(strconv.Itoa(*item.StockLimit))
		}
		out = append(out, entry)
	}
	return json.Marshal(out)
}

// DecodeItems 解析持久化内容；任一条目不合法时整体返回 ErrPersistedStateCorrupt
func DecodeItems(data []byte) ([]LineItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: not an array", ErrPersistedStateCorrupt)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistedStateCorrupt, err)
	}

	items := make([]LineItem, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for idx, raw := range raws {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrPersistedStateCorrupt, idx, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: item %d: duplicate id %s", ErrPersistedStateCorrupt, idx, item.ID)
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(raw json.RawMessage) (LineItem, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return LineItem{}, fmt.Errorf("not an object")
	}
	var entry persistedItem
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return LineItem{}, err
	}
	if entry.Product == nil {
		return LineItem{}, fmt.Errorf("product missing")
	}
	quantity, err := positiveInt(entry.Quantity)
	if err != nil {
		return LineItem{}, fmt.Errorf("quantity: %w", err)
	}
	item := LineItem{
		Product:           *entry.Product,
		Quantity:          clampQuantity(quantity, nil),
		SelectedVariation: entry.SelectedVariation,
	}
	if len(entry.StockLimit) > 0 && !bytes.Equal(bytes.TrimSpace(entry.StockLimit), []byte("null")) {
		limit, err := positiveInt(entry.StockLimit)
		if err != nil {
			return LineItem{}, fmt.Errorf("stockLimit: %w", err)
		}
		item.StockLimit = &limit
		if item.Quantity > limit {
			item.Quantity = limit
		}
	}
	item.ID = IdentityKey(item.Product.ID, item.SelectedVariation)
	return item, nil
}

func positiveInt(raw json.RawMessage) (int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, fmt.Errorf("missing")
	}
	if c := trimmed[0]; c != '-' && (c < '0' || c > '9') {
		return 0, fmt.Errorf("not a number: %s", trimmed)
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0, fmt.Errorf("not a number: %s", trimmed)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("not an integer: %s", n)
	}
	if v < 1 {
		return 0, fmt.Errorf("must be positive: %d", v)
	}
	return int(v), nil
}
