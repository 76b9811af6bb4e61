package cart

import "errors"

var (
	// ErrInvalidItem 商品信息或数量非法
	ErrInvalidItem = errors.New("cart: invalid item")
	// ErrOutOfStock 库存上限不足一件
	ErrOutOfStock = errors.New("cart: out of stock")
	// ErrPersistedStateCorrupt 持久化内容结构不合法，整体丢弃
	ErrPersistedStateCorrupt = errors.New("cart: persisted state corrupt")
)
