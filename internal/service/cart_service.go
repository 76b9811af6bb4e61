package service

import (
	"github.com/storefront-next/internal/cart"
)

// AddCartItemInput 加入购物车输入
type AddCartItemInput struct {
	ProductID uint
	Quantity  int
	Variation cart.Variation
}

// CartService 购物车服务：从商品目录取快照后写入会话购物车
type CartService struct {
	products *ProductService
}

// NewCartService 创建购物车服务
func NewCartService(products *ProductService) *CartService {
	return &CartService{products: products}
}

// AddItem 加入商品；库存上限取自商品当前库存
func (s *CartService) AddItem(store *cart.Store, input AddCartItemInput) error {
	if input.Quantity < 1 {
		return ErrInvalidQuantity
	}
	snapshot, limit, err := s.products.Snapshot(input.ProductID)
	if err != nil {
		return err
	}
	return store.AddItem(snapshot, input.Quantity, limit, input.Variation)
}
