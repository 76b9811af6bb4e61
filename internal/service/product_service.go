package service

import (
	"strconv"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(search string, page, pageSize int) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		OnlyActive: true,
		Search:     search,
	})
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Snapshot 构造加入购物车所需的商品快照与库存上限（库存为 0 表示不限）
func (s *ProductService) Snapshot(productID uint) (cart.ProductSnapshot, *int, error) {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return cart.ProductSnapshot{}, nil, err
	}
	if product == nil {
		return cart.ProductSnapshot{}, nil, ErrProductNotFound
	}
	if !product.IsActive {
		return cart.ProductSnapshot{}, nil, ErrProductInactive
	}
	return ToSnapshot(product), StockLimit(product), nil
}

// ToSnapshot 商品转购物车快照
func ToSnapshot(product *models.Product) cart.ProductSnapshot {
	return cart.ProductSnapshot{
		ID:        strconv.FormatUint(uint64(product.ID), 10),
		Title:     product.Title,
		UnitPrice: product.PriceAmount,
		Image:     product.Image,
	}
}

// StockLimit 商品库存上限
func StockLimit(product *models.Product) *int {
	if product == nil || product.Stock <= 0 {
		return nil
	}
	limit := product.Stock
	return &limit
}
