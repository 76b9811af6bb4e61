package public

import (
	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加入购物车请求
type CartItemRequest struct {
	ProductID uint              `json:"product_id" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required,min=1,max=1000000"`
	Variation map[string]string `json:"variation"`
}

// CartQuantityRequest 修改数量请求（0 表示移除）
type CartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartDrawerRequest 抽屉开关请求；open 为空时切换
type CartDrawerRequest struct {
	Open *bool `json:"open"`
}

// GetCart 获取购物车快照
func (h *Handler) GetCart(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	response.Success(c, sess.Store.Snapshot())
}

// AddCartItem 按商品目录加入购物车（库存作为数量上限）
func (h *Handler) AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	err := h.CartService.AddItem(sess.Store, service.AddCartItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Variation: cart.Variation(req.Variation),
	})
	if err != nil {
		respondCartAddError(c, err)
		return
	}
	response.Success(c, sess.Store.Snapshot())
}

// UpdateCartItem 修改条目数量；条目不存在时静默忽略
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	sess.Store.UpdateItemQuantity(c.Param("item_id"), *req.Quantity)
	response.Success(c, sess.Store.Snapshot())
}

// RemoveCartItem 移除条目
func (h *Handler) RemoveCartItem(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	sess.Store.RemoveItem(c.Param("item_id"))
	response.Success(c, sess.Store.Snapshot())
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	sess.Store.ClearCart()
	response.Success(c, sess.Store.Snapshot())
}

// SetCartDrawer 打开/关闭/切换购物车抽屉
func (h *Handler) SetCartDrawer(c *gin.Context) {
	var req CartDrawerRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	sess.Store.ToggleDrawer(req.Open)
	response.Success(c, gin.H{"drawer_open": sess.Store.DrawerOpen()})
}
