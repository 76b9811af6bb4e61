package public

import (
	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SubmitCheckout 提交订单
func (h *Handler) SubmitCheckout(c *gin.Context) {
	var req checkout.PersonalInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	receipt, err := sess.Checkout.Submit(c.Request.Context(), req)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	requestLog(c).Infow("public_checkout_submitted", "order_no", receipt.OrderNo)
	response.SuccessWithMsg(c, messageOf("success.order_placed"), receipt)
}
