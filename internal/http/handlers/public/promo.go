package public

import (
	"strings"

	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PromoApplyRequest 应用优惠码请求
type PromoApplyRequest struct {
	Code string `json:"code"`
}

// ApplyPromo 校验并应用优惠码；校验期间请求会阻塞
func (h *Handler) ApplyPromo(c *gin.Context) {
	var req PromoApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		respondError(c, response.CodeBadRequest, "error.promo_code_required", nil)
		return
	}
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}

	status, err := sess.Promo.Apply(c.Request.Context(), req.Code)
	if err != nil {
		respondPromoError(c, err)
		return
	}
	response.Success(c, gin.H{
		"promo": status,
		"cart":  sess.Store.Snapshot(),
	})
}

// ClearPromo 移除优惠码
func (h *Handler) ClearPromo(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	sess.Promo.Clear()
	response.Success(c, gin.H{
		"promo": sess.Promo.Status(),
		"cart":  sess.Store.Snapshot(),
	})
}
