package public

import (
	"errors"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/promo"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, key: "error.product_inactive"},
}

var cartItemErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, key: "error.cart_quantity_invalid"},
	{target: cart.ErrInvalidItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: cart.ErrOutOfStock, code: response.CodeBadRequest, key: "error.cart_out_of_stock"},
}

var promoErrorRules = []mappedHandlerError{
	{target: promo.ErrPromoExpired, code: response.CodeBadRequest, key: "error.promo_expired"},
	{target: promo.ErrPromoInvalid, code: response.CodeBadRequest, key: "error.promo_invalid"},
	{target: promo.ErrPromoUnrecognized, code: response.CodeBadRequest, key: "error.promo_unrecognized"},
	{target: promo.ErrPromoAlreadyApplied, code: response.CodeConflict, key: "error.promo_already_applied"},
	{target: promo.ErrPromoInFlight, code: response.CodeConflict, key: "error.promo_in_flight"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: checkout.ErrCartEmpty, code: response.CodeBadRequest, key: "error.checkout_cart_empty"},
	{target: checkout.ErrSubmissionInFlight, code: response.CodeConflict, key: "error.checkout_in_flight"},
}

func respondProductError(c *gin.Context, err error) {
	respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_fetch_failed")
}

func respondCartAddError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(productErrorRules, cartItemErrorRules), response.CodeInternal, "error.cart_update_failed")
}

func respondPromoError(c *gin.Context, err error) {
	respondWithMappedError(c, err, promoErrorRules, response.CodeInternal, "error.promo_unavailable")
}

func respondCheckoutError(c *gin.Context, err error) {
	var validationErr *checkout.ValidationError
	if errors.As(err, &validationErr) {
		response.ErrorWithData(c, response.CodeBadRequest, messageOf("error.checkout_info_invalid"), map[string]interface{}{
			"fields": validationErr.Fields,
		})
		return
	}
	if errors.Is(err, checkout.ErrSubmissionFailed) {
		// 提交失败时购物车保持原样，客户端可直接重试
		respondError(c, response.CodeInternal, "error.checkout_submit_failed", err)
		return
	}
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.checkout_failed")
}
