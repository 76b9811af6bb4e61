package shared

// messages 消息表；未登记的键原样返回
var messages = map[string]string{
	"error.bad_request":            "invalid request",
	"error.unauthorized":           "session required",
	"error.not_found":              "resource not found",
	"error.internal":               "internal error",
	"error.rate_limit_unavailable": "rate limiter unavailable",
	"error.too_many_requests":      "too many requests, try again later",
	"error.session_invalid":        "session invalid",
	"error.product_not_found":      "product not found",
	"error.product_inactive":       "product is not available",
	"error.product_fetch_failed":   "failed to load products",
	"error.cart_item_invalid":      "cart item invalid",
	"error.cart_quantity_invalid":  "quantity must be a positive integer",
	"error.cart_out_of_stock":      "product is out of stock",
	"error.cart_update_failed":     "failed to update cart",
	"error.promo_code_required":    "promo code required",
	"error.promo_expired":          "promo code expired",
	"error.promo_invalid":          "promo code invalid",
	"error.promo_unrecognized":     "promo code not recognized",
	"error.promo_already_applied":  "a promo code is already applied",
	"error.promo_in_flight":        "promo code validation in progress",
	"error.promo_unavailable":      "promo validation unavailable",
	"error.checkout_cart_empty":    "cart is empty",
	"error.checkout_info_invalid":  "personal info invalid",
	"error.checkout_in_flight":     "checkout already in progress",
	"error.checkout_submit_failed": "order submission failed, please retry",
	"error.checkout_failed":        "checkout failed",
	"error.stream_unsupported":     "streaming unsupported",
	"success.order_placed":         "order placed",
}

// Message 按键取消息
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
