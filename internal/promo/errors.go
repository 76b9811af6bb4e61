package promo

import "errors"

// Reason 优惠码拒绝原因
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonExpired        Reason = "expired"
	ReasonInvalid        Reason = "invalid"
	ReasonUnrecognized   Reason = "unrecognized"
	ReasonAlreadyApplied Reason = "already_applied"
	ReasonInFlight       Reason = "in_flight"
	ReasonUnavailable    Reason = "unavailable"
)

var (
	ErrPromoExpired        = errors.New("promo: code expired")
	ErrPromoInvalid        = errors.New("promo: code invalid")
	ErrPromoUnrecognized   = errors.New("promo: code unrecognized")
	ErrPromoAlreadyApplied = errors.New("promo: discount already applied")
	ErrPromoInFlight       = errors.New("promo: validation in flight")
	ErrPromoUnavailable    = errors.New("promo: rule source unavailable")
)

var reasonByError = []struct {
	err    error
	reason Reason
}{
	{ErrPromoExpired, ReasonExpired},
	{ErrPromoInvalid, ReasonInvalid},
	{ErrPromoUnrecognized, ReasonUnrecognized},
	{ErrPromoAlreadyApplied, ReasonAlreadyApplied},
	{ErrPromoInFlight, ReasonInFlight},
	{ErrPromoUnavailable, ReasonUnavailable},
}

// ReasonOf 将错误归类为拒绝原因；非优惠码错误返回 ReasonNone
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	for _, item := range reasonByError {
		if errors.Is(err, item.err) {
			return item.reason
		}
	}
	return ReasonNone
}
