// Package checkout 在提交时刻对购物车取快照，校验个人信息并提交订单。
package checkout

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/promo"
	"github.com/storefront-next/internal/queue"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Cart 结账依赖的购物车能力
type Cart interface {
	Snapshot() cart.Snapshot
	ClearCart()
}

// Promo 结账依赖的优惠码能力
type Promo interface {
	Status() promo.Status
	Clear()
}

// Notifier 下单成功通知
type Notifier interface {
	EnqueueOrderPlaced(payload queue.OrderPlacedPayload, opts ...asynq.Option) error
}

// Options 结账参数
type Options struct {
	SessionID string
	Promo     Promo
	Notifier  Notifier
	Now       func() time.Time
	Logger    *zap.SugaredLogger
}

// Orchestrator 结账编排；同一会话同时只允许一个提交
type Orchestrator struct {
	cart      Cart
	submitter Submitter
	sessionID string
	promo     Promo
	notifier  Notifier
	now       func() time.Time
	log       *zap.SugaredLogger

	mu       sync.Mutex
	inFlight bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewOrchestrator 创建结账编排
func NewOrchestrator(c Cart, submitter Submitter, opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logger.S()
	}
	if submitter == nil {
		submitter = &MockSubmitter{}
	}
	return &Orchestrator{
		cart:      c,
		submitter: submitter,
		sessionID: opts.SessionID,
		promo:     opts.Promo,
		notifier:  opts.Notifier,
		now:       now,
		log:       log,
	}
}

// ValidatePersonalInfo 校验个人信息，失败时返回 *ValidationError
func ValidatePersonalInfo(info PersonalInfo) error {
	if err := validate.Struct(info.normalized()); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return &ValidationError{Fields: fields}
		}
		return &ValidationError{}
	}
	return nil
}

// Submit 取购物车快照并提交订单。成功后清空购物车与优惠码；失败时购物车保持不变。
func (o *Orchestrator) Submit(ctx context.Context, info PersonalInfo) (Receipt, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return Receipt{}, ErrSubmissionInFlight
	}
	o.inFlight = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	snap := o.cart.Snapshot()
	if len(snap.Items) == 0 {
		return Receipt{}, ErrCartEmpty
	}
	if err := ValidatePersonalInfo(info); err != nil {
		return Receipt{}, err
	}

	// 只记录与快照中优惠金额一致的优惠码
	promoCode := ""
	if o.promo != nil && snap.Discount.IsPositive() {
		if status := o.promo.Status(); status.State == promo.StateApplied && status.Amount.Equal(snap.Discount) {
			promoCode = status.Code
		}
	}
	order := buildOrder(o.sessionID, info.normalized(), snap, promoCode, o.now())

	receipt, err := o.submitter.Submit(ctx, order)
	if err != nil {
		o.log.Warnw("checkout_submit_failed",
			"session_id", o.sessionID,
			"cart_version", snap.Version,
			"grand_total", snap.GrandTotal.String(),
			"error", err,
		)
		return Receipt{}, &SubmissionError{Err: err}
	}

	o.cart.ClearCart()
	if o.promo != nil {
		o.promo.Clear()
	}
	if o.notifier != nil {
		payload := queue.OrderPlacedPayload{
			OrderID:   receipt.OrderID,
			OrderNo:   receipt.OrderNo,
			SessionID: o.sessionID,
			Total:     receipt.GrandTotal.String(),
		}
		if err := o.notifier.EnqueueOrderPlaced(payload); err != nil {
			o.log.Warnw("checkout_enqueue_order_placed_failed", "order_no", receipt.OrderNo, "error", err)
		}
	}
	o.log.Infow("checkout_submitted",
		"session_id", o.sessionID,
		"order_no", receipt.OrderNo,
		"grand_total", receipt.GrandTotal.String(),
		"item_count", snap.ItemCount,
	)
	return receipt, nil
}
