// Package promo 校验优惠码并把优惠金额写入购物车。
package promo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"go.uber.org/zap"
)

// State 引擎状态
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateApplied    State = "applied"
)

// DiscountTarget 优惠金额的写入目标（购物车 Store）
type DiscountTarget interface {
	Discount() models.Money
	SetDiscount(amount models.Money)
}

// Status 引擎状态视图
type Status struct {
	State     State        `json:"state"`
	Code      string       `json:"code,omitempty"`
	Amount    models.Money `json:"amount"`
	LastError Reason       `json:"last_error,omitempty"`
}

// Options 引擎参数
type Options struct {
	Delay  time.Duration
	Now    func() time.Time
	Logger *zap.SugaredLogger
}

// Engine 优惠码引擎；同一时刻最多一个校验在进行
type Engine struct {
	target DiscountTarget
	rules  RuleSource
	delay  time.Duration
	now    func() time.Time
	log    *zap.SugaredLogger

	mu     sync.Mutex
	status Status
}

// NewEngine 创建优惠码引擎
func NewEngine(target DiscountTarget, rules RuleSource, opts Options) *Engine {
	if rules == nil {
		rules = NewStaticRules()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logger.S()
	}
	return &Engine{
		target: target,
		rules:  rules,
		delay:  opts.Delay,
		now:    now,
		log:    log,
		status: Status{State: StateIdle},
	}
}

// Status 当前状态
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Apply 校验优惠码并写入优惠金额。
// 空码、已有优惠、已有校验进行中时立即拒绝；否则等待模拟延迟后查询规则。
// 延迟一旦开始不会被取消，ctx 只用于规则查询。
func (e *Engine) Apply(ctx context.Context, code string) (Status, error) {
	normalized := NormalizeCode(code)

	e.mu.Lock()
	if normalized == "" {
		e.status.LastError = ReasonInvalid
		st := e.status
		e.mu.Unlock()
		return st, ErrPromoInvalid
	}
	if e.status.State == StateApplied || e.target.Discount().IsPositive() {
		st := e.status
		e.mu.Unlock()
		return st, ErrPromoAlreadyApplied
	}
	if e.status.State == StateValidating {
		st := e.status
		e.mu.Unlock()
		return st, ErrPromoInFlight
	}
	e.status = Status{State: StateValidating, Code: normalized}
	e.mu.Unlock()

	if e.delay > 0 {
		time.Sleep(e.delay)
	}

	amount, err := e.resolve(ctx, normalized)
	if err != nil {
		st := Status{State: StateIdle, LastError: ReasonOf(err)}
		e.mu.Lock()
		e.status = st
		e.mu.Unlock()
		e.log.Infow("promo_apply_rejected", "code", normalized, "reason", st.LastError)
		return st, err
	}

	e.target.SetDiscount(amount)
	st := Status{State: StateApplied, Code: normalized, Amount: amount}
	e.mu.Lock()
	e.status = st
	e.mu.Unlock()
	e.log.Infow("promo_applied", "code", normalized, "amount", amount.String())
	return st, nil
}

func (e *Engine) resolve(ctx context.Context, code string) (models.Money, error) {
	rule, err := e.rules.Lookup(ctx, code)
	if err != nil {
		e.log.Warnw("promo_rule_lookup_failed", "code", code, "error", err)
		return models.Money{}, fmt.Errorf("%w: %v", ErrPromoUnavailable, err)
	}
	if rule == nil {
		return models.Money{}, ErrPromoUnrecognized
	}
	if rule.Kind == KindExpired || (rule.EndsAt != nil && !rule.EndsAt.After(e.now())) {
		return models.Money{}, ErrPromoExpired
	}
	if rule.Kind == KindInvalid || rule.Inactive {
		return models.Money{}, ErrPromoInvalid
	}
	return rule.Amount.NonNegative(), nil
}

// Clear 撤销已应用的优惠，回到 Idle；进行中的校验不受影响
func (e *Engine) Clear() {
	e.mu.Lock()
	validating := e.status.State == StateValidating
	if !validating {
		e.status = Status{State: StateIdle}
	}
	e.mu.Unlock()
	e.target.SetDiscount(models.Money{})
}
