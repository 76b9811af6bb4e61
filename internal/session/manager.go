// Package session 为每个访客会话构建独立的购物车、优惠码引擎与结账编排，并回收空闲会话。
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/persistence"
	"github.com/storefront-next/internal/promo"

	"go.uber.org/zap"
)

// Session 访客会话
type Session struct {
	ID       string
	Store    *cart.Store
	Promo    *promo.Engine
	Checkout *checkout.Orchestrator

	lastSeen atomic.Int64
	streams  atomic.Int32
	now      func() time.Time
}

// LastSeen 最近访问时间
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// Attach 登记一个长连接订阅方；存在订阅方时会话不会被回收。返回的函数用于注销并刷新访问时间
func (s *Session) Attach() func() {
	s.streams.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			s.touch(s.now())
			s.streams.Add(-1)
		})
	}
}

// Streams 当前长连接订阅数
func (s *Session) Streams() int {
	return int(s.streams.Load())
}

// Options 会话参数
type Options struct {
	Namespace     string
	ShippingFee   models.Money
	IdleTTL       time.Duration
	SweepInterval time.Duration
	PromoDelay    time.Duration
	WriteTimeout  time.Duration
	FlushTimeout  time.Duration
}

// Deps 会话依赖
type Deps struct {
	Backend   persistence.Backend
	Rules     promo.RuleSource
	Submitter checkout.Submitter
	Notifier  checkout.Notifier
	Logger    *zap.SugaredLogger
	Now       func() time.Time
}

// Manager 会话管理器
type Manager struct {
	opts Options
	deps Deps
	log  *zap.SugaredLogger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager 创建会话管理器
func NewManager(opts Options, deps Deps) *Manager {
	log := deps.Logger
	if log == nil {
		log = logger.Named("session")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = 5 * time.Second
	}
	return &Manager{
		opts:     opts,
		deps:     deps,
		log:      log,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

// Get 获取会话，不存在时从持久化存储加载购物车
func (m *Manager) Get(ctx context.Context, sessionID string) *Session {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[sessionID]; ok {
		sess.touch(now)
		return sess
	}
	sess := m.build(ctx, sessionID)
	sess.touch(now)
	m.sessions[sessionID] = sess
	return sess
}

func (m *Manager) build(ctx context.Context, sessionID string) *Session {
	log := m.log.With("session_id", sessionID)
	adapter := persistence.Bind(m.deps.Backend, persistence.JoinKey(m.opts.Namespace, sessionID))
	store := cart.NewStore(ctx, adapter, cart.Options{
		ShippingFee:  m.opts.ShippingFee,
		WriteTimeout: m.opts.WriteTimeout,
		Logger:       log,
	})
	engine := promo.NewEngine(store, m.deps.Rules, promo.Options{
		Delay:  m.opts.PromoDelay,
		Logger: log,
	})
	orch := checkout.NewOrchestrator(store, m.deps.Submitter, checkout.Options{
		SessionID: sessionID,
		Promo:     engine,
		Notifier:  m.deps.Notifier,
		Logger:    log,
	})
	return &Session{ID: sessionID, Store: store, Promo: engine, Checkout: orch, now: m.now}
}

// Len 当前会话数
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep 关闭空闲超过 TTL 且没有长连接订阅的会话，返回回收数量
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	m.mu.Lock()
	expired := make([]*Session, 0)
	for id, sess := range m.sessions {
		if sess.Streams() == 0 && now.Sub(sess.LastSeen()) > m.opts.IdleTTL {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.FlushTimeout)
		if err := sess.Store.Close(ctx); err != nil {
			m.log.Warnw("session_close_failed", "session_id", sess.ID, "error", err)
		}
		cancel()
	}
	if len(expired) > 0 {
		m.log.Debugw("session_sweep_done", "evicted", len(expired))
	}
	return len(expired)
}

// Run 定时回收空闲会话，直到 ctx 结束
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.now())
		}
	}
}

// Close 写完并关闭全部会话
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, sess := range m.sessions {
		all = append(all, sess)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, sess := range all {
		if err := sess.Store.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
