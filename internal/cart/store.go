// Package cart 实现购物车状态存储：条目、优惠与运费输入、派生金额视图与有序持久化。
//
// 所有修改经 Store 方法串行提交；每次提交先同步通知全部观察者，
// 再把条目列表交给后台写入协程，调用方不等待落盘。
package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/persistence"

	"go.uber.org/zap"
)

// Observer 提交观察者；回调内不得调用 Store 的修改方法
type Observer func(Snapshot)

// Options Store 构造参数
type Options struct {
	ShippingFee  models.Money
	WriteTimeout time.Duration
	Logger       *zap.SugaredLogger
}

// Store 购物车状态存储
type Store struct {
	// dispatch 串行化提交与通知
	dispatch sync.Mutex
	mu       sync.RWMutex

	items       []LineItem
	discount    models.Money
	shippingFee models.Money
	drawerOpen  bool
	version     uint64

	obsMu     sync.Mutex
	observers map[uint64]Observer
	obsOrder  []uint64
	nextObsID uint64

	writer    *writer
	closed    chan struct{}
	closeOnce sync.Once
	log       *zap.SugaredLogger
}

// NewStore 从适配器加载条目并启动写入协程；加载失败或内容损坏时以空购物车启动
func NewStore(ctx context.Context, adapter persistence.Adapter, opts Options) *Store {
	if adapter == nil {
		adapter = persistence.Noop()
	}
	log := opts.Logger
	if log == nil {
		log = logger.S()
	}
	s := &Store{
		shippingFee: opts.ShippingFee.NonNegative(),
		observers:   make(map[uint64]Observer),
		closed:      make(chan struct{}),
		log:         log,
	}
	s.items = loadItems(ctx, adapter, log)
	s.writer = newWriter(adapter, log, opts.WriteTimeout)
	return s
}

func loadItems(ctx context.Context, adapter persistence.Adapter, log *zap.SugaredLogger) []LineItem {
	data, err := adapter.Load(ctx)
	if err != nil {
		log.Warnw("cart_persisted_state_load_failed", "key", adapter.Key(), "error", err)
		return nil
	}
	if data == nil {
		return nil
	}
	items, err := DecodeItems(data)
	if err != nil {
		log.Warnw("cart_persisted_state_corrupt", "key", adapter.Key(), "error", err)
		return nil
	}
	return items
}

// AddItem 加入商品；相同标识合并数量，并按出现过的最小库存上限与 MaxLineQuantity 截断
func (s *Store) AddItem(product ProductSnapshot, quantity int, stockLimit *int, variation Variation) error {
	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" || quantity < 1 {
		return ErrInvalidItem
	}
	if stockLimit != nil && *stockLimit < 1 {
		return ErrOutOfStock
	}
	id := IdentityKey(product.ID, variation)

	return s.commit(true, func() error {
		if idx := s.indexOf(id); idx >= 0 {
			existing := &s.items[idx]
			limit := minLimit(existing.StockLimit, stockLimit)
			existing.StockLimit = limit
			existing.Quantity = clampQuantity(addQuantity(existing.Quantity, quantity), limit)
			return nil
		}
		item := LineItem{
			ID:                id,
			Product:           product.Clone(),
			Quantity:          quantity,
			SelectedVariation: variation.Clone(),
		}
		if stockLimit != nil {
			limit := *stockLimit
			item.StockLimit = &limit
		}
		item.Quantity = clampQuantity(item.Quantity, item.StockLimit)
		s.items = append(s.items, item)
		return nil
	})
}

// UpdateItemQuantity 设置数量；quantity<=0 时移除；条目不存在时忽略
func (s *Store) UpdateItemQuantity(itemID string, quantity int) {
	_ = s.commit(true, func() error {
		idx := s.indexOf(itemID)
		if idx < 0 {
			return errSkipCommit
		}
		if quantity <= 0 {
			s.items = append(s.items[:idx], s.items[idx+1:]...)
			return nil
		}
		s.items[idx].Quantity = clampQuantity(quantity, s.items[idx].StockLimit)
		return nil
	})
}

// RemoveItem 移除条目；条目不存在时忽略
func (s *Store) RemoveItem(itemID string) {
	_ = s.commit(true, func() error {
		idx := s.indexOf(itemID)
		if idx < 0 {
			return errSkipCommit
		}
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		return nil
	})
}

// ClearCart 清空条目并写入空列表
func (s *Store) ClearCart() {
	_ = s.commit(true, func() error {
		s.items = nil
		return nil
	})
}

// SetDiscount 设置优惠金额（负数归零，不持久化）
func (s *Store) SetDiscount(amount models.Money) {
	_ = s.commit(false, func() error {
		s.discount = amount.NonNegative()
		return nil
	})
}

// SetShippingFee 设置运费（负数归零，不持久化）
func (s *Store) SetShippingFee(amount models.Money) {
	_ = s.commit(false, func() error {
		s.shippingFee = amount.NonNegative()
		return nil
	})
}

// OpenDrawer 打开侧边购物车
func (s *Store) OpenDrawer() {
	s.setDrawer(true)
}

// CloseDrawer 关闭侧边购物车
func (s *Store) CloseDrawer() {
	s.setDrawer(false)
}

// ToggleDrawer 切换侧边购物车；explicit 非空时直接设置
func (s *Store) ToggleDrawer(explicit *bool) {
	_ = s.commit(false, func() error {
		if explicit != nil {
			s.drawerOpen = *explicit
		} else {
			s.drawerOpen = !s.drawerOpen
		}
		return nil
	})
}

func (s *Store) setDrawer(open bool) {
	_ = s.commit(false, func() error {
		s.drawerOpen = open
		return nil
	})
}

var errSkipCommit = errors.New("cart: skip commit")

// commit 在 dispatch 锁内依次执行：修改状态、通知观察者、排队持久化
func (s *Store) commit(persist bool, mutate func() error) error {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	if err := mutate(); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errSkipCommit) {
			return nil
		}
		return err
	}
	s.version++
	snap := s.snapshotLocked()
	var items []LineItem
	if persist {
		items = cloneItems(s.items)
	}
	s.mu.Unlock()

	s.notify(snap)
	if persist {
		s.writer.enqueue(snap.Version, items)
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	for idx := range s.items {
		if s.items[idx].ID == id {
			return idx
		}
	}
	return -1
}

func minLimit(a, b *int) *int {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	}
	v := *a
	if *b < v {
		v = *b
	}
	return &v
}

// MaxLineQuantity 单个条目的数量上限
const MaxLineQuantity = 1_000_000

func addQuantity(a, b int) int {
	if b > MaxLineQuantity-a {
		return MaxLineQuantity
	}
	return a + b
}

func clampQuantity(quantity int, limit *int) int {
	if quantity > MaxLineQuantity {
		quantity = MaxLineQuantity
	}
	if limit != nil && quantity > *limit {
		return *limit
	}
	return quantity
}
