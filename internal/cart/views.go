package cart

import (
	"context"

	"github.com/storefront-next/internal/models"
)

// Snapshot 当前已提交状态
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return buildSnapshot(s.version, s.items, s.discount, s.shippingFee, s.drawerOpen)
}

// Items 条目副本（按加入顺序）
func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Item 按标识查找条目
func (s *Store) Item(itemID string) (LineItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(itemID)
	if idx < 0 {
		return LineItem{}, false
	}
	return s.items[idx].clone(), true
}

func (s *Store) Subtotal() models.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Subtotal(s.items)
}

func (s *Store) Discount() models.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discount
}

func (s *Store) ShippingFee() models.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shippingFee
}

func (s *Store) GrandTotal() models.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GrandTotal(Subtotal(s.items), s.shippingFee, s.discount)
}

func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ItemCount(s.items)
}

func (s *Store) DrawerOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawerOpen
}

// Version 提交计数
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe 注册观察者：立即推送当前快照，之后每次提交按顺序推送一次。
// 返回的取消函数可在回调内调用。
func (s *Store) Subscribe(observer Observer) func() {
	if observer == nil {
		return func() {}
	}
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.obsMu.Lock()
	s.nextObsID++
	id := s.nextObsID
	s.observers[id] = observer
	s.obsOrder = append(s.obsOrder, id)
	s.obsMu.Unlock()

	observer(s.Snapshot())

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		if _, ok := s.observers[id]; !ok {
			return
		}
		delete(s.observers, id)
		for idx, oid := range s.obsOrder {
			if oid == id {
				s.obsOrder = append(s.obsOrder[:idx:idx], s.obsOrder[idx+1:]...)
				break
			}
		}
	}
}

func (s *Store) notify(snap Snapshot) {
	s.obsMu.Lock()
	targets := make([]Observer, 0, len(s.obsOrder))
	for _, id := range s.obsOrder {
		targets = append(targets, s.observers[id])
	}
	s.obsMu.Unlock()

	for _, observer := range targets {
		observer(snap)
	}
}

// Watch 订阅快照中的单个派生值，仅在值变化时回调；equal 为空时每次提交都回调
func Watch[T any](s *Store, selector func(Snapshot) T, equal func(a, b T) bool, fn func(T)) func() {
	var (
		last    T
		started bool
	)
	return s.Subscribe(func(snap Snapshot) {
		next := selector(snap)
		if started && equal != nil && equal(last, next) {
			return
		}
		last = next
		started = true
		fn(next)
	})
}

// Flush 等待最近一次已提交的条目列表写入存储
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Closed 在 Close 开始时关闭，长连接订阅方据此结束并重新获取会话
func (s *Store) Closed() <-chan struct{} {
	return s.closed
}

// Close 写完剩余内容并停止写入协程
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closed) })
	return s.writer.close(ctx)
}
