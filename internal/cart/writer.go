package cart

import (
	"context"
	"sync"
	"time"

	"github.com/storefront-next/internal/persistence"

	"go.uber.org/zap"
)

type pendingWrite struct {
	version uint64
	items   []LineItem
}

// writer 每个 Store 一个写入协程；待写内容只保留最新一份
type writer struct {
	adapter persistence.Adapter
	log     *zap.SugaredLogger
	timeout time.Duration

	mu       sync.Mutex
	pending  *pendingWrite
	queued   uint64
	written  uint64
	progress chan struct{}
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func newWriter(adapter persistence.Adapter, log *zap.SugaredLogger, timeout time.Duration) *writer {
	w := &writer{
		adapter:  adapter,
		log:      log,
		timeout:  timeout,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// enqueue 覆盖待写内容；版本不递增的提交直接忽略
func (w *writer) enqueue(version uint64, items []LineItem) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.log.Warnw("cart_persist_after_close", "key", w.adapter.Key(), "version", version)
		return
	}
	if version <= w.queued {
		w.mu.Unlock()
		return
	}
	w.pending = &pendingWrite{version: version, items: items}
	w.queued = version
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		next := w.pending
		w.pending = nil
		w.mu.Unlock()
		if next == nil {
			return
		}
		w.write(next)
	}
}

func (w *writer) write(p *pendingWrite) {
	payload, err := EncodeItems(p.items)
	if err != nil {
		w.log.Errorw("cart_persist_encode_failed", "key", w.adapter.Key(), "version", p.version, "error", err)
	} else {
		ctx := context.Background()
		var cancel context.CancelFunc
		if w.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, w.timeout)
		}
		err = w.adapter.Save(ctx, payload)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			w.log.Warnw("cart_persist_failed", "key", w.adapter.Key(), "version", p.version, "error", err)
		}
	}

	w.mu.Lock()
	if p.version > w.written {
		w.written = p.version
	}
	close(w.progress)
	w.progress = make(chan struct{})
	w.mu.Unlock()
}

// flush 等待当前已排队的版本写完
func (w *writer) flush(ctx context.Context) error {
	for {
		w.mu.Lock()
		if w.written >= w.queued {
			w.mu.Unlock()
			return nil
		}
		progress := w.progress
		w.mu.Unlock()

		select {
		case <-progress:
		case <-w.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// close 写完剩余内容后退出协程
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		select {
		case <-w.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stop)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
