package worker

import (
	"context"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	now func() time.Time
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
		now:       time.Now,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPlaced, c.handleOrderPlaced)
}

func (c *Consumer) handleOrderPlaced(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_placed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderPlacedPayload(task)
	if err != nil {
		logger.Warnw("worker_order_placed_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		// 模拟提交没有落库的订单
		logger.Infow("worker_order_placed_untracked", "order_no", payload.OrderNo, "total", payload.Total)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_placed_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_placed_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if order.NotifiedAt != nil {
		logger.Debugw("worker_order_placed_skip_already_notified", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if err := c.OrderRepo.MarkNotified(order.ID, c.now()); err != nil {
		logger.Warnw("worker_order_placed_mark_notified_failed", "order_id", order.ID, "error", err)
		return err
	}
	logger.Infow("worker_order_placed_notified",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"email", order.Email,
		"total", order.TotalAmount.String(),
		"item_count", len(order.Items),
	)
	return nil
}
