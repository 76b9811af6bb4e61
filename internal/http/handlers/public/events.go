package public

import (
	"io"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"

	"github.com/gin-gonic/gin"
)

const cartEventsHeartbeat = 15 * time.Second

// StreamCartEvents 以 SSE 推送购物车快照，连接建立时先推送当前快照；
// 会话关闭时结束推送，由客户端重连到新的会话
func (h *Handler) StreamCartEvents(c *gin.Context) {
	sess, ok := h.currentSession(c)
	if !ok {
		return
	}
	detach := sess.Attach()
	defer detach()

	// 观察者在提交路径上同步执行，这里只保留最新快照
	updates := make(chan cart.Snapshot, 1)
	unsubscribe := sess.Store.Subscribe(func(snap cart.Snapshot) {
		select {
		case updates <- snap:
			return
		default:
		}
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- snap:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent(constants.SSEEventCart, sess.Store.Snapshot())
	c.Writer.Flush()

	heartbeat := time.NewTicker(cartEventsHeartbeat)
	defer heartbeat.Stop()
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-sess.Store.Closed():
			c.SSEvent("closed", sess.ID)
			return false
		case snap := <-updates:
			c.SSEvent(constants.SSEEventCart, snap)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
	requestLog(c).Debugw("public_cart_stream_closed")
}
