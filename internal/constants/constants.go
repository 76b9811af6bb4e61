package constants

// 订单状态常量
const (
	OrderStatusPlaced   = "placed"
	OrderStatusNotified = "notified"
)

// 购物车持久化驱动
const (
	CartPersistenceNone     = "none"
	CartPersistenceMemory   = "memory"
	CartPersistenceRedis    = "redis"
	CartPersistenceDatabase = "database"
)

// 优惠码规则来源
const (
	PromoSourceStatic   = "static"
	PromoSourceDatabase = "database"
	PromoSourceChain    = "chain"
)

// 结账提交方式
const (
	CheckoutSubmitterMock     = "mock"
	CheckoutSubmitterDatabase = "database"
)

// 请求上下文键
const (
	ContextKeyRequestID = "request_id"
	ContextKeySessionID = "session_id"
)

// 队列与任务
const (
	QueueDefault    = "default"
	QueueCritical   = "critical"
	TaskOrderPlaced = "order:placed"
)

// 其他
const (
	OrderNoPrefix      = "SF"
	SSEEventCart       = "cart"
	RateLimitPromo     = "promo_apply"
	SessionTokenIssuer = "storefront"
)
