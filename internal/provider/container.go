package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/persistence"
	"github.com/storefront-next/internal/promo"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
	"github.com/storefront-next/internal/session"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ProductRepo   repository.ProductRepository
	OrderRepo     repository.OrderRepository
	PromoRuleRepo repository.PromoRuleRepository
	KVRepo        repository.KVRepository

	// Services
	ProductService *service.ProductService
	CartService    *service.CartService
	Sessions       *session.Manager
	Tokens         *session.Tokens
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PromoRuleRepo = repository.NewPromoRuleRepository(db)
	c.KVRepo = repository.NewKVRepository(db)
}

func (c *Container) initServices() error {
	cfg := c.Config
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.ProductService)
	c.Tokens = session.NewTokens(cfg.Session.Secret, cfg.Session.ExpireHours)

	shippingFee, err := models.ParseMoney(cfg.Cart.ShippingFee)
	if err != nil {
		return fmt.Errorf("cart.shipping_fee: %w", err)
	}
	backend, err := c.buildBackend()
	if err != nil {
		return err
	}
	rules, err := c.buildRules()
	if err != nil {
		return err
	}

	deps := session.Deps{
		Backend:   backend,
		Rules:     rules,
		Submitter: c.buildSubmitter(),
		Logger:    logger.Named("session"),
	}
	if c.QueueClient != nil {
		deps.Notifier = c.QueueClient
	}
	c.Sessions = session.NewManager(session.Options{
		Namespace:     cfg.Cart.Persistence.Namespace,
		ShippingFee:   shippingFee,
		IdleTTL:       time.Duration(cfg.Session.IdleTTLMinutes) * time.Minute,
		SweepInterval: time.Duration(cfg.Session.SweepSeconds) * time.Second,
		PromoDelay:    time.Duration(cfg.Promo.ValidationDelayMS) * time.Millisecond,
		WriteTimeout:  time.Duration(cfg.Cart.Persistence.WriteTimeoutMS) * time.Millisecond,
		FlushTimeout:  time.Duration(cfg.Cart.Persistence.FlushTimeoutMS) * time.Millisecond,
	}, deps)
	return nil
}

// buildBackend 按配置选择购物车持久化后端；返回 nil 表示不持久化
func (c *Container) buildBackend() (persistence.Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(c.Config.Cart.Persistence.Driver))
	switch driver {
	case constants.CartPersistenceNone:
		return nil, nil
	case constants.CartPersistenceMemory:
		return persistence.NewMemoryBackend(), nil
	case constants.CartPersistenceRedis:
		if !cache.Enabled() {
			return nil, fmt.Errorf("cart.persistence.driver=redis requires redis.enabled")
		}
		ttl := time.Duration(c.Config.Cart.Persistence.TTLHours) * time.Hour
		return persistence.NewRedisBackend(cache.Client(), cache.Prefix(), ttl), nil
	case constants.CartPersistenceDatabase, "":
		return persistence.NewGormBackend(c.KVRepo), nil
	default:
		return nil, fmt.Errorf("unknown cart.persistence.driver %q", driver)
	}
}

func (c *Container) buildRules() (promo.RuleSource, error) {
	static, err := promo.RulesFromConfig(c.Config.Promo.Rules)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Promo.Source)) {
	case constants.PromoSourceDatabase:
		return promo.NewGormRules(c.PromoRuleRepo), nil
	case constants.PromoSourceChain:
		return promo.ChainRules{promo.NewGormRules(c.PromoRuleRepo), static}, nil
	default:
		return static, nil
	}
}

func (c *Container) buildSubmitter() checkout.Submitter {
	if strings.EqualFold(strings.TrimSpace(c.Config.Checkout.Submitter), constants.CheckoutSubmitterMock) {
		return &checkout.MockSubmitter{
			Latency: time.Duration(c.Config.Checkout.MockLatencyMS) * time.Millisecond,
			Fail:    c.Config.Checkout.MockFail,
		}
	}
	return checkout.NewGormSubmitter(c.OrderRepo)
}
