package router

import (
	"fmt"
	"net/http"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	publichandlers "github.com/storefront-next/internal/http/handlers/public"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	promoRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:%s", cache.Prefix(), constants.RateLimitPromo),
		WindowSeconds: cfg.Security.PromoRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PromoRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/products", publicHandler.GetProducts)
		apiV1.GET("/products/:slug", publicHandler.GetProductBySlug)

		// 访客会话接口
		visitor := apiV1.Group("")
		visitor.Use(SessionMiddleware(c.Tokens, cfg.Session))
		{
			visitor.GET("/cart", publicHandler.GetCart)
			visitor.DELETE("/cart", publicHandler.ClearCart)
			visitor.GET("/cart/events", publicHandler.StreamCartEvents)
			visitor.POST("/cart/items", publicHandler.AddCartItem)
			visitor.PUT("/cart/items/:item_id", publicHandler.UpdateCartItem)
			visitor.DELETE("/cart/items/:item_id", publicHandler.RemoveCartItem)
			visitor.POST("/cart/drawer", publicHandler.SetCartDrawer)
			visitor.POST("/cart/promo", RateLimitMiddleware(cache.Client(), promoRule, KeyBySessionAndIP), publicHandler.ApplyPromo)
			visitor.DELETE("/cart/promo", publicHandler.ClearPromo)
			visitor.POST("/checkout", publicHandler.SubmitCheckout)
		}
	}

	return r
}
