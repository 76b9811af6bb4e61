package main

import (
	"context"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/promo"
	"github.com/storefront-next/internal/repository"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商品
	products := []models.Product{
		{Slug: "linen-shirt", Title: "Linen Shirt", PriceAmount: models.MustParseMoney("59.00"), Image: "/images/linen-shirt.jpg", Stock: 12, IsActive: true, SortOrder: 30},
		{Slug: "canvas-tote", Title: "Canvas Tote", PriceAmount: models.MustParseMoney("24.50"), Image: "/images/canvas-tote.jpg", Stock: 40, IsActive: true, SortOrder: 20},
		{Slug: "ceramic-mug", Title: "Ceramic Mug", PriceAmount: models.MustParseMoney("14.99"), Image: "/images/ceramic-mug.jpg", Stock: 3, IsActive: true, SortOrder: 10},
		{Slug: "gift-wrap", Title: "Gift Wrap", PriceAmount: models.MustParseMoney("4.00"), Image: "/images/gift-wrap.jpg", IsActive: true},
	}
	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", product.Slug)
			continue
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			continue
		}
		stdLog.Printf("Created product: %s", product.Slug)
	}

	// 添加优惠码
	expiredAt := time.Now().AddDate(0, 0, -1)
	rules := []models.PromoRule{
		{Code: "SAVE40", Kind: "valid", Amount: models.MustParseMoney("40"), IsActive: true},
		{Code: "WELCOME10", Kind: "valid", Amount: models.MustParseMoney("10"), IsActive: true},
		{Code: "SPRING", Kind: "valid", Amount: models.MustParseMoney("15"), EndsAt: &expiredAt, IsActive: true},
		{Code: "EXPIRED", Kind: "expired", IsActive: true},
		{Code: "INVALID", Kind: "invalid", IsActive: true},
	}
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		stdLog.Fatalf("Failed to init redis: %v", err)
	}
	promoRules := promo.NewGormRules(repository.NewPromoRuleRepository(models.DB))
	for i := range rules {
		if err := promoRules.Save(context.Background(), &rules[i]); err != nil {
			stdLog.Printf("Failed to save promo rule %s: %v", rules[i].Code, err)
			continue
		}
		stdLog.Printf("Saved promo rule: %s", rules[i].Code)
	}

	stdLog.Printf("Seed completed")
}
