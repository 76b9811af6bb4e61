package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromoRuleRepository 优惠码规则数据访问接口
type PromoRuleRepository interface {
	GetByCode(code string) (*models.PromoRule, error)
	Create(rule *models.PromoRule) error
	Upsert(rule *models.PromoRule) error
}

// GormPromoRuleRepository GORM 实现
type GormPromoRuleRepository struct {
	db *gorm.DB
}

// NewPromoRuleRepository 创建优惠码规则仓库
func NewPromoRuleRepository(db *gorm.DB) *GormPromoRuleRepository {
	return &GormPromoRuleRepository{db: db}
}

// GetByCode 根据优惠码获取规则
func (r *GormPromoRuleRepository) GetByCode(code string) (*models.PromoRule, error) {
	var rule models.PromoRule
	if err := r.db.Where("code = ?", code).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// Create 创建规则
func (r *GormPromoRuleRepository) Create(rule *models.PromoRule) error {
	return r.db.Create(rule).Error
}

// Upsert 按优惠码创建或覆盖规则
func (r *GormPromoRuleRepository) Upsert(rule *models.PromoRule) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "amount", "ends_at", "is_active", "updated_at"}),
	}).Create(rule).Error
}
