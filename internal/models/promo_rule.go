package models

import (
	"time"

	"gorm.io/gorm"
)

// PromoRule 优惠码规则
type PromoRule struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                  // 主键
	Code      string         `gorm:"uniqueIndex;not null" json:"code"`                      // 优惠码（大写）
	Kind      string         `gorm:"type:varchar(20);not null;default:'valid'" json:"kind"` // 类型（valid/expired/invalid）
	Amount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`   // 固定优惠金额
	EndsAt    *time.Time     `gorm:"index" json:"ends_at"`                                  // 失效时间
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`                // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                               // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间
}

// TableName 指定表名
func (PromoRule) TableName() string {
	return "promo_rules"
}
