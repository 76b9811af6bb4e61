package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 结账订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	SessionID      string         `gorm:"type:varchar(64);index" json:"session_id,omitempty"`           // 会话ID
	Status         string         `gorm:"index;not null" json:"status"`                                 // 订单状态
	FullName       string         `gorm:"type:varchar(128);not null" json:"full_name"`                  // 收件人
	Email          string         `gorm:"type:varchar(255);index;not null" json:"email"`                // 邮箱
	Phone          string         `gorm:"type:varchar(32)" json:"phone"`                                // 电话
	AddressLine    string         `gorm:"type:varchar(255)" json:"address_line"`                        // 地址
	City           string         `gorm:"type:varchar(128)" json:"city"`                                // 城市
	PostalCode     string         `gorm:"type:varchar(32)" json:"postal_code"`                          // 邮编
	Country        string         `gorm:"type:varchar(64)" json:"country"`                              // 国家
	PromoCode      string         `gorm:"type:varchar(64)" json:"promo_code,omitempty"`                 // 优惠码
	SubtotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal_amount"` // 小计
	ShippingAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"` // 运费
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	NotifiedAt     *time.Time     `gorm:"index" json:"notified_at"`                                     // 通知时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
