package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart holds a user's pending membership selection. There is at most one
// cart per user, created lazily on first access.
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// CartItem is a (plan, quantity, price snapshot) line owned by a cart.
// Price is copied from the plan at add time.
type CartItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CartID           uint            `gorm:"not null;index" json:"cart_id"`
	MembershipPlanID uint            `gorm:"not null;index" json:"membership_plan_id"`
	Quantity         int             `gorm:"not null;default:1" json:"quantity"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Plan             MembershipPlan  `gorm:"foreignKey:MembershipPlanID" json:"membership_plan"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Subtotal returns price x quantity for this line.
func (ci *CartItem) Subtotal() decimal.Decimal {
	return ci.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
