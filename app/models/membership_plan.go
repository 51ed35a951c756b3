package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmeindl/tiershop/internal/pkg/tier"
)

// MembershipPlan is a catalog entry for a purchasable membership tier.
// Plans referenced by orders are snapshotted at order time, so catalog edits
// never alter historical orders.
type MembershipPlan struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Type         string          `gorm:"type:varchar(20);not null;index" json:"type"`
	Name         string          `gorm:"type:varchar(150);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	CurrentPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"current_price"`
	IsActive     bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Tier returns the plan's membership tier.
func (p *MembershipPlan) Tier() tier.Tier {
	return tier.Tier(p.Type)
}

// Rank returns the plan tier's position in the upgrade order.
func (p *MembershipPlan) Rank() int {
	return tier.Rank(p.Tier())
}
