package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)

const (
	PaymentMethodStripe = "stripe"
	PaymentMethodDirect = "direct"
)

// Order is an immutable purchase record. Only status, payment status and the
// completion/cancellation timestamps transition after creation; line items
// and totals are frozen snapshots.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_number"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Status        string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'PENDING'" json:"payment_status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	BillingName   string          `gorm:"type:varchar(150);default:null" json:"billing_name,omitempty"`
	BillingEmail  string          `gorm:"type:varchar(200);default:null" json:"billing_email,omitempty"`
	PaymentMethod string          `gorm:"type:varchar(20);default:null" json:"payment_method,omitempty"`
	// TransactionID is the external payment intent id. Nullable so direct
	// (non-payment) orders do not collide on the unique index.
	TransactionID *string     `gorm:"type:varchar(191);default:null;uniqueIndex" json:"transaction_id,omitempty"`
	Items         []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CompletedAt   *time.Time  `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CancelledAt   *time.Time  `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderItem is a frozen plan snapshot attached to an order.
type OrderItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderID          uint            `gorm:"not null;index" json:"order_id"`
	MembershipPlanID uint            `gorm:"not null;index" json:"membership_plan_id"`
	Quantity         int             `gorm:"not null;default:1" json:"quantity"`
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Plan             MembershipPlan  `gorm:"foreignKey:MembershipPlanID" json:"membership_plan"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// IsCompleted reports whether the order reached its terminal success state.
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}
