package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmeindl/tiershop/app/models"
	"github.com/jmeindl/tiershop/app/repository"
	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/cart"
)

// Line is a requested order position: plan, quantity and the price snapshot
// the cart captured at add time.
type Line struct {
	PlanID   uint
	Quantity int
	Price    decimal.Decimal
}

// Billing is the optional billing snapshot frozen onto the order.
type Billing struct {
	Name  string
	Email string
}

// Builder converts line items into persisted, immutable order records.
type Builder struct {
	tx    repository.TxManager
	users repository.UserRepository
	carts *cart.Service
}

// NewBuilder creates an order builder from injected dependencies.
func NewBuilder(tx repository.TxManager, users repository.UserRepository, carts *cart.Service) *Builder {
	return &Builder{tx: tx, users: users, carts: carts}
}

// Totals computes subtotal, discount and total for a set of lines. The
// discount is fixed at zero; a promo engine would hook in here.
func Totals(lines []Line) (subtotal, discount, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	discount = decimal.Zero
	return subtotal, discount, subtotal.Sub(discount)
}

// NewOrderNumber generates a human-readable order number. Monotonic wall
// time plus a random suffix makes collisions negligible; the unique index on
// orders.order_number is the authoritative guard.
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

// Assemble validates lines against the plan catalog and returns an unsaved
// order with item snapshots attached. Missing plan ids are reported
// collectively in a single error. Callers persist the result inside their
// own transaction.
func (b *Builder) Assemble(r *repository.Repositories, userID uint, lines []Line, billing *Billing) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, apperr.Invalidf("order must contain at least one item")
	}

	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.Invalidf("quantity must be at least 1")
		}
		if _, ok := seen[line.PlanID]; !ok {
			seen[line.PlanID] = struct{}{}
			ids = append(ids, line.PlanID)
		}
	}

	plans, err := r.Plan.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]struct{}, len(plans))
	for _, plan := range plans {
		known[plan.ID] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperr.Invalidf("membership plans not found: %s", strings.Join(missing, ", "))
	}

	subtotal, discount, total := Totals(lines)

	order := &models.Order{
		OrderNumber:   NewOrderNumber(),
		UserID:        userID,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         total,
	}
	if billing != nil {
		order.BillingName = billing.Name
		order.BillingEmail = billing.Email
	}
	for _, line := range lines {
		order.Items = append(order.Items, models.OrderItem{
			MembershipPlanID: line.PlanID,
			Quantity:         line.Quantity,
			Price:            line.Price,
			Subtotal:         line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	return order, nil
}

// Build validates and persists a new PENDING order with its item snapshots
// in one transaction, then returns the hydrated record.
func (b *Builder) Build(ctx context.Context, userID uint, lines []Line, billing *Billing) (*models.Order, error) {
	var orderID uint
	err := b.tx.InTx(ctx, func(r *repository.Repositories) error {
		order, err := b.Assemble(r, userID, lines, billing)
		if err != nil {
			return err
		}
		if err := r.Order.Create(order); err != nil {
			if repository.IsDuplicateKey(err) {
				return apperr.Wrap(apperr.KindConflict, err, "order number collision")
			}
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.Hydrate(ctx, orderID)
}

// BuildFromCart builds a PENDING order from the user's current cart, with
// the billing snapshot taken from the user record.
func (b *Builder) BuildFromCart(ctx context.Context, userID uint) (*models.Order, error) {
	view, err := b.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, apperr.Invalidf("cart is empty")
	}

	billing, err := b.billingFor(userID)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, userID, LinesFromCart(view.Items), billing)
}

// Hydrate re-reads an order with item and plan snapshots attached.
func (b *Builder) Hydrate(ctx context.Context, orderID uint) (*models.Order, error) {
	var order *models.Order
	err := b.tx.InTx(ctx, func(r *repository.Repositories) error {
		var err error
		order, err = r.Order.GetByID(orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// OrdersByUser lists the user's orders, newest first.
func (b *Builder) OrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := b.tx.InTx(ctx, func(r *repository.Repositories) error {
		var err error
		orders, err = r.Order.ListByUser(userID)
		return err
	})
	return orders, err
}

// OrderByID returns one of the user's orders; other users' orders are
// indistinguishable from missing ones.
func (b *Builder) OrderByID(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	var order *models.Order
	err := b.tx.InTx(ctx, func(r *repository.Repositories) error {
		var err error
		order, err = r.Order.GetByIDForUser(orderID, userID)
		if err != nil && repository.IsNotFound(err) {
			return apperr.NotFoundf("order not found")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (b *Builder) billingFor(userID uint) (*Billing, error) {
	user, err := b.users.GetByID(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &Billing{Name: user.Name, Email: user.Email}, nil
}

// LinesFromCart converts cart items to order lines, carrying the cart's
// price snapshots.
func LinesFromCart(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			PlanID:   item.MembershipPlanID,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return lines
}
