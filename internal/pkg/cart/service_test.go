package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jmeindl/tiershop/app/models"
	"github.com/jmeindl/tiershop/app/repository"
	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/catalog"
	"github.com/jmeindl/tiershop/internal/pkg/tier"
)

type memPlans struct {
	plans map[uint]models.MembershipPlan
}

func (m *memPlans) ListActive() ([]models.MembershipPlan, error) {
	var active []models.MembershipPlan
	for _, p := range m.plans {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}

func (m *memPlans) GetByID(id uint) (*models.MembershipPlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *memPlans) GetActiveByType(membershipType string) (*models.MembershipPlan, error) {
	for _, p := range m.plans {
		if p.Type == membershipType && p.IsActive {
			plan := p
			return &plan, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memPlans) ListByIDs(ids []uint) ([]models.MembershipPlan, error) {
	var found []models.MembershipPlan
	for _, id := range ids {
		if p, ok := m.plans[id]; ok {
			found = append(found, p)
		}
	}
	return found, nil
}

func (m *memPlans) Save(plan *models.MembershipPlan) error {
	m.plans[plan.ID] = *plan
	return nil
}

type memCarts struct {
	plans      *memPlans
	carts      map[uint]*models.Cart
	nextCartID uint
	nextItemID uint
}

func (m *memCarts) GetByUserID(userID uint) (*models.Cart, error) {
	stored, ok := m.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	copied.Items = make([]models.CartItem, len(stored.Items))
	for i, item := range stored.Items {
		if plan, ok := m.plans.plans[item.MembershipPlanID]; ok {
			item.Plan = plan
		}
		copied.Items[i] = item
	}
	return &copied, nil
}

func (m *memCarts) Create(cart *models.Cart) error {
	if _, exists := m.carts[cart.UserID]; exists {
		return gorm.ErrDuplicatedKey
	}
	m.nextCartID++
	cart.ID = m.nextCartID
	stored := *cart
	stored.Items = nil
	m.carts[cart.UserID] = &stored
	return nil
}

func (m *memCarts) GetByUserIDForUpdate(userID uint) (*models.Cart, error) {
	return m.GetByUserID(userID)
}

func (m *memCarts) CreateItem(item *models.CartItem) error {
	for _, cart := range m.carts {
		if cart.ID == item.CartID {
			m.nextItemID++
			item.ID = m.nextItemID
			cart.Items = append(cart.Items, *item)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memCarts) UpdateItem(item *models.CartItem) error {
	for _, cart := range m.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == item.ID {
				cart.Items[i].Quantity = item.Quantity
				cart.Items[i].Price = item.Price
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memCarts) DeleteItems(itemIDs []uint) error {
	drop := make(map[uint]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		drop[id] = struct{}{}
	}
	for _, cart := range m.carts {
		kept := cart.Items[:0]
		for _, item := range cart.Items {
			if _, gone := drop[item.ID]; !gone {
				kept = append(kept, item)
			}
		}
		cart.Items = kept
	}
	return nil
}

func (m *memCarts) DeleteItemsByCartID(cartID uint) error {
	for _, cart := range m.carts {
		if cart.ID == cartID {
			cart.Items = nil
		}
	}
	return nil
}

type memTx struct {
	repos *repository.Repositories
}

func (m *memTx) InTx(ctx context.Context, fn func(r *repository.Repositories) error) error {
	_ = ctx
	return fn(m.repos)
}

const (
	basicPlanID       = 1
	premiumPlanID     = 2
	premiumPlusPlanID = 3
	retiredPlanID     = 4
)

func newTestService() (*Service, *memCarts) {
	plans := &memPlans{plans: map[uint]models.MembershipPlan{
		basicPlanID:       {ID: basicPlanID, Type: "BASIC", Name: "Basic Membership", CurrentPrice: decimal.RequireFromString("29.00"), IsActive: true},
		premiumPlanID:     {ID: premiumPlanID, Type: "PREMIUM", Name: "Premium Membership", CurrentPrice: decimal.RequireFromString("59.00"), IsActive: true},
		premiumPlusPlanID: {ID: premiumPlusPlanID, Type: "PREMIUM_PLUS", Name: "Premium Plus Membership", CurrentPrice: decimal.RequireFromString("99.00"), IsActive: true},
		retiredPlanID:     {ID: retiredPlanID, Type: "PREMIUM", Name: "Legacy Premium", CurrentPrice: decimal.RequireFromString("49.00"), IsActive: false},
	}}
	carts := &memCarts{plans: plans, carts: map[uint]*models.Cart{}}
	tx := &memTx{repos: &repository.Repositories{Plan: plans, Cart: carts}}
	return NewService(tx, carts, catalog.NewService(plans, nil)), carts
}

func TestAddCreatesCartWithPricedLine(t *testing.T) {
	svc, _ := newTestService()

	view, err := svc.Add(context.Background(), 1, premiumPlanID, 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, uint(premiumPlanID), view.Items[0].MembershipPlanID)
	assert.True(t, view.Items[0].Price.Equal(decimal.RequireFromString("59.00")))
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("59.00")))
	assert.Equal(t, 1, view.ItemCount)
}

func TestAddReplacesEqualOrLowerTiers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, basicPlanID, 1)
	require.NoError(t, err)

	// Upgrading replaces the lower tier.
	view, err := svc.Add(ctx, 1, premiumPlanID, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, uint(premiumPlanID), view.Items[0].MembershipPlanID)

	// Re-adding the same tier replaces the existing line.
	view, err = svc.Add(ctx, 1, premiumPlanID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestAddKeepsStrictlyHigherTier(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, premiumPlusPlanID, 1)
	require.NoError(t, err)

	view, err := svc.Add(ctx, 1, basicPlanID, 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	got := map[uint]bool{}
	for _, item := range view.Items {
		got[item.MembershipPlanID] = true
	}
	assert.True(t, got[premiumPlusPlanID])
	assert.True(t, got[basicPlanID])
}

func TestAddValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, premiumPlanID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))

	_, err = svc.Add(ctx, 1, 99, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.Add(ctx, 1, retiredPlanID, 1)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
}

func TestUpdateQuantity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	view, err := svc.Add(ctx, 1, premiumPlanID, 1)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	view, err = svc.UpdateQuantity(ctx, 1, itemID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.ItemCount)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("177.00")))

	_, err = svc.UpdateQuantity(ctx, 1, itemID, 0)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))

	// Another user cannot touch the line.
	_, err = svc.UpdateQuantity(ctx, 2, itemID, 2)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRemove(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	view, err := svc.Add(ctx, 1, basicPlanID, 1)
	require.NoError(t, err)
	itemID := view.Items[0].ID

	require.NoError(t, svc.Remove(ctx, 1, itemID))

	view, err = svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	err = svc.Remove(ctx, 1, itemID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, 1, premiumPlanID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, 1))

	view, err := svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Subtotal.IsZero())

	// Clearing a user without a cart is a no-op.
	require.NoError(t, svc.Clear(ctx, 42))
}

func TestSnapshotCreatesEmptyCartOnFirstAccess(t *testing.T) {
	svc, carts := newTestService()

	view, err := svc.Snapshot(context.Background(), 7)
	require.NoError(t, err)

	assert.NotZero(t, view.ID)
	assert.Equal(t, uint(7), view.UserID)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.ItemCount)
	assert.Contains(t, carts.carts, uint(7))
}

func TestNewViewRecomputesTotals(t *testing.T) {
	cart := &models.Cart{
		ID:     1,
		UserID: 1,
		Items: []models.CartItem{
			{ID: 1, Quantity: 2, Price: decimal.RequireFromString("29.00")},
			{ID: 2, Quantity: 1, Price: decimal.RequireFromString("99.00")},
		},
	}

	view := NewView(cart)
	assert.True(t, view.Subtotal.Equal(decimal.RequireFromString("157.00")))
	assert.Equal(t, 3, view.ItemCount)
}

func TestHighestTier(t *testing.T) {
	items := []models.CartItem{
		{Plan: models.MembershipPlan{Type: "BASIC"}},
		{Plan: models.MembershipPlan{Type: "PREMIUM_PLUS"}},
		{Plan: models.MembershipPlan{Type: "PREMIUM"}},
	}
	assert.Equal(t, tier.PremiumPlus, HighestTier(items))
	assert.Equal(t, tier.Tier(""), HighestTier(nil))
}
