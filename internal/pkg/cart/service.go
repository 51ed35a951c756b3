package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jmeindl/tiershop/app/models"
	"github.com/jmeindl/tiershop/app/repository"
	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/catalog"
	"github.com/jmeindl/tiershop/internal/pkg/tier"
)

// View is the computed read model of a cart. Subtotal and item count are
// always recomputed from the current line items, never cached.
type View struct {
	ID        uint              `json:"id"`
	UserID    uint              `json:"user_id"`
	Items     []models.CartItem `json:"items"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	ItemCount int               `json:"item_count"`
}

// Service manages a user's cart. Mutations run inside a transaction that
// locks the cart row, so concurrent requests for the same user serialize.
type Service struct {
	tx      repository.TxManager
	carts   repository.CartRepository
	catalog *catalog.Service
}

// NewService creates a cart service from injected dependencies.
func NewService(tx repository.TxManager, carts repository.CartRepository, cat *catalog.Service) *Service {
	return &Service{tx: tx, carts: carts, catalog: cat}
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
func (s *Service) GetOrCreate(ctx context.Context, userID uint) (*models.Cart, error) {
	_ = ctx
	cart, err := s.carts.GetByUserID(userID)
	if err == nil {
		return cart, nil
	}
	if !repository.IsNotFound(err) {
		return nil, err
	}

	fresh := &models.Cart{UserID: userID}
	if err := s.carts.Create(fresh); err != nil {
		// A concurrent first access may have created the cart already.
		if repository.IsDuplicateKey(err) {
			return s.carts.GetByUserID(userID)
		}
		return nil, err
	}
	return fresh, nil
}

// Snapshot returns the current cart view for the user.
func (s *Service) Snapshot(ctx context.Context, userID uint) (*View, error) {
	cart, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewView(cart), nil
}

// Add puts a membership plan into the cart. Every existing line whose tier
// ranks equal or lower than the new plan is removed first, so the cart ends
// up holding the plan added last unless a strictly higher tier is already
// present. The line is priced at the plan's current price.
func (s *Service) Add(ctx context.Context, userID, planID uint, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, apperr.Invalidf("quantity must be at least 1")
	}

	plan, err := s.catalog.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, apperr.Invalidf("this membership plan is not available")
	}

	newRank := plan.Rank()
	err = s.tx.InTx(ctx, func(r *repository.Repositories) error {
		locked, err := r.Cart.GetByUserIDForUpdate(userID)
		if err != nil {
			if !repository.IsNotFound(err) {
				return err
			}
			locked = &models.Cart{UserID: userID}
			if err := r.Cart.Create(locked); err != nil {
				return err
			}
		}

		var replaced []uint
		for _, item := range locked.Items {
			if item.Plan.Rank() <= newRank {
				replaced = append(replaced, item.ID)
			}
		}
		if err := r.Cart.DeleteItems(replaced); err != nil {
			return err
		}

		return r.Cart.CreateItem(&models.CartItem{
			CartID:           locked.ID,
			MembershipPlanID: plan.ID,
			Quantity:         quantity,
			Price:            plan.CurrentPrice,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Snapshot(ctx, userID)
}

// UpdateQuantity changes the quantity of a line item owned by the user.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, apperr.Invalidf("quantity must be at least 1")
	}

	err := s.tx.InTx(ctx, func(r *repository.Repositories) error {
		item, err := s.ownedItem(r, userID, itemID)
		if err != nil {
			return err
		}
		item.Quantity = quantity
		return r.Cart.UpdateItem(item)
	})
	if err != nil {
		return nil, err
	}

	return s.Snapshot(ctx, userID)
}

// Remove deletes a line item owned by the user.
func (s *Service) Remove(ctx context.Context, userID, itemID uint) error {
	return s.tx.InTx(ctx, func(r *repository.Repositories) error {
		item, err := s.ownedItem(r, userID, itemID)
		if err != nil {
			return err
		}
		return r.Cart.DeleteItems([]uint{item.ID})
	})
}

// Clear removes every line item. Clearing a missing or empty cart is a no-op.
func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.tx.InTx(ctx, func(r *repository.Repositories) error {
		locked, err := r.Cart.GetByUserIDForUpdate(userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return err
		}
		return r.Cart.DeleteItemsByCartID(locked.ID)
	})
}

// ownedItem resolves an item id against the user's locked cart. Items in
// other users' carts are indistinguishable from missing ones.
func (s *Service) ownedItem(r *repository.Repositories, userID, itemID uint) (*models.CartItem, error) {
	locked, err := r.Cart.GetByUserIDForUpdate(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("cart item not found")
		}
		return nil, err
	}
	for i := range locked.Items {
		if locked.Items[i].ID == itemID {
			return &locked.Items[i], nil
		}
	}
	return nil, apperr.NotFoundf("cart item not found")
}

// NewView computes the read model for a cart.
func NewView(cart *models.Cart) *View {
	view := &View{
		ID:       cart.ID,
		UserID:   cart.UserID,
		Items:    cart.Items,
		Subtotal: decimal.Zero,
	}
	if view.Items == nil {
		view.Items = []models.CartItem{}
	}
	for _, item := range cart.Items {
		view.Subtotal = view.Subtotal.Add(item.Subtotal())
		view.ItemCount += item.Quantity
	}
	return view
}

// HighestTier returns the highest ranked tier present in the cart, defensive
// against carts that ever hold more than one line.
func HighestTier(items []models.CartItem) tier.Tier {
	var best tier.Tier
	for _, item := range items {
		best = tier.Max(best, item.Plan.Tier())
	}
	return best
}
