package repository

import (
	"gorm.io/gorm"

	"github.com/jmeindl/tiershop/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
	SetMembershipType(userID uint, membershipType string) error
}

// PlanRepository defines the interface for membership plan catalog reads.
// The catalog is read-only to the purchase flow; Save exists for admin
// tooling and seeds.
type PlanRepository interface {
	ListActive() ([]models.MembershipPlan, error)
	GetByID(id uint) (*models.MembershipPlan, error)
	GetActiveByType(membershipType string) (*models.MembershipPlan, error)
	ListByIDs(ids []uint) ([]models.MembershipPlan, error)
	Save(plan *models.MembershipPlan) error
}

// CartRepository defines the interface for cart-related database operations
type CartRepository interface {
	// GetByUserID returns the user's cart with items and plans preloaded,
	// or gorm.ErrRecordNotFound if none exists yet.
	GetByUserID(userID uint) (*models.Cart, error)
	Create(cart *models.Cart) error
	// GetByUserIDForUpdate locks the cart row for the duration of the
	// surrounding transaction. Only meaningful on a tx-scoped repository.
	GetByUserIDForUpdate(userID uint) (*models.Cart, error)
	CreateItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	DeleteItems(itemIDs []uint) error
	DeleteItemsByCartID(cartID uint) error
}

// OrderRepository defines the interface for order-related database operations
type OrderRepository interface {
	// Create persists the order together with its line item snapshots.
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUser(id, userID uint) (*models.Order, error)
	// GetByTransactionID returns the order holding the given external
	// payment reference, or gorm.ErrRecordNotFound.
	GetByTransactionID(transactionID string) (*models.Order, error)
	ListByUser(userID uint) ([]models.Order, error)
	Update(order *models.Order) error
}

// Repositories holds all repository instances
type Repositories struct {
	User  UserRepository
	Plan  PlanRepository
	Cart  CartRepository
	Order OrderRepository
}

// NewRepositories creates all repositories bound to the given DB handle.
// The handle may be a transaction; every repository then runs inside it.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:  NewUserRepository(db),
		Plan:  NewPlanRepository(db),
		Cart:  NewCartRepository(db),
		Order: NewOrderRepository(db),
	}
}
