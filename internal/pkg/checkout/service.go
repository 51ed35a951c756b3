package checkout

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jmeindl/tiershop/app/models"
	"github.com/jmeindl/tiershop/app/repository"
	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/cart"
	"github.com/jmeindl/tiershop/internal/pkg/order"
	"github.com/jmeindl/tiershop/internal/pkg/payment"
)

// Gateway is the payment provider surface the coordinator depends on.
// Implemented by payment.StripeClient; tests inject a fake.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, meta payment.IntentMetadata) (*payment.Intent, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (*payment.Intent, error)
	CreateRefund(ctx context.Context, intentID string) (*payment.Refund, error)
}

// IntentResponse is returned to the client so it can confirm the payment
// with the provider directly.
type IntentResponse struct {
	ClientSecret string `json:"client_secret"`
	IntentID     string `json:"payment_intent_id"`
}

// StatusResponse reports the provider-side state of an intent.
type StatusResponse struct {
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
}

// Service coordinates checkout: it builds totals from the live cart, talks
// to the payment gateway, and commits order completion, membership promotion
// and cart clearing as one transaction.
type Service struct {
	tx      repository.TxManager
	carts   *cart.Service
	orders  *order.Builder
	gateway Gateway
}

// NewService creates a checkout coordinator from injected dependencies.
func NewService(tx repository.TxManager, carts *cart.Service, orders *order.Builder, gateway Gateway) *Service {
	return &Service{tx: tx, carts: carts, orders: orders, gateway: gateway}
}

// CreatePaymentIntent authorizes a charge for the user's current cart total.
// The total is computed server side from the live cart; nothing is persisted
// locally until the payment is verified.
func (s *Service) CreatePaymentIntent(ctx context.Context, userID uint) (*IntentResponse, error) {
	view, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, apperr.Invalidf("cart is empty")
	}

	_, _, total := order.Totals(order.LinesFromCart(view.Items))

	// Single-plan carts are the norm; the first line names the purchase.
	first := view.Items[0]
	intent, err := s.gateway.CreatePaymentIntent(ctx, total, payment.IntentMetadata{
		UserID:   userID,
		PlanID:   first.MembershipPlanID,
		PlanName: first.Plan.Name,
	})
	if err != nil {
		return nil, err
	}

	return &IntentResponse{ClientSecret: intent.ClientSecret, IntentID: intent.ID}, nil
}

// VerifyAndComplete confirms a succeeded payment with the provider and then,
// in one transaction, persists the completed order, promotes the user's
// membership tier and clears the cart. Re-invoking with the same intent id
// after success returns the already created order.
func (s *Service) VerifyAndComplete(ctx context.Context, intentID string, userID uint) (*models.Order, error) {
	intent, err := s.gateway.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, apperr.Paymentf("payment not successful, status: %s", intent.Status)
	}
	if owner, ok := intent.OwnerID(); !ok || owner != userID {
		return nil, apperr.Forbiddenf("payment does not belong to this user")
	}

	var orderID uint
	err = s.tx.InTx(ctx, func(r *repository.Repositories) error {
		// Idempotency: the intent id is the key. A prior completion, even
		// one from a crashed retry, short-circuits here.
		if existing, err := r.Order.GetByTransactionID(intent.ID); err == nil {
			orderID = existing.ID
			return nil
		} else if !repository.IsNotFound(err) {
			return err
		}

		locked, err := r.Cart.GetByUserIDForUpdate(userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.Invalidf("cart is empty")
			}
			return err
		}
		if len(locked.Items) == 0 {
			// A concurrent completion already consumed this cart.
			return apperr.Invalidf("cart is empty")
		}

		completed, err := s.assembleCompleted(r, userID, locked.Items, models.PaymentMethodStripe, &intent.ID)
		if err != nil {
			return err
		}
		if err := r.Order.Create(completed); err != nil {
			if repository.IsDuplicateKey(err) {
				// A racing verification won the unique index on the
				// transaction id; hand back its order.
				if existing, lookupErr := r.Order.GetByTransactionID(intent.ID); lookupErr == nil {
					orderID = existing.ID
					return nil
				}
				return apperr.Wrap(apperr.KindConflict, err, "concurrent checkout detected")
			}
			return err
		}
		orderID = completed.ID

		if err := s.promoteAndClear(r, userID, locked); err != nil {
			return err
		}

		log.Printf("order %s completed for user %d via payment intent %s", completed.OrderNumber, userID, intent.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orders.Hydrate(ctx, orderID)
}

// CheckoutFromCart completes a purchase without an external payment. It is a
// separate trusted entry point with the same atomic completion unit, not
// reachable from the payment-backed flow.
func (s *Service) CheckoutFromCart(ctx context.Context, userID uint) (*models.Order, error) {
	var orderID uint
	err := s.tx.InTx(ctx, func(r *repository.Repositories) error {
		locked, err := r.Cart.GetByUserIDForUpdate(userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.Invalidf("cart is empty")
			}
			return err
		}
		if len(locked.Items) == 0 {
			return apperr.Invalidf("cart is empty")
		}

		completed, err := s.assembleCompleted(r, userID, locked.Items, models.PaymentMethodDirect, nil)
		if err != nil {
			return err
		}
		if err := r.Order.Create(completed); err != nil {
			if repository.IsDuplicateKey(err) {
				return apperr.Wrap(apperr.KindConflict, err, "order number collision")
			}
			return err
		}
		orderID = completed.ID

		if err := s.promoteAndClear(r, userID, locked); err != nil {
			return err
		}

		log.Printf("order %s completed for user %d via direct checkout", completed.OrderNumber, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orders.Hydrate(ctx, orderID)
}

// PaymentStatus reports the provider-side status and amount of an intent
// owned by the user.
func (s *Service) PaymentStatus(ctx context.Context, intentID string, userID uint) (*StatusResponse, error) {
	intent, err := s.gateway.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if owner, ok := intent.OwnerID(); !ok || owner != userID {
		return nil, apperr.Forbiddenf("payment does not belong to this user")
	}
	return &StatusResponse{Status: intent.Status, Amount: intent.AmountDecimal()}, nil
}

// Refund refunds the charge behind an intent owned by the user and marks the
// matching order's payment as refunded.
func (s *Service) Refund(ctx context.Context, intentID string, userID uint) (*payment.Refund, error) {
	intent, err := s.gateway.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if owner, ok := intent.OwnerID(); !ok || owner != userID {
		return nil, apperr.Forbiddenf("payment does not belong to this user")
	}

	refund, err := s.gateway.CreateRefund(ctx, intent.ID)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(r *repository.Repositories) error {
		existing, err := r.Order.GetByTransactionID(intent.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil
			}
			return err
		}
		existing.PaymentStatus = models.PaymentStatusRefunded
		return r.Order.Update(existing)
	})
	if err != nil {
		return nil, err
	}
	return refund, nil
}

// assembleCompleted builds an order from cart items and stamps it completed.
func (s *Service) assembleCompleted(r *repository.Repositories, userID uint, items []models.CartItem, method string, transactionID *string) (*models.Order, error) {
	billing := billingFor(r, userID)
	assembled, err := s.orders.Assemble(r, userID, order.LinesFromCart(items), billing)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	assembled.Status = models.OrderStatusCompleted
	assembled.PaymentStatus = models.PaymentStatusCompleted
	assembled.PaymentMethod = method
	assembled.TransactionID = transactionID
	assembled.CompletedAt = &now
	return assembled, nil
}

// promoteAndClear applies the membership promotion and empties the cart
// inside the surrounding completion transaction.
func (s *Service) promoteAndClear(r *repository.Repositories, userID uint, locked *models.Cart) error {
	best := cart.HighestTier(locked.Items)
	if err := r.User.SetMembershipType(userID, string(best)); err != nil {
		return err
	}
	return r.Cart.DeleteItemsByCartID(locked.ID)
}

func billingFor(r *repository.Repositories, userID uint) *order.Billing {
	user, err := r.User.GetByID(userID)
	if err != nil {
		return nil
	}
	return &order.Billing{Name: user.Name, Email: user.Email}
}
