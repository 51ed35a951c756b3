package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmeindl/tiershop/app/models"
	"github.com/jmeindl/tiershop/app/repository"
	"github.com/jmeindl/tiershop/internal/pkg/apperr"
	"github.com/jmeindl/tiershop/internal/pkg/tier"
)

const (
	activePlansCacheKey = "catalog:active_plans"
	activePlansCacheTTL = 5 * time.Minute
)

// Cache is the subset of cache operations the catalog needs. The production
// implementation is backed by Redis; tests inject a fake.
type Cache interface {
	Get(key string) (string, error)
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
}

// Service exposes read access to the membership plan catalog. The purchase
// flow never writes plans; catalog changes only affect future carts.
type Service struct {
	plans repository.PlanRepository
	cache Cache
}

// NewService creates a catalog service from an injected repository and cache.
func NewService(plans repository.PlanRepository, cache Cache) *Service {
	return &Service{plans: plans, cache: cache}
}

// ListActive returns all active plans sorted by price ascending. Results are
// served from the cache when fresh; a repository read repopulates it.
func (s *Service) ListActive(ctx context.Context) ([]models.MembershipPlan, error) {
	_ = ctx
	if s.cache != nil {
		if cached, err := s.cache.Get(activePlansCacheKey); err == nil && cached != "" {
			var plans []models.MembershipPlan
			if err := json.Unmarshal([]byte(cached), &plans); err == nil {
				return plans, nil
			}
			// Corrupt cache entries are dropped and rebuilt from the DB.
			_ = s.cache.Delete(activePlansCacheKey)
		}
	}

	plans, err := s.plans.ListActive()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(plans); err == nil {
			_ = s.cache.Set(activePlansCacheKey, string(encoded), activePlansCacheTTL)
		}
	}
	return plans, nil
}

// Get returns a plan by id, active or not.
func (s *Service) Get(ctx context.Context, id uint) (*models.MembershipPlan, error) {
	_ = ctx
	plan, err := s.plans.GetByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("membership plan not found")
		}
		return nil, err
	}
	return plan, nil
}

// GetByTier returns the active plan for a tier.
func (s *Service) GetByTier(ctx context.Context, t tier.Tier) (*models.MembershipPlan, error) {
	_ = ctx
	plan, err := s.plans.GetActiveByType(string(t))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("membership plan of type %s not found", t)
		}
		return nil, err
	}
	return plan, nil
}

// InvalidateActive drops the cached active plan list. Admin tooling calls
// this after editing the catalog.
func (s *Service) InvalidateActive() {
	if s.cache != nil {
		_ = s.cache.Delete(activePlansCacheKey)
	}
}
