package repository

import (
	"gorm.io/gorm"

	"github.com/jmeindl/tiershop/app/models"
)

// planRepository implements PlanRepository using GORM
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) ListActive() ([]models.MembershipPlan, error) {
	var plans []models.MembershipPlan
	err := r.db.Where("is_active = ?", true).
		Order("current_price ASC").
		Find(&plans).Error
	return plans, err
}

func (r *planRepository) GetByID(id uint) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) GetActiveByType(membershipType string) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := r.db.Where("type = ? AND is_active = ?", membershipType, true).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListByIDs(ids []uint) ([]models.MembershipPlan, error) {
	var plans []models.MembershipPlan
	if len(ids) == 0 {
		return plans, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&plans).Error
	return plans, err
}

func (r *planRepository) Save(plan *models.MembershipPlan) error {
	return r.db.Save(plan).Error
}
