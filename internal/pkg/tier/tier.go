package tier

import (
	"strings"

	"github.com/jmeindl/tiershop/internal/pkg/apperr"
)

// Tier is a closed membership level enum with a total order.
type Tier string

const (
	Basic       Tier = "BASIC"
	Premium     Tier = "PREMIUM"
	PremiumPlus Tier = "PREMIUM_PLUS"
)

// Rank returns the position of the tier in the upgrade order.
// Unknown values rank 0, below every valid tier.
func Rank(t Tier) int {
	switch t {
	case Basic:
		return 1
	case Premium:
		return 2
	case PremiumPlus:
		return 3
	default:
		return 0
	}
}

// Parse normalizes and validates a tier value coming from the boundary.
func Parse(raw string) (Tier, error) {
	switch t := Tier(strings.ToUpper(strings.TrimSpace(raw))); t {
	case Basic, Premium, PremiumPlus:
		return t, nil
	default:
		return "", apperr.Invalidf("unknown membership tier %q", raw)
	}
}

// Max returns the higher ranked of two tiers.
func Max(a, b Tier) Tier {
	if Rank(b) > Rank(a) {
		return b
	}
	return a
}

func (t Tier) String() string {
	return string(t)
}
