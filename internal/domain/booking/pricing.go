package booking

import (
	"fmt"

	"github.com/holidaze/service-booking/internal/domain/availability"
)

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the price of the stay in cents.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	Stay              availability.DateRange
	NightlyPriceCents int64
	Guests            int
}

// NightlyPricingStrategy charges the venue's nightly rate per night stayed.
// A same-day stay (check-in equals check-out) is billed as one night.
type NightlyPricingStrategy struct{}

// NewNightlyPricingStrategy creates a new NightlyPricingStrategy.
func NewNightlyPricingStrategy() *NightlyPricingStrategy {
	return &NightlyPricingStrategy{}
}

// Calculate computes nights * nightly rate.
func (s *NightlyPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.NightlyPriceCents < 0 {
		return 0, fmt.Errorf("nightly price cannot be negative")
	}
	nights := params.Stay.Nights()
	if nights < 0 {
		return 0, fmt.Errorf("stay ends before it starts")
	}
	if nights == 0 {
		nights = 1
	}
	return int64(nights) * params.NightlyPriceCents, nil
}
