package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"hotelbooking/model"
)

var (
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrInvalidRates     = errors.New("invalid rates")
)

// Rates are the admin-configured fractions applied on top of the nightly rate.
type Rates struct {
	TaxRate           float64 // 0.12 for 12%
	DepositPercentage float64 // 0.5 for half upfront
}

func (r Rates) Validate() error {
	if r.TaxRate < 0 || r.TaxRate > 1 || math.IsNaN(r.TaxRate) {
		return fmt.Errorf("%w: tax rate %v outside [0,1]", ErrInvalidRates, r.TaxRate)
	}
	if r.DepositPercentage < 0 || r.DepositPercentage > 1 || math.IsNaN(r.DepositPercentage) {
		return fmt.Errorf("%w: deposit percentage %v outside [0,1]", ErrInvalidRates, r.DepositPercentage)
	}
	return nil
}

// Nights counts started 24h periods between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	return int(math.Ceil(hours / 24))
}

// Price computes the pricing snapshot for a stay. It has no side effects
// and returns the same breakdown for the same inputs.
func Price(baseRate float64, checkIn, checkOut time.Time, rates Rates) (model.Pricing, error) {
	if err := rates.Validate(); err != nil {
		return model.Pricing{}, err
	}
	if baseRate < 0 || math.IsNaN(baseRate) {
		return model.Pricing{}, fmt.Errorf("%w: negative base rate", ErrInvalidRates)
	}
	nights := Nights(checkIn, checkOut)
	if nights < 1 {
		return model.Pricing{}, ErrInvalidDateRange
	}

	subtotal := float64(nights) * baseRate
	taxes := subtotal * rates.TaxRate
	total := subtotal + taxes
	deposit := total * rates.DepositPercentage

	return model.Pricing{
		BaseRate:          baseRate,
		Nights:            nights,
		Subtotal:          subtotal,
		Taxes:             taxes,
		TotalAmount:       total,
		DepositRequired:   deposit,
		RemainingAmount:   total - deposit,
		TaxRate:           rates.TaxRate,
		DepositPercentage: rates.DepositPercentage,
	}, nil
}
