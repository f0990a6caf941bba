package gatewayrepo

import (
	"context"
	"strings"
	"time"

	"hotelbooking/util/refgen"
)

// Test card numbers with a fixed outcome.
const (
	CardDeclined          = "4000000000000002"
	CardInsufficientFunds = "4000000000009995"
)

const (
	ReasonDeclined          = "Your card was declined."
	ReasonInsufficientFunds = "Your card has insufficient funds."
	ReasonExpired           = "Your card has expired."
	ReasonInvalidNumber     = "Your card number is invalid."
	ReasonUnsupported       = "Only card payments can be processed."
)

type simulated struct {
	now func() time.Time
	ids *refgen.Generator
}

// NewSimulated approves every well-formed, unexpired card except the test
// decline numbers. Anything that is not a card is declined.
func NewSimulated(now func() time.Time, ids *refgen.Generator) Repo {
	if now == nil {
		now = time.Now
	}
	if ids == nil {
		ids = refgen.New(refgen.TransactionPrefix)
	}
	return &simulated{now: now, ids: ids}
}

func (s *simulated) Charge(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Method != MethodCard {
		return &ChargeResult{Approved: false, DeclineReason: ReasonUnsupported}, nil
	}
	if reason := s.screen(req.Card); reason != "" {
		return &ChargeResult{Approved: false, DeclineReason: reason}, nil
	}
	id, err := s.ids.Next()
	if err != nil {
		return nil, err
	}
	return &ChargeResult{Approved: true, TransactionID: id}, nil
}

func (s *simulated) screen(c Card) string {
	num := strings.ReplaceAll(strings.ReplaceAll(c.Number, " ", ""), "-", "")
	if !Luhn(num) {
		return ReasonInvalidNumber
	}
	now := s.now()
	if c.ExpYear < now.Year() || (c.ExpYear == now.Year() && c.ExpMonth < int(now.Month())) {
		return ReasonExpired
	}
	switch num {
	case CardDeclined:
		return ReasonDeclined
	case CardInsufficientFunds:
		return ReasonInsufficientFunds
	}
	return ""
}

// Luhn reports whether num is a 12-19 digit string with a valid check digit.
func Luhn(num string) bool {
	if len(num) < 12 || len(num) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(num) - 1; i >= 0; i-- {
		d := int(num[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
