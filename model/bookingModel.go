// model/booking.go
package model

import (
	"math"
	"time"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checkedIn"
	BookingCheckedOut BookingStatus = "checkedOut"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "noShow"
)

// ActiveStatuses occupy the room for overlap purposes.
var ActiveStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCheckedIn}

func (s BookingStatus) IsActive() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type AdditionalGuest struct {
	Name string `json:"name"`
	Age  *int   `json:"age,omitempty"`
}

type GuestInfo struct {
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Phone            string            `json:"phone"`
	AdditionalGuests []AdditionalGuest `json:"additionalGuests,omitempty"`
}

// Pricing is the snapshot taken when the booking is created. Values keep
// full precision; use Rounded for presentation.
type Pricing struct {
	BaseRate          float64 `json:"baseRate"`
	Nights            int     `json:"nights"`
	Subtotal          float64 `json:"subtotal"`
	Taxes             float64 `json:"taxes"`
	TotalAmount       float64 `json:"totalAmount"`
	DepositRequired   float64 `json:"depositRequired"`
	RemainingAmount   float64 `json:"remainingAmount"`
	TaxRate           float64 `json:"taxRate"`
	DepositPercentage float64 `json:"depositPercentage"`
}

// Round2 rounds a monetary value to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (p Pricing) Rounded() Pricing {
	p.BaseRate = Round2(p.BaseRate)
	p.Subtotal = Round2(p.Subtotal)
	p.Taxes = Round2(p.Taxes)
	p.TotalAmount = Round2(p.TotalAmount)
	p.DepositRequired = Round2(p.DepositRequired)
	p.RemainingAmount = Round2(p.RemainingAmount)
	return p
}

type Booking struct {
	ID                 string        `json:"id"`
	BookingReference   string        `json:"bookingReference"`
	RoomTypeID         string        `json:"roomType"`
	CheckIn            time.Time     `json:"checkIn"`
	CheckOut           time.Time     `json:"checkOut"`
	Guest              GuestInfo     `json:"guestInfo"`
	NumberOfGuests     int           `json:"numberOfGuests"`
	Status             BookingStatus `json:"status"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	Pricing            Pricing       `json:"pricing"`
	SpecialRequests    string        `json:"specialRequests,omitempty"`
	TransactionID      *string       `json:"transactionId,omitempty"`
	PaymentMethod      *string       `json:"paymentMethod,omitempty"`
	PaymentProcessedAt *time.Time    `json:"paymentProcessedAt,omitempty"`
	CheckedInAt        *time.Time    `json:"checkedInAt,omitempty"`
	CheckedOutAt       *time.Time    `json:"checkedOutAt,omitempty"`
	CancelledAt        *time.Time    `json:"cancelledAt,omitempty"`
	CancellationReason *string       `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// PaymentSnapshot is the read model behind GET /v1/payment.
type PaymentSnapshot struct {
	BookingReference   string        `json:"bookingReference"`
	Status             BookingStatus `json:"status"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	TotalAmount        float64       `json:"totalAmount"`
	DepositRequired    float64       `json:"depositRequired"`
	RemainingAmount    float64       `json:"remainingAmount"`
	TransactionID      *string       `json:"transactionId,omitempty"`
	PaymentMethod      *string       `json:"paymentMethod,omitempty"`
	PaymentProcessedAt *time.Time    `json:"paymentProcessedAt,omitempty"`
}
