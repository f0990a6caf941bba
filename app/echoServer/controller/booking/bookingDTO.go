package booking

import (
	"time"

	"hotelbooking/model"
)

const dateLayout = "2006-01-02"

// View is the wire shape of a booking: calendar dates as YYYY-MM-DD and
// money rounded to cents.
type View struct {
	ID                 string              `json:"id"`
	BookingReference   string              `json:"bookingReference"`
	RoomType           string              `json:"roomType"`
	CheckInDate        string              `json:"checkInDate"`
	CheckOutDate       string              `json:"checkOutDate"`
	GuestInfo          model.GuestInfo     `json:"guestInfo"`
	NumberOfGuests     int                 `json:"numberOfGuests"`
	Status             model.BookingStatus `json:"status"`
	PaymentStatus      model.PaymentStatus `json:"paymentStatus"`
	Pricing            model.Pricing       `json:"pricing"`
	SpecialRequests    string              `json:"specialRequests,omitempty"`
	TransactionID      *string             `json:"transactionId,omitempty"`
	PaymentMethod      *string             `json:"paymentMethod,omitempty"`
	PaymentProcessedAt *time.Time          `json:"paymentProcessedAt,omitempty"`
	CheckedInAt        *time.Time          `json:"checkedInAt,omitempty"`
	CheckedOutAt       *time.Time          `json:"checkedOutAt,omitempty"`
	CancelledAt        *time.Time          `json:"cancelledAt,omitempty"`
	CancellationReason *string             `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func NewView(b *model.Booking) View {
	return View{
		ID:                 b.ID,
		BookingReference:   b.BookingReference,
		RoomType:           b.RoomTypeID,
		CheckInDate:        b.CheckIn.Format(dateLayout),
		CheckOutDate:       b.CheckOut.Format(dateLayout),
		GuestInfo:          b.Guest,
		NumberOfGuests:     b.NumberOfGuests,
		Status:             b.Status,
		PaymentStatus:      b.PaymentStatus,
		Pricing:            b.Pricing.Rounded(),
		SpecialRequests:    b.SpecialRequests,
		TransactionID:      b.TransactionID,
		PaymentMethod:      b.PaymentMethod,
		PaymentProcessedAt: b.PaymentProcessedAt,
		CheckedInAt:        b.CheckedInAt,
		CheckedOutAt:       b.CheckedOutAt,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

// CreatedResp is the body of POST /v1/bookings.
type CreatedResp struct {
	BookingReference string        `json:"bookingReference"`
	Booking          View          `json:"booking"`
	Pricing          model.Pricing `json:"pricing"`
	PaymentRequired  bool          `json:"paymentRequired"`
}

type ListMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

type AvailabilityResp struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type CancelReq struct {
	Reason string `json:"reason"`
}
