package model

// CreateBookingReq is the guest-facing booking payload.
// swagger:model CreateBookingReq
type CreateBookingReq struct {
	GuestName        string               `json:"guestName" validate:"required,max=100"`
	GuestEmail       string               `json:"guestEmail" validate:"required,email"`
	GuestPhone       string               `json:"guestPhone" validate:"required,min=7,max=20"`
	CheckInDate      string               `json:"checkInDate" validate:"required"`
	CheckOutDate     string               `json:"checkOutDate" validate:"required"`
	NumberOfGuests   int                  `json:"numberOfGuests" validate:"required,gte=1,lte=20"`
	RoomType         string               `json:"roomType" validate:"required"`
	SpecialRequests  string               `json:"specialRequests,omitempty" validate:"max=500"`
	AdditionalGuests []AdditionalGuestReq `json:"additionalGuests,omitempty" validate:"omitempty,dive"`
}

type AdditionalGuestReq struct {
	Name string `json:"name" validate:"required,max=100"`
	Age  *int   `json:"age,omitempty" validate:"omitempty,gte=0,lte=120"`
}
