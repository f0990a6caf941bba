// model/roomType.go
package model

import "time"

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomReserved    RoomStatus = "reserved"
	RoomMaintenance RoomStatus = "maintenance"
	RoomOutOfOrder  RoomStatus = "outOfOrder"
)

type RoomType struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	BasePrice    float64    `json:"basePrice"`
	WeekendPrice float64    `json:"weekendPrice"`
	HolidayPrice float64    `json:"holidayPrice"`
	MaxGuests    int        `json:"maxGuests"`
	Status       RoomStatus `json:"status"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Offerable reports whether new bookings may be taken for the room type.
func (r RoomType) Offerable() bool {
	return r.IsActive && r.Status == RoomAvailable
}
