package availability

import (
	"context"
	"errors"
	"time"

	"hotelbooking/model"
)

var ErrRoomTypeNotFound = errors.New("room type not found")

const (
	ReasonBooked       = "dates overlap an existing booking"
	ReasonNotOfferable = "room type is not open for booking"
)

type Result struct {
	Available bool
	Reason    string
	Conflict  *model.Booking
}

// Overlaps applies the half-open rule: [aIn,aOut) and [bIn,bOut) share a
// night iff aIn < bOut and bIn < aOut. Back-to-back stays do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// FindConflict returns the first active booking overlapping [in,out), or nil.
func FindConflict(bookings []model.Booking, in, out time.Time) *model.Booking {
	for i := range bookings {
		b := &bookings[i]
		if !b.Status.IsActive() {
			continue
		}
		if Overlaps(b.CheckIn, b.CheckOut, in, out) {
			return b
		}
	}
	return nil
}

type Repo interface {
	GetRoomType(ctx context.Context, id string) (*model.RoomType, error)
	// ListActiveOverlapping may over-select; FindConflict does the final check.
	ListActiveOverlapping(ctx context.Context, roomTypeID string, in, out time.Time) ([]model.Booking, error)
}

type Checker interface {
	Check(ctx context.Context, roomTypeID string, in, out time.Time) (*Result, error)
}

type checker struct{ r Repo }

func New(r Repo) Checker { return &checker{r: r} }

// Check never reports unavailability as an error; errors are store failures
// or an unknown room type.
func (c *checker) Check(ctx context.Context, roomTypeID string, in, out time.Time) (*Result, error) {
	rt, err := c.r.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	if rt == nil || !rt.IsActive {
		return nil, ErrRoomTypeNotFound
	}
	if !rt.Offerable() {
		return &Result{Available: false, Reason: ReasonNotOfferable}, nil
	}

	active, err := c.r.ListActiveOverlapping(ctx, roomTypeID, in, out)
	if err != nil {
		return nil, err
	}
	if b := FindConflict(active, in, out); b != nil {
		return &Result{Available: false, Reason: ReasonBooked, Conflict: b}, nil
	}
	return &Result{Available: true}, nil
}
