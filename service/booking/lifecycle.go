package booking

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"hotelbooking/model"
	bookingrepo "hotelbooking/repository/booking"
	notifyrepo "hotelbooking/repository/notify"
)

const maxReasonLen = 500

var open = []model.BookingStatus{model.BookingPending, model.BookingConfirmed}

// transition loads the booking, checks guard, then applies t conditionally.
// A booking that changed in between reports INVALID_TRANSITION.
func (s *service) transition(ctx context.Context, ref string, t bookingrepo.Transition, guard func(*model.Booking) error) (*model.Booking, error) {
	b, err := s.ByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(t.From, b.Status) {
		return nil, wrap(ErrInvalidTransition, fmt.Sprintf("cannot move a %s booking to %s", b.Status, t.To))
	}
	if guard != nil {
		if err := guard(b); err != nil {
			return nil, err
		}
	}

	t.At = s.now().UTC()
	out, err := s.bookings.ApplyTransition(ctx, b.BookingReference, t)
	if err != nil {
		return nil, internal("update booking status", err)
	}
	if out == nil {
		return nil, wrap(ErrInvalidTransition, "booking changed concurrently")
	}
	return out, nil
}

func (s *service) CheckIn(ctx context.Context, ref string) (*model.Booking, error) {
	t := bookingrepo.Transition{From: open, To: model.BookingCheckedIn}
	return s.transition(ctx, ref, t, func(b *model.Booking) error {
		today := s.today()
		if today.Before(b.CheckIn) {
			return wrap(ErrInvalidTransition, "check-in opens on "+b.CheckIn.Format(dateLayout))
		}
		if !today.Before(b.CheckOut) {
			return wrap(ErrInvalidTransition, "stay has already ended")
		}
		return nil
	})
}

func (s *service) CheckOut(ctx context.Context, ref string) (*model.Booking, error) {
	t := bookingrepo.Transition{From: []model.BookingStatus{model.BookingCheckedIn}, To: model.BookingCheckedOut}
	return s.transition(ctx, ref, t, nil)
}

// Cancel releases the dates. A paid booking is marked refunded; moving the
// money back is handled outside this service.
func (s *service) Cancel(ctx context.Context, ref, reason string) (*model.Booking, error) {
	t := bookingrepo.Transition{From: open, To: model.BookingCancelled, Refund: true}
	if reason = strings.TrimSpace(reason); reason != "" {
		if utf8.RuneCountInString(reason) > maxReasonLen {
			return nil, fieldErr("reason", fmt.Sprintf("must be at most %d characters", maxReasonLen))
		}
		t.Reason = &reason
	}
	b, err := s.transition(ctx, ref, t, nil)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifyrepo.EventBookingCancelled, b)
	return b, nil
}

func (s *service) MarkNoShow(ctx context.Context, ref string) (*model.Booking, error) {
	t := bookingrepo.Transition{From: open, To: model.BookingNoShow}
	return s.transition(ctx, ref, t, func(b *model.Booking) error {
		if !b.CheckIn.Before(s.today()) {
			return wrap(ErrInvalidTransition, "check-in day has not passed")
		}
		return nil
	})
}

func (s *service) SweepNoShows(ctx context.Context) (int64, error) {
	n, err := s.bookings.MarkNoShows(ctx, s.today(), s.now().UTC())
	if err != nil {
		return 0, internal("sweep no-shows", err)
	}
	if n > 0 {
		s.log.Info("marked no-shows", "count", n)
	}
	return n, nil
}
