package booking

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"hotelbooking/model"
	"hotelbooking/util/validate"
)

const (
	dateLayout = "2006-01-02"
	maxNights  = 365
)

// stay holds check-in and check-out as UTC-midnight calendar dates.
type stay struct {
	checkIn  time.Time
	checkOut time.Time
}

// validateCreate normalizes req in place and collects every field problem
// before returning.
func (s *service) validateCreate(req *model.CreateBookingReq) (stay, error) {
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.GuestEmail = strings.ToLower(strings.TrimSpace(req.GuestEmail))
	req.GuestPhone = strings.TrimSpace(req.GuestPhone)
	req.RoomType = strings.TrimSpace(req.RoomType)
	req.SpecialRequests = strings.TrimSpace(req.SpecialRequests)
	req.AdditionalGuests = slices.Clone(req.AdditionalGuests)
	for i := range req.AdditionalGuests {
		req.AdditionalGuests[i].Name = strings.TrimSpace(req.AdditionalGuests[i].Name)
	}

	fields := map[string]string{}
	if err := s.v.Struct(req); err != nil {
		f := validate.Fields(err)
		if f == nil {
			return stay{}, internal("validate request", err)
		}
		maps.Copy(fields, f)
	}

	st := s.parseStay(req.CheckInDate, req.CheckOutDate, fields)

	if req.NumberOfGuests >= 1 && len(req.AdditionalGuests) > req.NumberOfGuests-1 {
		if _, ok := fields["additionalGuests"]; !ok {
			fields["additionalGuests"] = fmt.Sprintf("at most %d additional guests for %d guests", req.NumberOfGuests-1, req.NumberOfGuests)
		}
	}

	if len(fields) > 0 {
		return stay{}, &ValidationError{Fields: fields}
	}
	return st, nil
}

// parseStay records problems in fields and returns whatever it could parse.
func (s *service) parseStay(checkIn, checkOut string, fields map[string]string) stay {
	var st stay
	var inOK, outOK bool
	if strings.TrimSpace(checkIn) != "" {
		t, err := parseDate(checkIn, s.loc)
		if err != nil {
			fields["checkInDate"] = "must be a date (YYYY-MM-DD)"
		} else {
			st.checkIn, inOK = t, true
		}
	} else if _, ok := fields["checkInDate"]; !ok {
		fields["checkInDate"] = "is required"
	}
	if strings.TrimSpace(checkOut) != "" {
		t, err := parseDate(checkOut, s.loc)
		if err != nil {
			fields["checkOutDate"] = "must be a date (YYYY-MM-DD)"
		} else {
			st.checkOut, outOK = t, true
		}
	} else if _, ok := fields["checkOutDate"]; !ok {
		fields["checkOutDate"] = "is required"
	}

	if inOK && st.checkIn.Before(s.today()) {
		fields["checkInDate"] = "cannot be in the past"
	}
	if inOK && outOK {
		switch {
		case !st.checkOut.After(st.checkIn):
			fields["checkOutDate"] = "must be after checkInDate"
		case st.checkOut.Sub(st.checkIn) > maxNights*24*time.Hour:
			fields["checkOutDate"] = fmt.Sprintf("stay cannot exceed %d nights", maxNights)
		}
	}
	return st
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Timestamps
// are read in the hotel timezone and reduced to their calendar day.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return dateOf(t.In(loc)), nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// today is the current calendar day at the hotel.
func (s *service) today() time.Time {
	return dateOf(s.now().In(s.loc))
}
