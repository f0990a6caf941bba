package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hotelbooking/model"
	bookingrepo "hotelbooking/repository/booking"
	idempotencyrepo "hotelbooking/repository/idempotency"
	notifyrepo "hotelbooking/repository/notify"
	"hotelbooking/service/availability"
	"hotelbooking/service/pricing"
	"hotelbooking/util/refgen"
	"hotelbooking/util/validate"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// RoomTypes is the catalogue lookup the workflow needs.
type RoomTypes interface {
	GetRoomType(ctx context.Context, id string) (*model.RoomType, error)
}

// Repo = booking store
type Repo interface {
	ListActiveOverlapping(ctx context.Context, roomTypeID string, in, out time.Time) ([]model.Booking, error)
	Insert(ctx context.Context, b *model.Booking) error
	ByReference(ctx context.Context, ref string) (*model.Booking, error)
	ListByEmail(ctx context.Context, email string, limit, offset int) ([]model.Booking, int64, error)
	ApplyTransition(ctx context.Context, ref string, t bookingrepo.Transition) (*model.Booking, error)
	MarkNoShows(ctx context.Context, checkInBefore, at time.Time) (int64, error)
}

type Page struct {
	Items   []model.Booking
	Page    int
	PerPage int
	Total   int64
}

type Service interface {
	// Create validates, prices and stores a pending booking. A stay that
	// overlaps an active booking fails with ROOM_UNAVAILABLE.
	Create(ctx context.Context, req model.CreateBookingReq) (*model.Booking, error)

	// CreateIdempotent replays the booking already created under key.
	CreateIdempotent(ctx context.Context, key string, req model.CreateBookingReq) (b *model.Booking, replayed bool, err error)

	Availability(ctx context.Context, roomTypeID, checkIn, checkOut string) (*availability.Result, error)

	ByReference(ctx context.Context, ref string) (*model.Booking, error)
	ListByEmail(ctx context.Context, email string, page, perPage int) (*Page, error)

	CheckIn(ctx context.Context, ref string) (*model.Booking, error)
	CheckOut(ctx context.Context, ref string) (*model.Booking, error)
	Cancel(ctx context.Context, ref, reason string) (*model.Booking, error)
	MarkNoShow(ctx context.Context, ref string) (*model.Booking, error)

	// SweepNoShows closes every pending or confirmed booking whose check-in
	// day has passed.
	SweepNoShows(ctx context.Context) (int64, error)
}

type Option func(*service)

func WithRates(r pricing.Rates) Option { return func(s *service) { s.rates = r } }

// WithLocation sets the hotel timezone used to decide what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }

func WithReferences(g *refgen.Generator) Option { return func(s *service) { s.refs = g } }

func WithIdempotency(r idempotencyrepo.Repo) Option { return func(s *service) { s.idem = r } }

func WithNotifier(r notifyrepo.Repo) Option { return func(s *service) { s.notify = r } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { s.log = l } }

type service struct {
	rooms    RoomTypes
	bookings Repo
	checker  availability.Checker

	rates  pricing.Rates
	loc    *time.Location
	now    func() time.Time
	refs   *refgen.Generator
	idem   idempotencyrepo.Repo
	notify notifyrepo.Repo
	log    *slog.Logger
	v      *validator.Validate
}

type availabilityRepo struct {
	RoomTypes
	Repo
}

func New(rooms RoomTypes, bookings Repo, opts ...Option) Service {
	s := &service{
		rooms:    rooms,
		bookings: bookings,
		rates:    pricing.Rates{TaxRate: 0.12, DepositPercentage: 0.5},
		loc:      time.UTC,
		now:      time.Now,
		log:      slog.Default(),
		v:        validate.New(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.refs == nil {
		s.refs = refgen.New(refgen.BookingPrefix, refgen.WithClock(s.now))
	}
	if s.notify == nil {
		s.notify = notifyrepo.NewLog(s.log)
	}
	s.checker = availability.New(availabilityRepo{RoomTypes: rooms, Repo: bookings})
	return s
}

func (s *service) Create(ctx context.Context, req model.CreateBookingReq) (*model.Booking, error) {
	st, err := s.validateCreate(&req)
	if err != nil {
		return nil, err
	}

	rt, err := s.rooms.GetRoomType(ctx, req.RoomType)
	if err != nil {
		return nil, internal("load room type", err)
	}
	if rt == nil || !rt.IsActive {
		return nil, makeErr(ErrRoomTypeNotFound)
	}
	if req.NumberOfGuests > rt.MaxGuests {
		return nil, fieldErr("numberOfGuests", fmt.Sprintf("exceeds the room capacity of %d", rt.MaxGuests))
	}
	if !rt.Offerable() {
		return nil, &UnavailableError{Reason: availability.ReasonNotOfferable}
	}

	// Fast path; Insert repeats the check under lock.
	active, err := s.bookings.ListActiveOverlapping(ctx, rt.ID, st.checkIn, st.checkOut)
	if err != nil {
		return nil, internal("check availability", err)
	}
	if c := availability.FindConflict(active, st.checkIn, st.checkOut); c != nil {
		return nil, &UnavailableError{Reason: availability.ReasonBooked, ConflictingReference: c.BookingReference}
	}

	price, err := pricing.Price(rt.BasePrice, st.checkIn, st.checkOut, s.rates)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidDateRange) {
			return nil, fieldErr("checkOutDate", "must be after checkInDate")
		}
		return nil, internal("price stay", err)
	}

	b := newBooking(req, rt.ID, st, price)
	// One retry on a reference collision, then give up.
	for attempt := 0; attempt < 2; attempt++ {
		ref, err := s.refs.Next()
		if err != nil {
			return nil, internal("generate reference", err)
		}
		b.BookingReference = ref

		err = s.bookings.Insert(ctx, b)
		var overlap *bookingrepo.OverlapError
		switch {
		case err == nil:
			s.publish(ctx, notifyrepo.EventBookingCreated, b)
			return b, nil
		case errors.Is(err, bookingrepo.ErrDuplicateReference):
			s.log.Warn("booking reference collision", "reference", ref, "attempt", attempt+1)
			continue
		case errors.As(err, &overlap):
			return nil, &UnavailableError{Reason: availability.ReasonBooked, ConflictingReference: overlap.Reference}
		case errors.Is(err, bookingrepo.ErrRoomTypeMissing):
			return nil, makeErr(ErrRoomTypeNotFound)
		default:
			return nil, internal("store booking", err)
		}
	}
	return nil, internal("booking reference collision", bookingrepo.ErrDuplicateReference)
}

func newBooking(req model.CreateBookingReq, roomTypeID string, st stay, price model.Pricing) *model.Booking {
	b := &model.Booking{
		ID:         uuid.NewString(),
		RoomTypeID: roomTypeID,
		CheckIn:    st.checkIn,
		CheckOut:   st.checkOut,
		Guest: model.GuestInfo{
			Name:  req.GuestName,
			Email: req.GuestEmail,
			Phone: req.GuestPhone,
		},
		NumberOfGuests:  req.NumberOfGuests,
		Status:          model.BookingPending,
		PaymentStatus:   model.PaymentPending,
		Pricing:         price,
		SpecialRequests: req.SpecialRequests,
	}
	for _, g := range req.AdditionalGuests {
		b.Guest.AdditionalGuests = append(b.Guest.AdditionalGuests, model.AdditionalGuest{Name: g.Name, Age: g.Age})
	}
	return b
}

func (s *service) CreateIdempotent(ctx context.Context, key string, req model.CreateBookingReq) (*model.Booking, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" || s.idem == nil {
		b, err := s.Create(ctx, req)
		return b, false, err
	}

	claimed, ref, err := s.idem.Claim(ctx, key)
	if err != nil {
		// The store only guards retries; losing it must not block bookings.
		s.log.Warn("idempotency store unavailable", "err", err)
		b, err := s.Create(ctx, req)
		return b, false, err
	}
	if !claimed {
		if ref == "" {
			return nil, false, wrap(ErrIdempotencyConflict, "a request with this key is still in progress")
		}
		b, err := s.bookings.ByReference(ctx, ref)
		if err != nil {
			return nil, false, internal("load replayed booking", err)
		}
		if b == nil {
			return nil, false, wrap(ErrIdempotencyConflict, "key is bound to an unknown booking")
		}
		return b, true, nil
	}

	b, err := s.Create(ctx, req)
	if err != nil {
		if rerr := s.idem.Release(ctx, key); rerr != nil {
			s.log.Warn("release idempotency key", "err", rerr)
		}
		return nil, false, err
	}
	if err := s.idem.Bind(ctx, key, b.BookingReference); err != nil {
		s.log.Warn("bind idempotency key", "reference", b.BookingReference, "err", err)
	}
	return b, false, nil
}

func (s *service) Availability(ctx context.Context, roomTypeID, checkIn, checkOut string) (*availability.Result, error) {
	roomTypeID = strings.TrimSpace(roomTypeID)
	fields := map[string]string{}
	if roomTypeID == "" {
		fields["roomType"] = "is required"
	}
	st := s.parseStay(checkIn, checkOut, fields)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	res, err := s.checker.Check(ctx, roomTypeID, st.checkIn, st.checkOut)
	if errors.Is(err, availability.ErrRoomTypeNotFound) {
		return nil, makeErr(ErrRoomTypeNotFound)
	}
	if err != nil {
		return nil, internal("check availability", err)
	}
	return res, nil
}

func (s *service) ByReference(ctx context.Context, ref string) (*model.Booking, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fieldErr("reference", "is required")
	}
	b, err := s.bookings.ByReference(ctx, ref)
	if err != nil {
		return nil, internal("load booking", err)
	}
	if b == nil {
		return nil, makeErr(ErrBookingNotFound)
	}
	return b, nil
}

func (s *service) ListByEmail(ctx context.Context, email string, page, perPage int) (*Page, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.v.Var(email, "required,email"); err != nil {
		return nil, fieldErr("email", "must be a valid email address")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	items, total, err := s.bookings.ListByEmail(ctx, email, perPage, (page-1)*perPage)
	if err != nil {
		return nil, internal("list bookings", err)
	}
	if items == nil {
		items = []model.Booking{}
	}
	return &Page{Items: items, Page: page, PerPage: perPage, Total: total}, nil
}

func (s *service) publish(ctx context.Context, eventType string, b *model.Booking) {
	if err := s.notify.Publish(ctx, eventType, b); err != nil {
		s.log.Warn("publish booking event", "event", eventType, "reference", b.BookingReference, "err", err)
	}
}
