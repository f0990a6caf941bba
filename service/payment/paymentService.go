package paymentsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hotelbooking/model"
	gatewayrepo "hotelbooking/repository/gateway"
	notifyrepo "hotelbooking/repository/notify"
	"hotelbooking/util/refgen"
)

// errors used by controllers

type ErrCode string

const (
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrBookingNotFound ErrCode = "BOOKING_NOT_FOUND"
	ErrAlreadyPaid     ErrCode = "ALREADY_PAID"
	ErrNotPayable      ErrCode = "NOT_PAYABLE"
	ErrDeclined        ErrCode = "PAYMENT_DECLINED"
	ErrInternal        ErrCode = "INTERNAL_ERROR"
)

type codedError struct {
	code ErrCode
	msg  string
	err  error
}

func (e codedError) Error() string {
	if e.msg != "" {
		return string(e.code) + ": " + e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.err }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// NewError builds a coded error for callers outside the package.
func NewError(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

func internal(msg string, err error) error {
	return codedError{code: ErrInternal, msg: msg, err: err}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return "validation error: " + e.Field + ": " + e.Msg }
func (e *FieldError) Code() ErrCode { return ErrValidation }

// PaymentDeclinedError carries the processor's reason unchanged.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string { return "payment declined: " + e.Reason }
func (e *PaymentDeclinedError) Code() ErrCode { return ErrDeclined }

// dto

type ApplyInput struct {
	Reference string
	Amount    *float64 // nil charges the booking total
	Method    string
	Card      gatewayrepo.Card
}

// SettleInput records a payment taken outside the processor.
type SettleInput struct {
	Reference string
	Method    string
}

type Applied struct {
	Booking       *model.Booking
	TransactionID string
	Amount        float64
}

type Repo interface {
	ByReference(ctx context.Context, ref string) (*model.Booking, error)
	MarkPaid(ctx context.Context, ref, transactionID, method string, at time.Time) (*model.Booking, error)
}

type Service interface {
	// Apply charges the card for the booking total and marks the booking
	// paid and confirmed.
	Apply(ctx context.Context, in ApplyInput) (*Applied, error)

	// Settle marks a booking paid for cash or bank transfer received at the
	// desk. Only staff may call it.
	Settle(ctx context.Context, in SettleInput) (*Applied, error)

	Status(ctx context.Context, ref string) (*model.PaymentSnapshot, error)
}

type Option func(*service)

func WithClock(now func() time.Time) Option { return func(s *service) { s.now = now } }
func WithNotifier(n notifyrepo.Repo) Option { return func(s *service) { s.notify = n } }
func WithLogger(l *slog.Logger) Option      { return func(s *service) { s.log = l } }
func WithCurrency(currency string) Option   { return func(s *service) { s.currency = currency } }

// WithTransactionIDs sets the generator for desk settlement ids.
func WithTransactionIDs(g *refgen.Generator) Option { return func(s *service) { s.ids = g } }

type service struct {
	r        Repo
	gw       gatewayrepo.Repo
	ids      *refgen.Generator
	now      func() time.Time
	notify   notifyrepo.Repo
	log      *slog.Logger
	currency string
}

func New(r Repo, gw gatewayrepo.Repo, opts ...Option) Service {
	s := &service{r: r, gw: gw, now: time.Now, log: slog.Default(), currency: "USD"}
	for _, o := range opts {
		o(s)
	}
	if s.notify == nil {
		s.notify = notifyrepo.NewLog(s.log)
	}
	if s.ids == nil {
		s.ids = refgen.New(refgen.TransactionPrefix, refgen.WithClock(s.now))
	}
	return s
}

func (s *service) load(ctx context.Context, ref string) (*model.Booking, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &FieldError{Field: "bookingReference", Msg: "is required"}
	}
	b, err := s.r.ByReference(ctx, ref)
	if err != nil {
		return nil, internal("load booking", err)
	}
	if b == nil {
		return nil, makeErr(ErrBookingNotFound)
	}
	return b, nil
}

func payable(b *model.Booking) error {
	if b.PaymentStatus == model.PaymentPaid {
		return makeErr(ErrAlreadyPaid)
	}
	if b.Status != model.BookingPending && b.Status != model.BookingConfirmed {
		return codedError{code: ErrNotPayable, msg: "booking is " + string(b.Status)}
	}
	return nil
}

func (s *service) Apply(ctx context.Context, in ApplyInput) (*Applied, error) {
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = gatewayrepo.MethodCard
	}
	if method != gatewayrepo.MethodCard {
		return nil, &FieldError{Field: "method", Msg: "must be card; cash and bank transfers are settled at the front desk"}
	}

	b, err := s.load(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	if err := payable(b); err != nil {
		return nil, err
	}

	// A booking is paid in one settlement of its total.
	total := model.Round2(b.Pricing.TotalAmount)
	if in.Amount != nil && model.Round2(*in.Amount) != total {
		return nil, &FieldError{Field: "amount", Msg: fmt.Sprintf("must equal the booking total %.2f", total)}
	}
	if strings.TrimSpace(in.Card.Number) == "" {
		return nil, &FieldError{Field: "cardNumber", Msg: "is required"}
	}

	res, err := s.gw.Charge(ctx, gatewayrepo.ChargeReq{
		Reference: b.BookingReference,
		Amount:    total,
		Currency:  s.currency,
		Method:    method,
		Card:      in.Card,
	})
	if err != nil {
		return nil, internal("charge", err)
	}
	if !res.Approved {
		s.log.Info("payment declined", "reference", b.BookingReference, "reason", res.DeclineReason)
		return nil, &PaymentDeclinedError{Reason: res.DeclineReason}
	}

	paid, err := s.record(ctx, b.BookingReference, res.TransactionID, method)
	if err != nil {
		return nil, err
	}
	return &Applied{Booking: paid, TransactionID: res.TransactionID, Amount: total}, nil
}

func (s *service) Settle(ctx context.Context, in SettleInput) (*Applied, error) {
	method := strings.TrimSpace(in.Method)
	switch method {
	case gatewayrepo.MethodCash, gatewayrepo.MethodBankTransfer:
	default:
		return nil, &FieldError{Field: "method", Msg: "must be one of cash, bank_transfer"}
	}

	b, err := s.load(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	if err := payable(b); err != nil {
		return nil, err
	}

	txID, err := s.ids.Next()
	if err != nil {
		return nil, internal("generate transaction id", err)
	}
	paid, err := s.record(ctx, b.BookingReference, txID, method)
	if err != nil {
		return nil, err
	}
	s.log.Info("payment settled at desk", "reference", paid.BookingReference, "method", method, "transaction_id", txID)
	return &Applied{Booking: paid, TransactionID: txID, Amount: model.Round2(paid.Pricing.TotalAmount)}, nil
}

// record stores an accepted payment. Losing the conditional update to a
// concurrent payment reports ALREADY_PAID.
func (s *service) record(ctx context.Context, ref, txID, method string) (*model.Booking, error) {
	paid, err := s.r.MarkPaid(ctx, ref, txID, method, s.now().UTC())
	if err != nil {
		s.log.Error("payment accepted but not recorded", "reference", ref, "transaction_id", txID, "err", err)
		return nil, internal("record payment", err)
	}
	if paid == nil {
		s.log.Error("payment accepted for a booking that is no longer payable",
			"reference", ref, "transaction_id", txID, "method", method)
		cur, err := s.load(ctx, ref)
		if err != nil {
			return nil, err
		}
		if err := payable(cur); err != nil {
			return nil, err
		}
		return nil, internal("record payment", errors.New("conditional update matched no row"))
	}

	if err := s.notify.Publish(ctx, notifyrepo.EventBookingPaid, paid); err != nil {
		s.log.Warn("publish booking event", "event", notifyrepo.EventBookingPaid, "reference", paid.BookingReference, "err", err)
	}
	return paid, nil
}

func (s *service) Status(ctx context.Context, ref string) (*model.PaymentSnapshot, error) {
	b, err := s.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	p := b.Pricing.Rounded()
	return &model.PaymentSnapshot{
		BookingReference:   b.BookingReference,
		Status:             b.Status,
		PaymentStatus:      b.PaymentStatus,
		TotalAmount:        p.TotalAmount,
		DepositRequired:    p.DepositRequired,
		RemainingAmount:    p.RemainingAmount,
		TransactionID:      b.TransactionID,
		PaymentMethod:      b.PaymentMethod,
		PaymentProcessedAt: b.PaymentProcessedAt,
	}, nil
}
