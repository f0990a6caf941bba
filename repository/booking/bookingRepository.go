// repository/booking/repo.go
package bookingrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbooking/model"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrOverlap            = errors.New("booking overlaps an active booking")
	ErrDuplicateReference = errors.New("booking reference already exists")
	ErrRoomTypeMissing    = errors.New("room type missing")
)

const referenceConstraint = "bookings_booking_reference_key"

// OverlapError names the active booking that blocked the insert when the
// overlap query found it. The exclusion constraint path leaves it empty.
type OverlapError struct {
	Reference string
}

func (e *OverlapError) Error() string {
	if e.Reference == "" {
		return ErrOverlap.Error()
	}
	return ErrOverlap.Error() + ": " + e.Reference
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

// Transition is a guarded status change. It only applies while the booking
// is in one of From.
type Transition struct {
	From   []model.BookingStatus
	To     model.BookingStatus
	At     time.Time
	Reason *string
	// Refund moves a paid booking to refunded.
	Refund bool
}

type Repo interface {
	ListActiveOverlapping(ctx context.Context, roomTypeID string, in, out time.Time) ([]model.Booking, error)
	// Insert re-checks overlap under a room-type row lock and writes the
	// booking in the same transaction.
	Insert(ctx context.Context, b *model.Booking) error

	ByReference(ctx context.Context, ref string) (*model.Booking, error)
	ListByEmail(ctx context.Context, email string, limit, offset int) ([]model.Booking, int64, error)

	ApplyTransition(ctx context.Context, ref string, t Transition) (*model.Booking, error)
	MarkPaid(ctx context.Context, ref, transactionID, method string, at time.Time) (*model.Booking, error)
	MarkNoShows(ctx context.Context, checkInBefore, at time.Time) (int64, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

const bookingColumns = `
	id, booking_reference, room_type_id, check_in, check_out,
	guest_name, guest_email, guest_phone, additional_guests, number_of_guests,
	status, payment_status,
	base_rate, nights, subtotal, taxes, total_amount, deposit_required, remaining_amount,
	tax_rate, deposit_percentage,
	special_requests, transaction_id, payment_method, payment_processed_at,
	checked_in_at, checked_out_at, cancelled_at, cancellation_reason,
	created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (*model.Booking, error) {
	var (
		b     model.Booking
		extra []byte
		st    string
		pst   string
	)
	err := s.Scan(
		&b.ID, &b.BookingReference, &b.RoomTypeID, &b.CheckIn, &b.CheckOut,
		&b.Guest.Name, &b.Guest.Email, &b.Guest.Phone, &extra, &b.NumberOfGuests,
		&st, &pst,
		&b.Pricing.BaseRate, &b.Pricing.Nights, &b.Pricing.Subtotal, &b.Pricing.Taxes,
		&b.Pricing.TotalAmount, &b.Pricing.DepositRequired, &b.Pricing.RemainingAmount,
		&b.Pricing.TaxRate, &b.Pricing.DepositPercentage,
		&b.SpecialRequests, &b.TransactionID, &b.PaymentMethod, &b.PaymentProcessedAt,
		&b.CheckedInAt, &b.CheckedOutAt, &b.CancelledAt, &b.CancellationReason,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(st)
	b.PaymentStatus = model.PaymentStatus(pst)
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &b.Guest.AdditionalGuests); err != nil {
			return nil, fmt.Errorf("decode additional guests: %w", err)
		}
	}
	return &b, nil
}

func scanAll(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// statusIn renders "$n,$n+1,..." for ss and appends them to args.
func statusIn(ss []model.BookingStatus, args []any) (string, []any) {
	ph := make([]string, len(ss))
	for i, s := range ss {
		args = append(args, string(s))
		ph[i] = fmt.Sprintf("$%d", len(args))
	}
	return strings.Join(ph, ","), args
}

func (r *repo) ListActiveOverlapping(ctx context.Context, roomTypeID string, in, out time.Time) ([]model.Booking, error) {
	q := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE room_type_id = $1
		AND status IN ('pending', 'confirmed', 'checkedIn')
		AND check_in < $3
		AND $2 < check_out
		ORDER BY check_in`
	rows, err := r.db.QueryContext(ctx, q, roomTypeID, in, out)
	if err != nil {
		return nil, err
	}
	return scanAll(rows)
}

func (r *repo) Insert(ctx context.Context, b *model.Booking) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Writers for the same room type queue on this lock, which closes the
	// check-then-insert window.
	const lockQ = `
		SELECT id
		FROM room_types
		WHERE id = $1
		FOR UPDATE`
	var locked string
	if err = tx.QueryRowContext(ctx, lockQ, b.RoomTypeID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrRoomTypeMissing
		}
		return err
	}

	const overlapQ = `
		SELECT booking_reference
		FROM bookings
		WHERE room_type_id = $1
		AND status IN ('pending', 'confirmed', 'checkedIn')
		AND check_in < $3
		AND $2 < check_out
		LIMIT 1`
	var conflict string
	err = tx.QueryRowContext(ctx, overlapQ, b.RoomTypeID, b.CheckIn, b.CheckOut).Scan(&conflict)
	switch {
	case err == nil:
		err = &OverlapError{Reference: conflict}
		return err
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	guests := b.Guest.AdditionalGuests
	if guests == nil {
		guests = []model.AdditionalGuest{}
	}
	extra, err := json.Marshal(guests)
	if err != nil {
		return err
	}

	const insQ = `
		INSERT INTO bookings (
			id, booking_reference, room_type_id, check_in, check_out,
			guest_name, guest_email, guest_phone, additional_guests, number_of_guests,
			status, payment_status,
			base_rate, nights, subtotal, taxes, total_amount, deposit_required, remaining_amount,
			tax_rate, deposit_percentage, special_requests)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		RETURNING created_at, updated_at`
	p := b.Pricing
	err = tx.QueryRowContext(ctx, insQ,
		b.ID, b.BookingReference, b.RoomTypeID, b.CheckIn, b.CheckOut,
		b.Guest.Name, b.Guest.Email, b.Guest.Phone, string(extra), b.NumberOfGuests,
		string(b.Status), string(b.PaymentStatus),
		p.BaseRate, p.Nights, p.Subtotal, p.Taxes, p.TotalAmount, p.DepositRequired, p.RemainingAmount,
		p.TaxRate, p.DepositPercentage, b.SpecialRequests,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		err = mapWriteErr(err)
		return err
	}

	err = tx.Commit()
	return err
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == referenceConstraint ||
			strings.Contains(strings.ToLower(pgErr.Message), "booking_reference") {
			return ErrDuplicateReference
		}
	case pgerrcode.ExclusionViolation:
		return &OverlapError{}
	}
	return err
}

func (r *repo) ByReference(ctx context.Context, ref string) (*model.Booking, error) {
	q := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_reference = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// ListByEmail expects email already lowercased; emails are stored that way.
func (r *repo) ListByEmail(ctx context.Context, email string, limit, offset int) ([]model.Booking, int64, error) {
	const countQ = `
		SELECT COUNT(*)
		FROM bookings
		WHERE guest_email = $1`
	var total int64
	if err := r.db.QueryRowContext(ctx, countQ, email).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.Booking{}, 0, nil
	}

	q := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guest_email = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, email, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out, err := scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ApplyTransition returns (nil, nil) when no booking with ref is in a From state.
func (r *repo) ApplyTransition(ctx context.Context, ref string, t Transition) (*model.Booking, error) {
	var stamp string
	switch t.To {
	case model.BookingCheckedIn:
		stamp = "checked_in_at = $3,"
	case model.BookingCheckedOut:
		stamp = "checked_out_at = $3,"
	case model.BookingCancelled:
		stamp = "cancelled_at = $3,"
	}
	args := []any{ref, string(t.To), t.At, t.Reason, t.Refund}
	in, args := statusIn(t.From, args)
	q := `
		UPDATE bookings
		SET status = $2,
			` + stamp + `
			cancellation_reason = COALESCE($4, cancellation_reason),
			payment_status = CASE WHEN $5 AND payment_status = 'paid' THEN 'refunded' ELSE payment_status END,
			updated_at = $3
		WHERE booking_reference = $1
		AND status IN (` + in + `)
		RETURNING ` + bookingColumns
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// MarkPaid is conditional on the booking not being paid yet, so concurrent
// duplicate charges cannot both record. Returns (nil, nil) when nothing matched.
func (r *repo) MarkPaid(ctx context.Context, ref, transactionID, method string, at time.Time) (*model.Booking, error) {
	q := `
		UPDATE bookings
		SET payment_status = 'paid',
			status = 'confirmed',
			transaction_id = $2,
			payment_method = $3,
			payment_processed_at = $4,
			updated_at = $4
		WHERE booking_reference = $1
		AND payment_status <> 'paid'
		AND status IN ('pending', 'confirmed')
		RETURNING ` + bookingColumns
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, ref, transactionID, method, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *repo) MarkNoShows(ctx context.Context, checkInBefore, at time.Time) (int64, error) {
	const q = `
		UPDATE bookings
		SET status = 'noShow',
			updated_at = $2
		WHERE status IN ('pending', 'confirmed')
		AND check_in < $1`
	res, err := r.db.ExecContext(ctx, q, checkInBefore, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
