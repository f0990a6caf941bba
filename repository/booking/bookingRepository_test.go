package bookingrepo_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hotelbooking/model"
	bookingrepo "hotelbooking/repository/booking"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

var bookingCols = []string{
	"id", "booking_reference", "room_type_id", "check_in", "check_out",
	"guest_name", "guest_email", "guest_phone", "additional_guests", "number_of_guests",
	"status", "payment_status",
	"base_rate", "nights", "subtotal", "taxes", "total_amount", "deposit_required", "remaining_amount",
	"tax_rate", "deposit_percentage",
	"special_requests", "transaction_id", "payment_method", "payment_processed_at",
	"checked_in_at", "checked_out_at", "cancelled_at", "cancellation_reason",
	"created_at", "updated_at",
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		BookingReference: "BK1718000000000A1B2C",
		RoomTypeID:       "deluxe",
		CheckIn:          day("2024-01-10"),
		CheckOut:         day("2024-01-13"),
		Guest: model.GuestInfo{
			Name:  "Ana Lima",
			Email: "ana@example.com",
			Phone: "+15550001111",
		},
		NumberOfGuests: 2,
		Status:         model.BookingPending,
		PaymentStatus:  model.PaymentPending,
		Pricing: model.Pricing{
			BaseRate: 100, Nights: 3, Subtotal: 300, Taxes: 36, TotalAmount: 336,
			DepositRequired: 168, RemainingAmount: 168, TaxRate: 0.12, DepositPercentage: 0.5,
		},
	}
}

func addRow(rows *sqlmock.Rows, ref, status, payment string, txID any) *sqlmock.Rows {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(
		"6f1c1a0e-4a56-4a4a-9a59-2f0f3b8d1c11", ref, "deluxe", day("2024-01-10"), day("2024-01-13"),
		"Ana Lima", "ana@example.com", "+15550001111", []byte(`[{"name":"Leo","age":7}]`), 2,
		status, payment,
		100.0, 3, 300.0, 36.0, 336.0, 168.0, 168.0,
		0.12, 0.5,
		"late arrival", txID, nil, nil,
		nil, nil, nil, nil,
		now, now,
	)
}

func TestInsert_Success(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM room_types WHERE id = \$1 FOR UPDATE`).
		WithArgs("deluxe").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("deluxe"))
	mock.ExpectQuery(`SELECT booking_reference FROM bookings`).
		WithArgs("deluxe", day("2024-01-10"), day("2024-01-13")).
		WillReturnRows(sqlmock.NewRows([]string{"booking_reference"}))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	b := sampleBooking()
	err := bookingrepo.New(db).Insert(context.Background(), b)
	require.NoError(t, err)
	require.NotEmpty(t, b.ID)
	require.Equal(t, now, b.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_OverlapRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("deluxe"))
	mock.ExpectQuery(`SELECT booking_reference FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_reference"}).AddRow("BK1700000000000ZZZZZ"))
	mock.ExpectRollback()

	err := bookingrepo.New(db).Insert(context.Background(), sampleBooking())
	require.ErrorIs(t, err, bookingrepo.ErrOverlap)
	require.Contains(t, err.Error(), "BK1700000000000ZZZZZ")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_MissingRoomType(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := bookingrepo.New(db).Insert(context.Background(), sampleBooking())
	require.ErrorIs(t, err, bookingrepo.ErrRoomTypeMissing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_MapsConstraintViolations(t *testing.T) {
	cases := []struct {
		name string
		pg   *pgconn.PgError
		want error
	}{
		{
			name: "duplicate reference",
			pg:   &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "bookings_booking_reference_key"},
			want: bookingrepo.ErrDuplicateReference,
		},
		{
			name: "exclusion",
			pg:   &pgconn.PgError{Code: pgerrcode.ExclusionViolation, ConstraintName: "bookings_no_overlap"},
			want: bookingrepo.ErrOverlap,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectQuery(`FOR UPDATE`).
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("deluxe"))
			mock.ExpectQuery(`SELECT booking_reference FROM bookings`).
				WillReturnRows(sqlmock.NewRows([]string{"booking_reference"}))
			mock.ExpectQuery(`INSERT INTO bookings`).WillReturnError(tc.pg)
			mock.ExpectRollback()

			err := bookingrepo.New(db).Insert(context.Background(), sampleBooking())
			require.ErrorIs(t, err, tc.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestByReference(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM bookings WHERE booking_reference = \$1`).
		WithArgs("BK1718000000000A1B2C").
		WillReturnRows(addRow(sqlmock.NewRows(bookingCols), "BK1718000000000A1B2C", "pending", "pending", nil))

	b, err := bookingrepo.New(db).ByReference(context.Background(), "BK1718000000000A1B2C")
	require.NoError(t, err)
	require.NotNil(t, b)
	require.Equal(t, model.BookingPending, b.Status)
	require.Equal(t, 3, b.Pricing.Nights)
	require.Len(t, b.Guest.AdditionalGuests, 1)
	require.Equal(t, "Leo", b.Guest.AdditionalGuests[0].Name)
	require.Equal(t, 7, *b.Guest.AdditionalGuests[0].Age)
	require.Nil(t, b.TransactionID)
}

func TestByReference_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM bookings`).WillReturnRows(sqlmock.NewRows(bookingCols))

	b, err := bookingrepo.New(db).ByReference(context.Background(), "BK0")
	require.NoError(t, err)
	require.Nil(t, b)
}

func TestListByEmail(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE guest_email = \$1`).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	rows := sqlmock.NewRows(bookingCols)
	addRow(rows, "BK2", "pending", "pending", nil)
	addRow(rows, "BK1", "confirmed", "paid", "TXN1")
	mock.ExpectQuery(`FROM bookings WHERE guest_email = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("ana@example.com", 10, 0).
		WillReturnRows(rows)

	out, total, err := bookingrepo.New(db).ListByEmail(context.Background(), "ana@example.com", 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, out, 2)
	require.Equal(t, "BK2", out[0].BookingReference)
	require.Equal(t, "TXN1", *out[1].TransactionID)
}

func TestApplyTransition_NoMatch(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`UPDATE bookings SET status = \$2, cancelled_at = \$3,.*AND status IN \(\$6,\$7\)`).
		WithArgs("BK1", "cancelled", sqlmock.AnyArg(), nil, true, "pending", "confirmed").
		WillReturnRows(sqlmock.NewRows(bookingCols))

	b, err := bookingrepo.New(db).ApplyTransition(context.Background(), "BK1", bookingrepo.Transition{
		From:   []model.BookingStatus{model.BookingPending, model.BookingConfirmed},
		To:     model.BookingCancelled,
		At:     time.Now(),
		Refund: true,
	})
	require.NoError(t, err)
	require.Nil(t, b)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SET payment_status = 'paid'.*AND payment_status <> 'paid'`).
		WithArgs("BK1", "TXN1", "card", at).
		WillReturnRows(addRow(sqlmock.NewRows(bookingCols), "BK1", "confirmed", "paid", "TXN1"))

	b, err := bookingrepo.New(db).MarkPaid(context.Background(), "BK1", "TXN1", "card", at)
	require.NoError(t, err)
	require.Equal(t, model.PaymentPaid, b.PaymentStatus)
	require.Equal(t, model.BookingConfirmed, b.Status)
}

func TestMarkNoShows(t *testing.T) {
	db, mock := newMock(t)
	cutoff := day("2024-02-01")

	mock.ExpectExec(`SET status = 'noShow'`).
		WithArgs(cutoff, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := bookingrepo.New(db).MarkNoShows(context.Background(), cutoff, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}
