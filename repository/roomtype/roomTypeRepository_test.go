package roomtyperepo_test

import (
	"context"
	"testing"
	"time"

	"hotelbooking/model"
	roomtyperepo "hotelbooking/repository/roomtype"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var cols = []string{
	"id", "name", "description", "base_price", "weekend_price", "holiday_price",
	"max_guests", "status", "is_active", "created_at", "updated_at",
}

func TestGetRoomType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM room_types\s+WHERE id = \$1`).
		WithArgs("deluxe").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("deluxe", "Deluxe King", "", 150.0, 180.0, 220.0, 3, "available", true, now, now))

	rt, err := roomtyperepo.New(db).GetRoomType(context.Background(), "deluxe")
	require.NoError(t, err)
	require.NotNil(t, rt)
	require.Equal(t, "Deluxe King", rt.Name)
	require.Equal(t, 3, rt.MaxGuests)
	require.Equal(t, model.RoomAvailable, rt.Status)
	require.True(t, rt.Offerable())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoomType_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM room_types`).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(cols))

	rt, err := roomtyperepo.New(db).GetRoomType(context.Background(), "ghost")
	require.NoError(t, err)
	require.Nil(t, rt)
}

func TestListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE is_active`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("std", "Standard", "", 90.0, 110.0, 130.0, 2, "available", true, now, now).
			AddRow("suite", "Suite", "sea view", 300.0, 340.0, 400.0, 4, "maintenance", true, now, now))

	out, err := roomtyperepo.New(db).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.False(t, out[1].Offerable())
}
