package roomtyperepo

import (
	"context"
	"database/sql"
	"errors"

	"hotelbooking/model"
)

type Repo interface {
	GetRoomType(ctx context.Context, id string) (*model.RoomType, error)
	ListActive(ctx context.Context) ([]model.RoomType, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const columns = `
	id, name, description, base_price, weekend_price, holiday_price,
	max_guests, status, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRoomType(s scanner) (*model.RoomType, error) {
	var rt model.RoomType
	var status string
	if err := s.Scan(
		&rt.ID, &rt.Name, &rt.Description, &rt.BasePrice, &rt.WeekendPrice, &rt.HolidayPrice,
		&rt.MaxGuests, &status, &rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rt.Status = model.RoomStatus(status)
	return &rt, nil
}

// GetRoomType returns (nil, nil) when the id is unknown.
func (r *repo) GetRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	q := `
SELECT ` + columns + `
FROM room_types
WHERE id = $1`
	rt, err := scanRoomType(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rt, err
}

func (r *repo) ListActive(ctx context.Context) ([]model.RoomType, error) {
	q := `
SELECT ` + columns + `
FROM room_types
WHERE is_active
ORDER BY base_price, name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RoomType
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}
