package roomtypesvc

import (
	"context"
	"errors"
	"strings"

	"hotelbooking/model"
)

var ErrNotFound = errors.New("room type not found")

type Repo interface {
	GetRoomType(ctx context.Context, id string) (*model.RoomType, error)
	ListActive(ctx context.Context) ([]model.RoomType, error)
}

type Service interface {
	List(ctx context.Context) ([]model.RoomType, error)
	// Detail hides inactive room types the same way List does.
	Detail(ctx context.Context, id string) (*model.RoomType, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context) ([]model.RoomType, error) {
	rts, err := s.r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if rts == nil {
		rts = []model.RoomType{}
	}
	return rts, nil
}

func (s *service) Detail(ctx context.Context, id string) (*model.RoomType, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	rt, err := s.r.GetRoomType(ctx, id)
	if err != nil {
		return nil, err
	}
	if rt == nil || !rt.IsActive {
		return nil, ErrNotFound
	}
	return rt, nil
}
