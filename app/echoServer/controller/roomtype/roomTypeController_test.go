package roomtype_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotelbooking/app/echoServer/controller/roomtype"
	"hotelbooking/model"
	roomtypesvc "hotelbooking/service/roomtype"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type svcStub struct {
	listFn   func(ctx context.Context) ([]model.RoomType, error)
	detailFn func(ctx context.Context, id string) (*model.RoomType, error)
}

func (s *svcStub) List(ctx context.Context) ([]model.RoomType, error) { return s.listFn(ctx) }
func (s *svcStub) Detail(ctx context.Context, id string) (*model.RoomType, error) {
	return s.detailFn(ctx, id)
}

func newCtx(target string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestList(t *testing.T) {
	h := &roomtype.Controller{Log: slog.New(slog.NewTextHandler(io.Discard, nil)), Svc: &svcStub{
		listFn: func(ctx context.Context) ([]model.RoomType, error) {
			return []model.RoomType{{ID: "deluxe", Name: "Deluxe", BasePrice: 100, MaxGuests: 2}}, nil
		},
	}}
	c, rec := newCtx("/v1/room-types")
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"id":"deluxe"`)
}

func TestDetail(t *testing.T) {
	h := &roomtype.Controller{Log: slog.New(slog.NewTextHandler(io.Discard, nil)), Svc: &svcStub{
		detailFn: func(ctx context.Context, id string) (*model.RoomType, error) {
			switch id {
			case "deluxe":
				return &model.RoomType{ID: "deluxe"}, nil
			case "boom":
				return nil, errors.New("db down")
			}
			return nil, roomtypesvc.ErrNotFound
		},
	}}

	for id, want := range map[string]int{"deluxe": http.StatusOK, "nope": http.StatusNotFound, "boom": http.StatusInternalServerError} {
		c, rec := newCtx("/v1/room-types/" + id)
		c.SetParamNames("id")
		c.SetParamValues(id)
		require.NoError(t, h.Detail(c))
		require.Equal(t, want, rec.Code, id)
	}
}
