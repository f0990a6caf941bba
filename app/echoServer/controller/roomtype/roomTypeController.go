package roomtype

import (
	"errors"
	"log/slog"
	"net/http"

	roomtypesvc "hotelbooking/service/roomtype"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc roomtypesvc.Service
	Log *slog.Logger
}

// List godoc
// @Summary   List bookable room types
// @Tags      room-types
// @Produce   json
// @Success   200  {object}  map[string]any
// @Router    /v1/room-types [get]
func (h *Controller) List(c echo.Context) error {
	rts, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("room type list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rts})
}

// Detail godoc
// @Summary   Room type detail
// @Tags      room-types
// @Produce   json
// @Param     id  path  string  true  "Room type id"
// @Success   200  {object}  map[string]any
// @Failure   404  {object}  map[string]any
// @Router    /v1/room-types/{id} [get]
func (h *Controller) Detail(c echo.Context) error {
	rt, err := h.Svc.Detail(c.Request().Context(), c.Param("id"))
	if errors.Is(err, roomtypesvc.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"code": "ROOM_TYPE_NOT_FOUND", "message": "room type not found"})
	}
	if err != nil {
		h.Log.Error("room type detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rt})
}
