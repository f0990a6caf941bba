package booking

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"hotelbooking/model"
	bsvc "hotelbooking/service/booking"

	"github.com/labstack/echo/v4"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type Controller struct {
	Svc bsvc.Service
	Log *slog.Logger
}

// fail maps service errors to responses. Internal causes stay in the log.
func (h *Controller) fail(c echo.Context, op string, err error) error {
	code := bsvc.Code(err)
	switch code {
	case bsvc.ErrValidation:
		fields := map[string]string{}
		var ve *bsvc.ValidationError
		if errors.As(err, &ve) {
			fields = ve.Fields
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"code": code, "message": "validation error", "errors": fields})
	case bsvc.ErrRoomTypeNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"code": code, "message": "room type not found"})
	case bsvc.ErrRoomUnavailable:
		ue := &bsvc.UnavailableError{}
		errors.As(err, &ue)
		h.Log.Info("room unavailable", "op", op, "reason", ue.Reason, "conflict", ue.ConflictingReference)
		return c.JSON(http.StatusConflict, echo.Map{"code": code, "message": "room is not available for the selected dates", "reason": ue.Reason})
	case bsvc.ErrBookingNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"code": code, "message": "booking not found"})
	case bsvc.ErrInvalidTransition, bsvc.ErrIdempotencyConflict:
		return c.JSON(http.StatusConflict, echo.Map{"code": code, "message": bsvc.Detail(err)})
	default:
		h.Log.Error(op, "err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(), "method", c.Request().Method)
		return c.JSON(http.StatusInternalServerError, echo.Map{"code": bsvc.ErrInternal, "message": "internal error"})
	}
}

// Create godoc
// @Summary      Create booking
// @Description  Validates, prices and stores a pending booking. Send Idempotency-Key to make retries safe.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "Client retry key"
// @Param        payload          body    model.CreateBookingReq  true   "Booking payload"
// @Success      201  {object}  CreatedResp
// @Success      200  {object}  CreatedResp     "replayed"
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any  "room type not found"
// @Failure      409  {object}  map[string]any  "room unavailable"
// @Failure      500  {object}  map[string]any
// @Router       /v1/bookings [post]
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": bsvc.ErrValidation, "message": "invalid JSON"})
	}

	key := c.Request().Header.Get(HeaderIdempotencyKey)
	b, replayed, err := h.Svc.CreateIdempotent(c.Request().Context(), key, req)
	if err != nil {
		return h.fail(c, "booking create", err)
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
		c.Response().Header().Set("Idempotent-Replayed", "true")
	}
	v := NewView(b)
	return c.JSON(status, CreatedResp{
		BookingReference: b.BookingReference,
		Booking:          v,
		Pricing:          v.Pricing,
		PaymentRequired:  b.PaymentStatus != model.PaymentPaid,
	})
}

// Get godoc
// @Summary      Find bookings
// @Description  By reference, or by guest email (most recent first, paginated).
// @Tags         bookings
// @Produce      json
// @Param        reference  query  string  false  "Booking reference"
// @Param        email      query  string  false  "Guest email"
// @Param        page       query  int     false  "Page (default 1)"
// @Param        per_page   query  int     false  "Page size (default 10, max 100)"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/bookings [get]
func (h *Controller) Get(c echo.Context) error {
	ctx := c.Request().Context()
	if ref := c.QueryParam("reference"); ref != "" {
		b, err := h.Svc.ByReference(ctx, ref)
		if err != nil {
			return h.fail(c, "booking get", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": NewView(b)})
	}

	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": bsvc.ErrValidation, "message": "reference or email is required"})
	}
	page, ok1 := intParam(c, "page")
	perPage, ok2 := intParam(c, "per_page")
	if !ok1 || !ok2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": bsvc.ErrValidation, "message": "invalid pagination"})
	}

	p, err := h.Svc.ListByEmail(ctx, email, page, perPage)
	if err != nil {
		return h.fail(c, "booking list", err)
	}
	views := make([]View, 0, len(p.Items))
	for i := range p.Items {
		views = append(views, NewView(&p.Items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": views,
		"meta": ListMeta{Page: p.Page, PerPage: p.PerPage, Total: p.Total},
	})
}

func intParam(c echo.Context, name string) (int, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Availability godoc
// @Summary      Check availability
// @Tags         bookings
// @Produce      json
// @Param        roomType  query  string  true  "Room type id"
// @Param        checkIn   query  string  true  "YYYY-MM-DD"
// @Param        checkOut  query  string  true  "YYYY-MM-DD"
// @Success      200  {object}  AvailabilityResp
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/availability [get]
func (h *Controller) Availability(c echo.Context) error {
	res, err := h.Svc.Availability(c.Request().Context(), c.QueryParam("roomType"), c.QueryParam("checkIn"), c.QueryParam("checkOut"))
	if err != nil {
		return h.fail(c, "availability", err)
	}
	return c.JSON(http.StatusOK, AvailabilityResp{Available: res.Available, Reason: res.Reason})
}

// ----- admin -----

// CheckIn godoc
// @Summary   Check a guest in
// @Tags      admin
// @Security  BearerAuth
// @Param     reference  path  string  true  "Booking reference"
// @Success   200  {object}  map[string]any
// @Failure   404  {object}  map[string]any
// @Failure   409  {object}  map[string]any
// @Router    /v1/admin/bookings/{reference}/check-in [post]
func (h *Controller) CheckIn(c echo.Context) error {
	b, err := h.Svc.CheckIn(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return h.fail(c, "booking check-in", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": NewView(b)})
}

// CheckOut godoc
// @Summary   Check a guest out
// @Tags      admin
// @Security  BearerAuth
// @Param     reference  path  string  true  "Booking reference"
// @Success   200  {object}  map[string]any
// @Failure   404  {object}  map[string]any
// @Failure   409  {object}  map[string]any
// @Router    /v1/admin/bookings/{reference}/check-out [post]
func (h *Controller) CheckOut(c echo.Context) error {
	b, err := h.Svc.CheckOut(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return h.fail(c, "booking check-out", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": NewView(b)})
}

// Cancel godoc
// @Summary   Cancel a booking
// @Tags      admin
// @Security  BearerAuth
// @Accept    json
// @Param     reference  path  string     true   "Booking reference"
// @Param     payload    body  CancelReq  false  "Reason"
// @Success   200  {object}  map[string]any
// @Failure   404  {object}  map[string]any
// @Failure   409  {object}  map[string]any
// @Router    /v1/admin/bookings/{reference}/cancel [post]
func (h *Controller) Cancel(c echo.Context) error {
	var req CancelReq
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"code": bsvc.ErrValidation, "message": "invalid JSON"})
		}
	}
	b, err := h.Svc.Cancel(c.Request().Context(), c.Param("reference"), req.Reason)
	if err != nil {
		return h.fail(c, "booking cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": NewView(b)})
}

// NoShow godoc
// @Summary   Mark a booking as no-show
// @Tags      admin
// @Security  BearerAuth
// @Param     reference  path  string  true  "Booking reference"
// @Success   200  {object}  map[string]any
// @Failure   404  {object}  map[string]any
// @Failure   409  {object}  map[string]any
// @Router    /v1/admin/bookings/{reference}/no-show [post]
func (h *Controller) NoShow(c echo.Context) error {
	b, err := h.Svc.MarkNoShow(c.Request().Context(), c.Param("reference"))
	if err != nil {
		return h.fail(c, "booking no-show", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": NewView(b)})
}

// SweepNoShows godoc
// @Summary   Mark every overdue booking as no-show
// @Tags      admin
// @Security  BearerAuth
// @Success   200  {object}  map[string]any
// @Router    /v1/admin/bookings/no-show-sweep [post]
func (h *Controller) SweepNoShows(c echo.Context) error {
	n, err := h.Svc.SweepNoShows(c.Request().Context())
	if err != nil {
		return h.fail(c, "no-show sweep", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": echo.Map{"marked": n}})
}
