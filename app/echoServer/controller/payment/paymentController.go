package payment

import (
	"errors"
	"log/slog"
	"net/http"

	bookingctrl "hotelbooking/app/echoServer/controller/booking"
	"hotelbooking/app/echoServer/validation"
	gatewayrepo "hotelbooking/repository/gateway"
	paymentsvc "hotelbooking/service/payment"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	code := paymentsvc.Code(err)
	switch code {
	case paymentsvc.ErrValidation:
		fe := &paymentsvc.FieldError{Field: "body", Msg: "is invalid"}
		errors.As(err, &fe)
		return c.JSON(http.StatusBadRequest, echo.Map{"code": code, "message": "validation error", "errors": echo.Map{fe.Field: fe.Msg}})
	case paymentsvc.ErrDeclined:
		de := &paymentsvc.PaymentDeclinedError{Reason: "payment declined"}
		errors.As(err, &de)
		return c.JSON(http.StatusBadRequest, echo.Map{"code": code, "message": de.Reason})
	case paymentsvc.ErrAlreadyPaid:
		return c.JSON(http.StatusBadRequest, echo.Map{"code": code, "message": "booking is already paid"})
	case paymentsvc.ErrNotPayable:
		return c.JSON(http.StatusBadRequest, echo.Map{"code": code, "message": "booking can no longer be paid"})
	case paymentsvc.ErrBookingNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"code": code, "message": "booking not found"})
	default:
		h.Log.Error(op, "err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(), "method", c.Request().Method)
		return c.JSON(http.StatusInternalServerError, echo.Map{"code": paymentsvc.ErrInternal, "message": "internal error"})
	}
}

// Apply godoc
// @Summary      Pay for a booking
// @Description  Charges the card for the booking total and confirms the booking. A second payment returns ALREADY_PAID.
// @Tags         payment
// @Accept       json
// @Produce      json
// @Param        payload  body  PaymentReq  true  "Payment payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any  "validation, decline, already paid"
// @Failure      404  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /v1/payment [post]
func (h *Controller) Apply(c echo.Context) error {
	var req PaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": paymentsvc.ErrValidation, "message": "invalid JSON"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"code":    paymentsvc.ErrValidation,
			"message": "validation error",
			"errors":  validation.Fields(err),
		})
	}

	d := req.PaymentData
	out, err := h.Svc.Apply(c.Request().Context(), paymentsvc.ApplyInput{
		Reference: req.BookingReference,
		Amount:    d.Amount,
		Method:    d.Method,
		Card: gatewayrepo.Card{
			Number:   d.CardNumber,
			Holder:   d.CardholderName,
			ExpMonth: d.ExpiryMonth,
			ExpYear:  d.ExpiryYear,
			CVV:      d.CVV,
		},
	})
	if err != nil {
		return h.fail(c, "payment apply", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "payment applied",
		"booking":       bookingctrl.NewView(out.Booking),
		"transactionId": out.TransactionID,
		"amount":        out.Amount,
	})
}

// Settle godoc
// @Summary   Record a cash or bank transfer payment
// @Tags      admin
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     reference  path  string     true  "Booking reference"
// @Param     payload    body  SettleReq  true  "Settlement method"
// @Success   200  {object}  map[string]any
// @Failure   400  {object}  map[string]any
// @Failure   404  {object}  map[string]any
// @Router    /v1/admin/bookings/{reference}/settle [post]
func (h *Controller) Settle(c echo.Context) error {
	var req SettleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"code": paymentsvc.ErrValidation, "message": "invalid JSON"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"code":    paymentsvc.ErrValidation,
			"message": "validation error",
			"errors":  validation.Fields(err),
		})
	}

	out, err := h.Svc.Settle(c.Request().Context(), paymentsvc.SettleInput{
		Reference: c.Param("reference"),
		Method:    req.Method,
	})
	if err != nil {
		return h.fail(c, "payment settle", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "payment settled",
		"booking":       bookingctrl.NewView(out.Booking),
		"transactionId": out.TransactionID,
		"amount":        out.Amount,
	})
}

// Status godoc
// @Summary   Payment status of a booking
// @Tags      payment
// @Produce   json
// @Param     reference  query  string  true  "Booking reference"
// @Success   200  {object}  map[string]any
// @Failure   404  {object}  map[string]any
// @Router    /v1/payment [get]
func (h *Controller) Status(c echo.Context) error {
	snap, err := h.Svc.Status(c.Request().Context(), c.QueryParam("reference"))
	if err != nil {
		return h.fail(c, "payment status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": snap})
}
