package payment_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	paymentctrl "hotelbooking/app/echoServer/controller/payment"
	"hotelbooking/app/echoServer/validation"
	"hotelbooking/model"
	paymentsvc "hotelbooking/service/payment"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type svcStub struct {
	applyFn  func(ctx context.Context, in paymentsvc.ApplyInput) (*paymentsvc.Applied, error)
	settleFn func(ctx context.Context, in paymentsvc.SettleInput) (*paymentsvc.Applied, error)
	statusFn func(ctx context.Context, ref string) (*model.PaymentSnapshot, error)
}

func (s *svcStub) Apply(ctx context.Context, in paymentsvc.ApplyInput) (*paymentsvc.Applied, error) {
	return s.applyFn(ctx, in)
}
func (s *svcStub) Settle(ctx context.Context, in paymentsvc.SettleInput) (*paymentsvc.Applied, error) {
	return s.settleFn(ctx, in)
}
func (s *svcStub) Status(ctx context.Context, ref string) (*model.PaymentSnapshot, error) {
	return s.statusFn(ctx, ref)
}

func do(t *testing.T, s paymentsvc.Service, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	e.Validator = validation.New()
	h := &paymentctrl.Controller{Svc: s, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := h.Apply
	if method == http.MethodGet {
		handler = h.Status
	}
	require.NoError(t, handler(c))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

const payBody = `{"bookingReference":"BK1704448800000ABCDE","paymentData":{"amount":336,"method":"card",
	"cardNumber":"4242424242424242","cardholderName":"Ana Lima","expiryMonth":12,"expiryYear":2027,"cvv":"123"}}`

func TestApply_OK(t *testing.T) {
	var got paymentsvc.ApplyInput
	s := &svcStub{applyFn: func(ctx context.Context, in paymentsvc.ApplyInput) (*paymentsvc.Applied, error) {
		got = in
		tx, method, at := "TXN1", "card", time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC)
		return &paymentsvc.Applied{
			Booking: &model.Booking{
				BookingReference: in.Reference, Status: model.BookingConfirmed, PaymentStatus: model.PaymentPaid,
				TransactionID: &tx, PaymentMethod: &method, PaymentProcessedAt: &at,
			},
			TransactionID: tx,
			Amount:        336,
		}, nil
	}}

	rec, out := do(t, s, http.MethodPost, "/v1/payment", payBody)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "TXN1", out["transactionId"])
	require.Equal(t, "paid", out["booking"].(map[string]any)["paymentStatus"])

	require.Equal(t, "BK1704448800000ABCDE", got.Reference)
	require.Equal(t, 336.0, *got.Amount)
	require.Equal(t, "4242424242424242", got.Card.Number)
	require.Equal(t, 2027, got.Card.ExpYear)
}

func TestApply_RequestValidation(t *testing.T) {
	s := &svcStub{}
	rec, out := do(t, s, http.MethodPost, "/v1/payment", `{"paymentData":{"method":"cheque","cvv":"12a"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := out["errors"].(map[string]any)
	require.Contains(t, errs, "bookingReference")
	require.Contains(t, errs, "paymentData.method")
	require.Contains(t, errs, "paymentData.cvv")

	rec, _ = do(t, s, http.MethodPost, "/v1/payment", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApply_OnlyCardOnline(t *testing.T) {
	called := false
	s := &svcStub{applyFn: func(ctx context.Context, in paymentsvc.ApplyInput) (*paymentsvc.Applied, error) {
		called = true
		return nil, nil
	}}
	for _, m := range []string{"cash", "bank_transfer"} {
		rec, out := do(t, s, http.MethodPost, "/v1/payment",
			`{"bookingReference":"BK1704448800000ABCDE","paymentData":{"method":"`+m+`"}}`)
		require.Equal(t, http.StatusBadRequest, rec.Code, m)
		require.Contains(t, out["errors"].(map[string]any), "paymentData.method")
	}
	require.False(t, called)
}

func settle(t *testing.T, s paymentsvc.Service, ref, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	e.Validator = validation.New()
	h := &paymentctrl.Controller{Svc: s, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/bookings/"+ref+"/settle", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("reference")
	c.SetParamValues(ref)

	require.NoError(t, h.Settle(c))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestSettle_OK(t *testing.T) {
	var got paymentsvc.SettleInput
	s := &svcStub{settleFn: func(ctx context.Context, in paymentsvc.SettleInput) (*paymentsvc.Applied, error) {
		got = in
		tx, method := "TXN9", in.Method
		return &paymentsvc.Applied{
			Booking: &model.Booking{
				BookingReference: in.Reference, Status: model.BookingConfirmed, PaymentStatus: model.PaymentPaid,
				TransactionID: &tx, PaymentMethod: &method,
			},
			TransactionID: tx,
			Amount:        336,
		}, nil
	}}

	rec, out := settle(t, s, "BK1704448800000ABCDE", `{"method":"cash"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "TXN9", out["transactionId"])
	require.Equal(t, paymentsvc.SettleInput{Reference: "BK1704448800000ABCDE", Method: "cash"}, got)
}

func TestSettle_RejectsCard(t *testing.T) {
	s := &svcStub{}
	rec, out := settle(t, s, "BK1704448800000ABCDE", `{"method":"card"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, out["errors"].(map[string]any), "method")

	rec, _ = settle(t, s, "BK1704448800000ABCDE", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApply_ErrorMapping(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{&paymentsvc.PaymentDeclinedError{Reason: "Your card has insufficient funds."}, http.StatusBadRequest, "PAYMENT_DECLINED", "Your card has insufficient funds."},
		{paymentsvc.NewError(paymentsvc.ErrAlreadyPaid, ""), http.StatusBadRequest, "ALREADY_PAID", "booking is already paid"},
		{paymentsvc.NewError(paymentsvc.ErrNotPayable, "booking is cancelled"), http.StatusBadRequest, "NOT_PAYABLE", "booking can no longer be paid"},
		{paymentsvc.NewError(paymentsvc.ErrBookingNotFound, ""), http.StatusNotFound, "BOOKING_NOT_FOUND", "booking not found"},
		{&paymentsvc.FieldError{Field: "amount", Msg: "must equal the booking total 336.00"}, http.StatusBadRequest, "VALIDATION_ERROR", "validation error"},
		{paymentsvc.NewError(paymentsvc.ErrInternal, "charge"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal error"},
	}
	for _, tc := range cases {
		s := &svcStub{applyFn: func(ctx context.Context, in paymentsvc.ApplyInput) (*paymentsvc.Applied, error) {
			return nil, tc.err
		}}
		rec, out := do(t, s, http.MethodPost, "/v1/payment", payBody)
		require.Equal(t, tc.status, rec.Code, tc.code)
		require.Equal(t, tc.code, out["code"])
		require.Equal(t, tc.message, out["message"])
	}
}

func TestStatus(t *testing.T) {
	s := &svcStub{statusFn: func(ctx context.Context, ref string) (*model.PaymentSnapshot, error) {
		require.Equal(t, "BK1704448800000ABCDE", ref)
		return &model.PaymentSnapshot{BookingReference: ref, PaymentStatus: model.PaymentPending, TotalAmount: 336, DepositRequired: 168, RemainingAmount: 168}, nil
	}}
	rec, out := do(t, s, http.MethodGet, "/v1/payment?reference=BK1704448800000ABCDE", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := out["data"].(map[string]any)
	require.Equal(t, "pending", data["paymentStatus"])
	require.Equal(t, 168.0, data["depositRequired"])
}
