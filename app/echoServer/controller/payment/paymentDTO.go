package payment

// PaymentReq is the body of POST /v1/payment.
type PaymentReq struct {
	BookingReference string      `json:"bookingReference" validate:"required"`
	PaymentData      PaymentData `json:"paymentData"`
}

type PaymentData struct {
	Amount         *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Method         string   `json:"method,omitempty" validate:"omitempty,oneof=card"`
	CardNumber     string   `json:"cardNumber,omitempty" validate:"max=23"`
	CardholderName string   `json:"cardholderName,omitempty" validate:"max=100"`
	ExpiryMonth    int      `json:"expiryMonth,omitempty" validate:"omitempty,gte=1,lte=12"`
	ExpiryYear     int      `json:"expiryYear,omitempty" validate:"omitempty,gte=2000,lte=2100"`
	CVV            string   `json:"cvv,omitempty" validate:"omitempty,numeric,min=3,max=4"`
}

// SettleReq is the body of POST /v1/admin/bookings/:reference/settle.
type SettleReq struct {
	Method string `json:"method" validate:"required,oneof=cash bank_transfer"`
}
