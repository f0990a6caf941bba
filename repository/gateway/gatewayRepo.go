package gatewayrepo

import "context"

const (
	MethodCard         = "card"
	MethodBankTransfer = "bank_transfer"
	MethodCash         = "cash"
)

type Card struct {
	Number   string
	Holder   string
	ExpMonth int
	ExpYear  int
	CVV      string
}

type ChargeReq struct {
	Reference string
	Amount    float64
	Currency  string
	Method    string
	Card      Card
}

// ChargeResult is the processor's verdict. A decline is not an error.
type ChargeResult struct {
	Approved      bool
	TransactionID string
	DeclineReason string
}

type Repo interface {
	// Charge returns an error only when the processor could not be reached
	// or answered with something unreadable.
	Charge(ctx context.Context, req ChargeReq) (*ChargeResult, error)
}
