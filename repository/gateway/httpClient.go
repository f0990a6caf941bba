package gatewayrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hotelbooking/util/httpx"
)

type httpRepo struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTP(baseURL, apiKey string) Repo {
	return &httpRepo{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: httpx.Client()}
}

type chargeBody struct {
	Reference string   `json:"reference"`
	Amount    float64  `json:"amount"`
	Currency  string   `json:"currency"`
	Method    string   `json:"method"`
	Card      *cardDTO `json:"card,omitempty"`
}

type cardDTO struct {
	Number   string `json:"number"`
	Holder   string `json:"holder"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	CVV      string `json:"cvv"`
}

type chargeResp struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	DeclineReason string `json:"decline_reason"`
}

func (r *httpRepo) Charge(ctx context.Context, req ChargeReq) (*ChargeResult, error) {
	body := chargeBody{
		Reference: req.Reference,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.Method,
	}
	if req.Method == MethodCard {
		body.Card = &cardDTO{
			Number:   req.Card.Number,
			Holder:   req.Card.Holder,
			ExpMonth: req.Card.ExpMonth,
			ExpYear:  req.Card.ExpYear,
			CVV:      req.Card.CVV,
		}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/charges", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 402 carries a decline body; anything else >= 300 is a gateway failure.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusPaymentRequired {
		return nil, fmt.Errorf("gateway charge failed: %s", resp.Status)
	}

	var out chargeResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	switch out.Status {
	case "approved", "succeeded":
		if out.ID == "" {
			return nil, errors.New("gateway: empty transaction id")
		}
		return &ChargeResult{Approved: true, TransactionID: out.ID}, nil
	case "declined", "failed":
		reason := out.DeclineReason
		if reason == "" {
			reason = "Payment was declined."
		}
		return &ChargeResult{Approved: false, TransactionID: out.ID, DeclineReason: reason}, nil
	default:
		return nil, fmt.Errorf("gateway: unknown charge status %q", out.Status)
	}
}
