// Package gateway abstracts the payment provider behind a small client
// contract. Initiation is synchronous; the authoritative payment outcome
// arrives later through the provider's webhook and is decoded into an
// Outcome by the transport layer.
package gateway

import (
	"context"
	"encoding/json"
)

// PaymentRequest initiates a charge for one contribution. OrderId is the
// contribution id on the provider side. PhoneNumber and AccountReference
// identify the payer for mobile-money channels.
type PaymentRequest struct {
	OrderId          string
	Amount           float64
	PhoneNumber      string
	AccountReference string
	CustomerName     string
	CustomerEmail    string
	Description      string
}

// PaymentInitiation is the synchronous half of a charge: the provider has
// accepted the request and will report settlement asynchronously.
type PaymentInitiation struct {
	GatewayTransactionId string
	RedirectUrl          string
	RawResponse          json.RawMessage
}

type RefundRequest struct {
	OrderId              string
	GatewayTransactionId string
	Amount               float64
	Reason               string
}

type RefundResult struct {
	GatewayRefundId string
	RawResponse     json.RawMessage
}

type Client interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentInitiation, error)
	InitiateRefund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

// OutcomeStatus is the settled result reported by the provider.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// Outcome is the asynchronous settlement notification after decoding and
// signature verification. RawPayload keeps the provider's full body for
// the transaction ledger.
type Outcome struct {
	OrderId              string          `json:"order_id"`
	GatewayTransactionId string          `json:"gateway_transaction_id"`
	Status               OutcomeStatus   `json:"status"`
	StatusCode           string          `json:"status_code"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	RawPayload           json.RawMessage `json:"raw_payload,omitempty"`
}
