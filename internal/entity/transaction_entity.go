// FILE: internal/entity/transaction_entity.go
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeRefund  TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Transaction is one immutable ledger entry recording a payment or refund
// attempt and its gateway outcome. Rows are append-only: the repository
// exposes no update or delete.
type Transaction struct {
	Id                   uuid.UUID
	ContributionId       uuid.UUID
	Type                 TransactionType
	Amount               float64
	Status               TransactionStatus
	GatewayTransactionId *string
	GatewayResponse      json.RawMessage
	ErrorCode            *string
	ErrorMessage         *string
	CreatedAt            time.Time
}
