// FILE: internal/entity/contribution_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle dimension of a contribution.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Contribution is a pledged monetary amount from a user toward a project.
// Amount is immutable after creation. PaidAt is set exactly once, on the
// first transition into paid.
type Contribution struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	ProjectId        uuid.UUID
	Amount           float64
	PaymentStatus    PaymentStatus
	Notes            *string
	PaymentReference *string
	FailureReason    *string
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Loaded on demand, newest first.
	Transactions []*Transaction
}
