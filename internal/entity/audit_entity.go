// FILE: internal/entity/audit_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContributionAuditLog records one committed status transition.
// AdminUserId is nil for system-driven transitions (gateway callbacks).
// PreviousStatus and NewStatus always differ.
type ContributionAuditLog struct {
	Id             uuid.UUID
	ContributionId uuid.UUID
	AdminUserId    *uuid.UUID
	PreviousStatus PaymentStatus
	NewStatus      PaymentStatus
	Reason         *string
	CreatedAt      time.Time
}
