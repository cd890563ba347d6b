package contract

import (
	"context"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/repository/specification"
)

// AuditLogRepository is append-only, one row per committed transition.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.ContributionAuditLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContributionAuditLog, error)
}
