package contract

import (
	"context"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/repository/specification"

	"github.com/google/uuid"
)

// TransactionRepository is append-only: no Update, no Delete. A written
// ledger entry is immutable.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *entity.Transaction) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error)
	CountByContribution(ctx context.Context, contributionId uuid.UUID) (int64, error)
}
