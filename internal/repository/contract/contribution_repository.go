package contract

import (
	"context"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ContributionRepository interface {
	Create(ctx context.Context, contribution *entity.Contribution) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contribution, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contribution, error)
	// FindOneWithTransactions preloads the ledger entries, newest first.
	FindOneWithTransactions(ctx context.Context, id uuid.UUID) (*entity.Contribution, error)
	// UpdateLifecycleFields persists the status-carrying columns only.
	// Amount is immutable after creation and is deliberately not written.
	UpdateLifecycleFields(ctx context.Context, contribution *entity.Contribution) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Archive soft-deletes. Hard deletion of a contribution with ledger
	// entries is disallowed by design; there is no unscoped delete here.
	Archive(ctx context.Context, id uuid.UUID) error
}
