package unitofwork

import (
	"context"

	"crowdfund-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one logical operation. Begin/Commit
// bound the atomic section: a status transition commits its contribution
// update, ledger entry and audit row as a single database transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ContributionRepository() contract.ContributionRepository
	TransactionRepository() contract.TransactionRepository
	AuditLogRepository() contract.AuditLogRepository
	UserRepository() contract.UserRepository
	ProjectRepository() contract.ProjectRepository
}
