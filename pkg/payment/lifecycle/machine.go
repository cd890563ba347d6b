// Package lifecycle owns the contribution status machine. Every status
// change in the system, whether driven by a gateway callback or an admin,
// goes through Machine.Apply so the transition rules, the transaction
// ledger, and the audit trail can never drift apart.
package lifecycle

import (
	"context"
	"strings"
	"sync"
	"time"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/repository/specification"
	"crowdfund-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// allowed maps each status to the statuses reachable from it. Refunded is
// terminal. A transition to the current status is not a no-op, it is
// rejected like any other missing edge.
var allowed = map[entity.PaymentStatus][]entity.PaymentStatus{
	entity.PaymentStatusPending: {entity.PaymentStatusPaid, entity.PaymentStatusFailed},
	entity.PaymentStatusFailed:  {entity.PaymentStatusPending},
	entity.PaymentStatusPaid:    {entity.PaymentStatusRefunded},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to entity.PaymentStatus) bool {
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Request describes one status transition. Reason is mandatory for
// transitions into refunded and recorded on the audit entry otherwise.
// Transaction, when set, is appended to the ledger inside the same commit
// as the status change.
type Request struct {
	ContributionId   uuid.UUID
	NewStatus        entity.PaymentStatus
	Reason           string
	AdminUserId      *uuid.UUID
	PaymentReference *string
	FailureReason    *string
	Transaction      *entity.Transaction
}

// nowFunc is swapped in tests to pin PaidAt.
var nowFunc = time.Now

type Machine struct {
	factory unitofwork.RepositoryFactory
	locks   keyedLock
}

func NewMachine(factory unitofwork.RepositoryFactory) *Machine {
	return &Machine{factory: factory}
}

// Apply validates and commits a single status transition. The status
// update, the optional transaction row, and the audit entry commit
// together or not at all. Concurrent transitions on the same contribution
// are rejected, not queued.
func (m *Machine) Apply(ctx context.Context, req Request) (*entity.Contribution, error) {
	if !req.NewStatus.Valid() {
		return nil, apperror.Validation("payment_status", "unknown payment status: "+string(req.NewStatus))
	}

	if !m.locks.tryLock(req.ContributionId) {
		return nil, apperror.Concurrent(req.ContributionId.String())
	}
	defer m.locks.unlock(req.ContributionId)

	uow := m.factory.NewUnitOfWork(ctx)

	contribution, err := uow.ContributionRepository().FindOne(ctx, specification.ByID{ID: req.ContributionId})
	if err != nil {
		return nil, err
	}
	if contribution == nil {
		return nil, apperror.NotFound("contribution", req.ContributionId.String())
	}

	previous := contribution.PaymentStatus
	if !CanTransition(previous, req.NewStatus) {
		return nil, apperror.InvalidTransition(req.ContributionId.String(), string(previous), string(req.NewStatus))
	}

	reason := strings.TrimSpace(req.Reason)
	if req.NewStatus == entity.PaymentStatusRefunded && reason == "" {
		return nil, apperror.Validation("reason", "refund requires a non-empty reason")
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	contribution.PaymentStatus = req.NewStatus
	switch req.NewStatus {
	case entity.PaymentStatusPaid:
		if contribution.PaidAt == nil {
			now := nowFunc()
			contribution.PaidAt = &now
		}
		contribution.FailureReason = nil
		if req.PaymentReference != nil {
			contribution.PaymentReference = req.PaymentReference
		}
	case entity.PaymentStatusFailed:
		contribution.FailureReason = req.FailureReason
	case entity.PaymentStatusPending:
		// Retry of a failed payment. The old failure reason stays visible
		// in the audit trail, not on the contribution.
		contribution.FailureReason = nil
	}

	if err := uow.ContributionRepository().UpdateLifecycleFields(ctx, contribution); err != nil {
		return nil, err
	}

	if req.Transaction != nil {
		if req.Transaction.Id == uuid.Nil {
			req.Transaction.Id = uuid.New()
		}
		req.Transaction.ContributionId = contribution.Id
		if err := uow.TransactionRepository().Create(ctx, req.Transaction); err != nil {
			return nil, err
		}
	}

	audit := &entity.ContributionAuditLog{
		Id:             uuid.New(),
		ContributionId: contribution.Id,
		AdminUserId:    req.AdminUserId,
		PreviousStatus: previous,
		NewStatus:      req.NewStatus,
	}
	if reason != "" {
		audit.Reason = &reason
	}
	if err := uow.AuditLogRepository().Append(ctx, audit); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence(err)
	}
	return contribution, nil
}

// keyedLock serializes transitions per contribution. tryLock never blocks;
// a held key means another request is mid-transition.
type keyedLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func (l *keyedLock) tryLock(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[uuid.UUID]struct{})
	}
	if _, busy := l.held[id]; busy {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

func (l *keyedLock) unlock(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}
