// Package memory provides an in-process implementation of the unit of work
// used by unit tests and local tooling. Begin snapshots the store; Rollback
// restores it, so atomic-commit semantics match the database-backed
// implementation closely enough to exercise the status machine.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/repository/contract"
	"crowdfund-be/internal/repository/specification"
	"crowdfund-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Ledger struct {
	mu            sync.Mutex
	contributions map[uuid.UUID]*entity.Contribution
	transactions  []*entity.Transaction
	audits        []*entity.ContributionAuditLog
	users         map[uuid.UUID]*entity.User
	projects      map[uuid.UUID]*entity.Project
}

func NewLedger() *Ledger {
	return &Ledger{
		contributions: make(map[uuid.UUID]*entity.Contribution),
		users:         make(map[uuid.UUID]*entity.User),
		projects:      make(map[uuid.UUID]*entity.Project),
	}
}

// NewUnitOfWork implements unitofwork.RepositoryFactory.
func (l *Ledger) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUow{ledger: l}
}

type snapshot struct {
	contributions map[uuid.UUID]*entity.Contribution
	transactions  []*entity.Transaction
	audits        []*entity.ContributionAuditLog
	users         map[uuid.UUID]*entity.User
	projects      map[uuid.UUID]*entity.Project
}

type memUow struct {
	ledger *Ledger
	snap   *snapshot
}

func (u *memUow) Begin(ctx context.Context) error {
	l := u.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	contributions := make(map[uuid.UUID]*entity.Contribution, len(l.contributions))
	for k, v := range l.contributions {
		cp := *v
		contributions[k] = &cp
	}
	users := make(map[uuid.UUID]*entity.User, len(l.users))
	for k, v := range l.users {
		cp := *v
		users[k] = &cp
	}
	projects := make(map[uuid.UUID]*entity.Project, len(l.projects))
	for k, v := range l.projects {
		cp := *v
		projects[k] = &cp
	}
	u.snap = &snapshot{
		contributions: contributions,
		transactions:  append([]*entity.Transaction(nil), l.transactions...),
		audits:        append([]*entity.ContributionAuditLog(nil), l.audits...),
		users:         users,
		projects:      projects,
	}
	return nil
}

func (u *memUow) Commit() error {
	u.snap = nil
	return nil
}

func (u *memUow) Rollback() error {
	if u.snap == nil {
		return nil
	}
	l := u.ledger
	l.mu.Lock()
	defer l.mu.Unlock()
	l.contributions = u.snap.contributions
	l.transactions = u.snap.transactions
	l.audits = u.snap.audits
	l.users = u.snap.users
	l.projects = u.snap.projects
	u.snap = nil
	return nil
}

func (u *memUow) ContributionRepository() contract.ContributionRepository {
	return &memContributionRepo{ledger: u.ledger}
}

func (u *memUow) TransactionRepository() contract.TransactionRepository {
	return &memTransactionRepo{ledger: u.ledger}
}

func (u *memUow) AuditLogRepository() contract.AuditLogRepository {
	return &memAuditRepo{ledger: u.ledger}
}

func (u *memUow) UserRepository() contract.UserRepository {
	return &memUserRepo{ledger: u.ledger}
}

func (u *memUow) ProjectRepository() contract.ProjectRepository {
	return &memProjectRepo{ledger: u.ledger}
}

// ---- contribution repo ----

type memContributionRepo struct {
	ledger *Ledger
}

func (r *memContributionRepo) Create(ctx context.Context, c *entity.Contribution) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	cp := *c
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	cp.UpdatedAt = cp.CreatedAt
	r.ledger.contributions[cp.Id] = &cp
	return nil
}

func (r *memContributionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contribution, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, c := range r.ledger.contributions {
		if matchContribution(c, specs) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memContributionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contribution, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*entity.Contribution
	for _, c := range r.ledger.contributions {
		if matchContribution(c, specs) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memContributionRepo) FindOneWithTransactions(ctx context.Context, id uuid.UUID) (*entity.Contribution, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	c, ok := r.ledger.contributions[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	for _, t := range r.ledger.transactions {
		if t.ContributionId == id {
			tc := *t
			cp.Transactions = append(cp.Transactions, &tc)
		}
	}
	sort.Slice(cp.Transactions, func(i, j int) bool {
		return cp.Transactions[i].CreatedAt.After(cp.Transactions[j].CreatedAt)
	})
	return &cp, nil
}

func (r *memContributionRepo) UpdateLifecycleFields(ctx context.Context, c *entity.Contribution) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	existing, ok := r.ledger.contributions[c.Id]
	if !ok {
		return nil
	}
	existing.PaymentStatus = c.PaymentStatus
	existing.PaymentReference = c.PaymentReference
	existing.FailureReason = c.FailureReason
	existing.PaidAt = c.PaidAt
	existing.Notes = c.Notes
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *memContributionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *memContributionRepo) Archive(ctx context.Context, id uuid.UUID) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	delete(r.ledger.contributions, id)
	return nil
}

// ---- transaction repo ----

type memTransactionRepo struct {
	ledger *Ledger
}

func (r *memTransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	cp := *t
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.ledger.transactions = append(r.ledger.transactions, &cp)
	return nil
}

func (r *memTransactionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*entity.Transaction
	for _, t := range r.ledger.transactions {
		if matchTransaction(t, specs) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTransactionRepo) CountByContribution(ctx context.Context, contributionId uuid.UUID) (int64, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var n int64
	for _, t := range r.ledger.transactions {
		if t.ContributionId == contributionId {
			n++
		}
	}
	return n, nil
}

// ---- audit repo ----

type memAuditRepo struct {
	ledger *Ledger
}

func (r *memAuditRepo) Append(ctx context.Context, e *entity.ContributionAuditLog) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	cp := *e
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.ledger.audits = append(r.ledger.audits, &cp)
	return nil
}

func (r *memAuditRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContributionAuditLog, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*entity.ContributionAuditLog
	for _, e := range r.ledger.audits {
		if matchAudit(e, specs) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- user repo ----

type memUserRepo struct {
	ledger *Ledger
}

func (r *memUserRepo) Create(ctx context.Context, u *entity.User) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	cp := *u
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.ledger.users[cp.Id] = &cp
	return nil
}

func (r *memUserRepo) Update(ctx context.Context, u *entity.User) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	if existing, ok := r.ledger.users[u.Id]; ok {
		*existing = *u
	}
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	delete(r.ledger.users, id)
	return nil
}

func (r *memUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, u := range r.ledger.users {
		if matchUser(u, specs) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*entity.User
	for _, u := range r.ledger.users {
		if matchUser(u, specs) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *memUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	if u, ok := r.ledger.users[id]; ok {
		u.Status = entity.UserStatus(status)
	}
	return nil
}

// ---- project repo ----

type memProjectRepo struct {
	ledger *Ledger
}

func (r *memProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	cp := *p
	r.ledger.projects[cp.Id] = &cp
	return nil
}

func (r *memProjectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, p := range r.ledger.projects {
		if matchProject(p, specs) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProjectRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*entity.Project
	for _, p := range r.ledger.projects {
		if matchProject(p, specs) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	p, ok := r.ledger.projects[id]
	if !ok {
		return apperror.NotFound("project", id.String())
	}
	p.Status = entity.ProjectStatus(status)
	return nil
}

// ---- spec interpretation ----
// The GORM-backed repositories apply specifications to the query builder; in
// memory we interpret the subset the services actually use.

func matchContribution(c *entity.Contribution, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if c.Id != sp.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range sp.IDs {
				if c.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.ByPaymentStatus:
			if string(c.PaymentStatus) != sp.Status {
				return false
			}
		case specification.UserOwnedBy:
			if c.UserId != sp.UserID {
				return false
			}
		case specification.ByProject:
			if c.ProjectId != sp.ProjectID {
				return false
			}
		case specification.CreatedBetween:
			if c.CreatedAt.Before(sp.From) || c.CreatedAt.After(sp.To) {
				return false
			}
		}
	}
	return true
}

func matchTransaction(t *entity.Transaction, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if t.Id != sp.ID {
				return false
			}
		case specification.ByContribution:
			if t.ContributionId != sp.ContributionID {
				return false
			}
		case specification.ByGatewayTransaction:
			if t.GatewayTransactionId == nil || *t.GatewayTransactionId != sp.GatewayTransactionID {
				return false
			}
		}
	}
	return true
}

func matchAudit(e *entity.ContributionAuditLog, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByContribution:
			if e.ContributionId != sp.ContributionID {
				return false
			}
		}
	}
	return true
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if u.Id != sp.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range sp.IDs {
				if u.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.ByEmail:
			if u.Email != sp.Email {
				return false
			}
		case specification.ByRole:
			if string(u.Role) != sp.Role {
				return false
			}
		case specification.ActiveUsers:
			if u.Status != entity.UserStatusActive {
				return false
			}
		}
	}
	return true
}

func matchProject(p *entity.Project, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if p.Id != sp.ID {
				return false
			}
		}
	}
	return true
}
