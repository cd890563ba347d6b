package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/repository/memory"
	"crowdfund-be/internal/repository/specification"

	"github.com/google/uuid"
)

func seedContribution(t *testing.T, ledger *memory.Ledger, status entity.PaymentStatus) *entity.Contribution {
	t.Helper()
	contribution := &entity.Contribution{
		Id:            uuid.New(),
		UserId:        uuid.New(),
		ProjectId:     uuid.New(),
		Amount:        250000,
		PaymentStatus: status,
	}
	if status == entity.PaymentStatusPaid {
		paidAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
		contribution.PaidAt = &paidAt
	}
	uow := ledger.NewUnitOfWork(context.Background())
	if err := uow.ContributionRepository().Create(context.Background(), contribution); err != nil {
		t.Fatalf("seed contribution: %v", err)
	}
	return contribution
}

func kindOf(t *testing.T, err error) apperror.Kind {
	t.Helper()
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an apperror", err)
	}
	return appErr.Kind
}

func TestApplyPendingToPaid(t *testing.T) {
	ledger := memory.NewLedger()
	contribution := seedContribution(t, ledger, entity.PaymentStatusPending)
	machine := NewMachine(ledger)

	pinned := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	nowFunc = func() time.Time { return pinned }
	defer func() { nowFunc = time.Now }()

	reference := "ORDER-001"
	gatewayTxn := "GW123"
	updated, err := machine.Apply(context.Background(), Request{
		ContributionId:   contribution.Id,
		NewStatus:        entity.PaymentStatusPaid,
		PaymentReference: &reference,
		Transaction: &entity.Transaction{
			Type:                 entity.TransactionTypePayment,
			Amount:               contribution.Amount,
			Status:               entity.TransactionStatusSuccess,
			GatewayTransactionId: &gatewayTxn,
			GatewayResponse:      json.RawMessage(`{"status_code":"200"}`),
		},
	})
	if err != nil {
		t.Fatalf("Apply returned %v", err)
	}
	if updated.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("status = %s, want paid", updated.PaymentStatus)
	}
	if updated.PaidAt == nil || !updated.PaidAt.Equal(pinned) {
		t.Errorf("PaidAt = %v, want %v", updated.PaidAt, pinned)
	}
	if updated.PaymentReference == nil || *updated.PaymentReference != reference {
		t.Errorf("PaymentReference = %v, want %s", updated.PaymentReference, reference)
	}

	uow := ledger.NewUnitOfWork(context.Background())
	stored, err := uow.ContributionRepository().FindOneWithTransactions(context.Background(), contribution.Id)
	if err != nil {
		t.Fatalf("reload contribution: %v", err)
	}
	if stored.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("stored status = %s, want paid", stored.PaymentStatus)
	}
	if len(stored.Transactions) != 1 {
		t.Fatalf("ledger has %d transactions, want 1", len(stored.Transactions))
	}
	if stored.Transactions[0].GatewayTransactionId == nil || *stored.Transactions[0].GatewayTransactionId != gatewayTxn {
		t.Errorf("transaction gateway id = %v, want %s", stored.Transactions[0].GatewayTransactionId, gatewayTxn)
	}

	audits, err := uow.AuditLogRepository().FindAll(context.Background(), specification.ByContribution{ContributionID: contribution.Id})
	if err != nil {
		t.Fatalf("load audits: %v", err)
	}
	if len(audits) != 1 {
		t.Fatalf("audit trail has %d entries, want 1", len(audits))
	}
	if audits[0].PreviousStatus != entity.PaymentStatusPending || audits[0].NewStatus != entity.PaymentStatusPaid {
		t.Errorf("audit = %s -> %s, want pending -> paid", audits[0].PreviousStatus, audits[0].NewStatus)
	}
	if audits[0].AdminUserId != nil {
		t.Error("system transition should have nil AdminUserId")
	}
}

func TestApplyRejectsIllegalTransition(t *testing.T) {
	ledger := memory.NewLedger()
	contribution := seedContribution(t, ledger, entity.PaymentStatusPending)
	machine := NewMachine(ledger)

	_, err := machine.Apply(context.Background(), Request{
		ContributionId: contribution.Id,
		NewStatus:      entity.PaymentStatusRefunded,
		Reason:         "never paid",
	})
	if kindOf(t, err) != apperror.KindInvalidTransition {
		t.Fatalf("error kind = %s, want INVALID_TRANSITION", kindOf(t, err))
	}

	uow := ledger.NewUnitOfWork(context.Background())
	stored, _ := uow.ContributionRepository().FindOne(context.Background(), specification.ByID{ID: contribution.Id})
	if stored.PaymentStatus != entity.PaymentStatusPending {
		t.Errorf("status changed to %s after rejected transition", stored.PaymentStatus)
	}
	audits, _ := uow.AuditLogRepository().FindAll(context.Background(), specification.ByContribution{ContributionID: contribution.Id})
	if len(audits) != 0 {
		t.Errorf("rejected transition wrote %d audit entries", len(audits))
	}
}

func TestApplyRejectsSameStatus(t *testing.T) {
	ledger := memory.NewLedger()
	contribution := seedContribution(t, ledger, entity.PaymentStatusPending)
	machine := NewMachine(ledger)

	_, err := machine.Apply(context.Background(), Request{
		ContributionId: contribution.Id,
		NewStatus:      entity.PaymentStatusPending,
	})
	if kindOf(t, err) != apperror.KindInvalidTransition {
		t.Errorf("error kind = %s, want INVALID_TRANSITION", kindOf(t, err))
	}
}

func TestApplyRefundRequiresReason(t *testing.T) {
	ledger := memory.NewLedger()
	contribution := seedContribution(t, ledger, entity.PaymentStatusPaid)
	machine := NewMachine(ledger)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := machine.Apply(context.Background(), Request{
			ContributionId: contribution.Id,
			NewStatus:      entity.PaymentStatusRefunded,
			Reason:         reason,
		})
		if kindOf(t, err) != apperror.KindValidation {
			t.Errorf("reason %q: error kind = %s, want VALIDATION_ERROR", reason, kindOf(t, err))
		}
	}

	uow := ledger.NewUnitOfWork(context.Background())
	stored, _ := uow.ContributionRepository().FindOne(context.Background(), specification.ByID{ID: contribution.Id})
	if stored.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("status = %s, want paid untouched", stored.PaymentStatus)
	}
}

func TestApplyRefundTrimsReasonAndKeepsPaidAt(t *testing.T) {
	ledger := memory.NewLedger()
	contribution := seedContribution(t, ledger, entity.PaymentStatusPaid)
	machine := NewMachine(ledger)

	admin := uuid.New()
	updated, err := machine.Apply(context.Background(), Request{
		ContributionId: contribution.Id,
		NewStatus:      entity.PaymentStatusRefunded,
		Reason:         "  duplicate charge  ",
		AdminUserId:    &admin,
	})
	if err != nil {
		t.Fatalf("Apply returned %v", err)
	}
	if updated.PaymentStatus != entity.PaymentStatusRefunded {
		t.Errorf("status = %s, want refunded", updated.PaymentStatus)
	}
	if updated.PaidAt == nil || !updated.PaidAt.Equal(*contribution.PaidAt) {
		t.Errorf("PaidAt = %v, want original %v preserved", updated.PaidAt, contribution.PaidAt)
	}

	uow := ledger.NewUnitOfWork(context.Background())
	audits, _ := uow.AuditLogRepository().FindAll(context.Background(), specification.ByContribution{ContributionID: contribution.Id})
	if len(audits) != 1 {
		t.Fatalf("audit trail has %d entries, want 1", len(audits))
	}
	if audits[0].Reason == nil || *audits[0].Reason != "duplicate charge" {
		t.Errorf("audit reason = %v, want trimmed %q", audits[0].Reason, "duplicate charge")
	}
	if audits[0].AdminUserId == nil || *audits[0].AdminUserId != admin {
		t.Errorf("audit AdminUserId = %v, want %s", audits[0].AdminUserId, admin)
	}
}

func TestApplyFailedToPendingClearsFailureReason(t *testing.T) {
	ledger := memory.NewLedger()
	contribution := seedContribution(t, ledger, entity.PaymentStatusPending)
	machine := NewMachine(ledger)

	reason := "insufficient balance"
	if _, err := machine.Apply(context.Background(), Request{
		ContributionId: contribution.Id,
		NewStatus:      entity.PaymentStatusFailed,
		FailureReason:  &reason,
	}); err != nil {
		t.Fatalf("pending -> failed returned %v", err)
	}

	uow := ledger.NewUnitOfWork(context.Background())
	stored, _ := uow.ContributionRepository().FindOne(context.Background(), specification.ByID{ID: contribution.Id})
	if stored.FailureReason == nil || *stored.FailureReason != reason {
		t.Fatalf("FailureReason = %v, want %q", stored.FailureReason, reason)
	}

	admin := uuid.New()
	updated, err := machine.Apply(context.Background(), Request{
		ContributionId: contribution.Id,
		NewStatus:      entity.PaymentStatusPending,
		Reason:         "customer asked to retry",
		AdminUserId:    &admin,
	})
	if err != nil {
		t.Fatalf("failed -> pending returned %v", err)
	}
	if updated.FailureReason != nil {
		t.Errorf("FailureReason = %v, want cleared on retry", updated.FailureReason)
	}

	audits, _ := uow.AuditLogRepository().FindAll(context.Background(), specification.ByContribution{ContributionID: contribution.Id})
	if len(audits) != 2 {
		t.Fatalf("audit trail has %d entries, want 2", len(audits))
	}
}

func TestApplyUnknownStatusAndMissingContribution(t *testing.T) {
	ledger := memory.NewLedger()
	machine := NewMachine(ledger)

	_, err := machine.Apply(context.Background(), Request{
		ContributionId: uuid.New(),
		NewStatus:      entity.PaymentStatus("archived"),
	})
	if kindOf(t, err) != apperror.KindValidation {
		t.Errorf("unknown status: error kind = %s, want VALIDATION_ERROR", kindOf(t, err))
	}

	_, err = machine.Apply(context.Background(), Request{
		ContributionId: uuid.New(),
		NewStatus:      entity.PaymentStatusPaid,
	})
	if kindOf(t, err) != apperror.KindNotFound {
		t.Errorf("missing contribution: error kind = %s, want NOT_FOUND", kindOf(t, err))
	}
}

func TestApplyRejectsConcurrentTransition(t *testing.T) {
	ledger := memory.NewLedger()
	contribution := seedContribution(t, ledger, entity.PaymentStatusPending)
	machine := NewMachine(ledger)

	if !machine.locks.tryLock(contribution.Id) {
		t.Fatal("could not take lock for setup")
	}
	defer machine.locks.unlock(contribution.Id)

	_, err := machine.Apply(context.Background(), Request{
		ContributionId: contribution.Id,
		NewStatus:      entity.PaymentStatusPaid,
	})
	if kindOf(t, err) != apperror.KindConcurrentModification {
		t.Errorf("error kind = %s, want CONCURRENT_MODIFICATION", kindOf(t, err))
	}
}

func TestKeyedLockIsPerKey(t *testing.T) {
	var locks keyedLock
	a, b := uuid.New(), uuid.New()

	if !locks.tryLock(a) {
		t.Fatal("first tryLock(a) failed")
	}
	if locks.tryLock(a) {
		t.Error("second tryLock(a) succeeded while held")
	}
	if !locks.tryLock(b) {
		t.Error("tryLock(b) failed while only a is held")
	}
	locks.unlock(a)
	if !locks.tryLock(a) {
		t.Error("tryLock(a) failed after unlock")
	}
}
