package service

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"testing"
	"time"

	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/pkg/logger"
	"crowdfund-be/internal/repository/memory"
	"crowdfund-be/pkg/payment/gateway"
	"crowdfund-be/pkg/payment/lifecycle"
	"crowdfund-be/pkg/retry"

	"github.com/google/uuid"
)

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }
func (noopLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (noopLogger) GetLogById(string) (*logger.LogEntry, error) { return nil, nil }

const testServerKey = "SB-Mid-server-testkey"

type serviceFixture struct {
	ledger  *memory.Ledger
	gateway *gateway.MemoryClient
	service IContributionService
	user    *entity.User
	project *entity.Project
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	ledger := memory.NewLedger()
	gw := gateway.NewMemoryClient()
	machine := lifecycle.NewMachine(ledger)

	svc := NewContributionService(ledger, machine, gw, nil, nil, noopLogger{}, ContributionServiceConfig{
		GatewayServerKey: testServerKey,
		RetryPolicy:      retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	})

	ctx := context.Background()
	uow := ledger.NewUnitOfWork(ctx)

	user := &entity.User{
		Id:       uuid.New(),
		Email:    "backer@example.com",
		FullName: "Backer One",
		Role:     entity.UserRoleUser,
		Status:   entity.UserStatusActive,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	project := &entity.Project{
		Id:           uuid.New(),
		CreatorId:    uuid.New(),
		Title:        "Community Well",
		TargetAmount: 10000000,
		Status:       entity.ProjectStatusActive,
	}
	if err := uow.ProjectRepository().Create(ctx, project); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	return &serviceFixture{ledger: ledger, gateway: gw, service: svc, user: user, project: project}
}

func (f *serviceFixture) createContribution(t *testing.T, amount float64) uuid.UUID {
	t.Helper()
	res, err := f.service.Create(context.Background(), f.user.Id, &dto.CreateContributionRequest{
		ProjectId: f.project.Id,
		Amount:    amount,
	})
	if err != nil {
		t.Fatalf("create contribution: %v", err)
	}
	return res.Id
}

func (f *serviceFixture) webhook(contributionId uuid.UUID, txnId, status, statusCode string) *dto.MidtransWebhookRequest {
	orderId := contributionId.String()
	grossAmount := "250000.00"
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + testServerKey))
	return &dto.MidtransWebhookRequest{
		TransactionId:     txnId,
		OrderId:           orderId,
		TransactionStatus: status,
		StatusCode:        statusCode,
		GrossAmount:       grossAmount,
		SignatureKey:      fmt.Sprintf("%x", sum),
	}
}

func TestCreateContribution(t *testing.T) {
	f := newServiceFixture(t)

	res, err := f.service.Create(context.Background(), f.user.Id, &dto.CreateContributionRequest{
		ProjectId: f.project.Id,
		Amount:    250000,
		Notes:     "  for the well  ",
	})
	if err != nil {
		t.Fatalf("Create returned %v", err)
	}
	if res.PaymentStatus != "pending" {
		t.Errorf("status = %s, want pending", res.PaymentStatus)
	}
	if res.Notes == nil || *res.Notes != "for the well" {
		t.Errorf("notes = %v, want trimmed", res.Notes)
	}
}

func TestCreateContributionValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		userId    uuid.UUID
		projectId uuid.UUID
		amount    float64
		wantKind  apperror.Kind
		wantField string
	}{
		{"zero amount", f.user.Id, f.project.Id, 0, apperror.KindValidation, "amount"},
		{"negative amount", f.user.Id, f.project.Id, -10, apperror.KindValidation, "amount"},
		{"sub-cent amount", f.user.Id, f.project.Id, 10.001, apperror.KindValidation, "amount"},
		{"unknown user", uuid.New(), f.project.Id, 100, apperror.KindNotFound, ""},
		{"unknown project", f.user.Id, uuid.New(), 100, apperror.KindNotFound, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, tc.userId, &dto.CreateContributionRequest{
				ProjectId: tc.projectId,
				Amount:    tc.amount,
			})
			if apperror.KindOf(err) != tc.wantKind {
				t.Errorf("error kind = %s, want %s", apperror.KindOf(err), tc.wantKind)
			}
			if tc.wantField != "" {
				var appErr *apperror.Error
				if errors.As(err, &appErr) && appErr.Field != tc.wantField {
					t.Errorf("error field = %s, want %s", appErr.Field, tc.wantField)
				}
			}
		})
	}
}

func TestInitiatePaymentRecordsPendingTransaction(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	res, err := f.service.InitiatePayment(context.Background(), id, &dto.InitiatePaymentRequest{
		PhoneNumber:      "+628123456789",
		AccountReference: "ACC-42",
	})
	if err != nil {
		t.Fatalf("InitiatePayment returned %v", err)
	}
	if res.GatewayTransactionId == "" {
		t.Error("response missing gateway transaction id")
	}
	if res.PaymentStatus != "pending" {
		t.Errorf("status = %s, want pending until settlement", res.PaymentStatus)
	}

	full, err := f.service.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get returned %v", err)
	}
	if len(full.Transactions) != 1 {
		t.Fatalf("ledger has %d transactions, want 1", len(full.Transactions))
	}
	if full.Transactions[0].Status != "pending" || full.Transactions[0].Type != "payment" {
		t.Errorf("transaction = %s/%s, want payment/pending", full.Transactions[0].Type, full.Transactions[0].Status)
	}
	if len(f.gateway.Payments) != 1 || f.gateway.Payments[0].PhoneNumber != "+628123456789" {
		t.Errorf("gateway saw %+v, want one payment with the payer's phone number", f.gateway.Payments)
	}
}

func TestInitiatePaymentExhaustedRetriesMarksFailed(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	transient := apperror.Gateway("connection reset", true, nil)
	f.gateway.FailPaymentWith(id.String(), transient, transient, transient)

	_, err := f.service.InitiatePayment(context.Background(), id, &dto.InitiatePaymentRequest{
		PhoneNumber:      "+628123456789",
		AccountReference: "ACC-42",
	})
	if apperror.KindOf(err) != apperror.KindGateway {
		t.Fatalf("error kind = %s, want GATEWAY_ERROR", apperror.KindOf(err))
	}
	if len(f.gateway.Payments) != 3 {
		t.Errorf("gateway called %d times, want 3 attempts", len(f.gateway.Payments))
	}

	full, err := f.service.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get returned %v", err)
	}
	if full.PaymentStatus != "failed" {
		t.Errorf("status = %s, want failed after exhausting retries", full.PaymentStatus)
	}
	if full.FailureReason == nil {
		t.Error("failure reason not recorded")
	}
	if len(full.Transactions) != 1 || full.Transactions[0].Status != "failed" {
		t.Errorf("transactions = %+v, want one failed entry", full.Transactions)
	}
}

func TestInitiatePaymentTerminalErrorDoesNotRetry(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	f.gateway.FailPaymentWith(id.String(), apperror.Gateway("card declined", false, nil))

	_, err := f.service.InitiatePayment(context.Background(), id, &dto.InitiatePaymentRequest{
		PhoneNumber:      "+628123456789",
		AccountReference: "ACC-42",
	})
	if err == nil {
		t.Fatal("InitiatePayment succeeded, want terminal gateway error")
	}
	if len(f.gateway.Payments) != 1 {
		t.Errorf("gateway called %d times, want 1 for a terminal error", len(f.gateway.Payments))
	}
}

func TestHandleGatewayNotificationSettlement(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	req := f.webhook(id, "GW123", "settlement", "200")
	if err := f.service.HandleGatewayNotification(context.Background(), req); err != nil {
		t.Fatalf("HandleGatewayNotification returned %v", err)
	}

	full, err := f.service.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get returned %v", err)
	}
	if full.PaymentStatus != "paid" {
		t.Errorf("status = %s, want paid", full.PaymentStatus)
	}
	if full.PaidAt == nil {
		t.Error("PaidAt not set on settlement")
	}
	if full.PaymentReference == nil || *full.PaymentReference != "GW123" {
		t.Errorf("payment reference = %v, want GW123", full.PaymentReference)
	}
	if len(full.Transactions) != 1 || full.Transactions[0].Status != "success" {
		t.Fatalf("transactions = %+v, want one success entry", full.Transactions)
	}

	// Redelivery is acknowledged without another transition.
	if err := f.service.HandleGatewayNotification(context.Background(), req); err != nil {
		t.Fatalf("redelivered notification returned %v", err)
	}
	trail, err := f.service.GetAuditTrail(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAuditTrail returned %v", err)
	}
	if len(trail) != 1 {
		t.Errorf("audit trail has %d entries after redelivery, want 1", len(trail))
	}
}

func TestHandleGatewayNotificationRejectsBadSignature(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	req := f.webhook(id, "GW123", "settlement", "200")
	req.SignatureKey = "forged"

	err := f.service.HandleGatewayNotification(context.Background(), req)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("error kind = %s, want VALIDATION_ERROR", apperror.KindOf(err))
	}

	full, _ := f.service.Get(context.Background(), id)
	if full.PaymentStatus != "pending" {
		t.Errorf("status = %s, want pending untouched", full.PaymentStatus)
	}
}

func TestHandleGatewayNotificationDenial(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	req := f.webhook(id, "GW124", "deny", "202")
	req.StatusMessage = "insufficient balance"
	if err := f.service.HandleGatewayNotification(context.Background(), req); err != nil {
		t.Fatalf("HandleGatewayNotification returned %v", err)
	}

	full, _ := f.service.Get(context.Background(), id)
	if full.PaymentStatus != "failed" {
		t.Errorf("status = %s, want failed", full.PaymentStatus)
	}
	if full.FailureReason == nil || *full.FailureReason != "insufficient balance" {
		t.Errorf("failure reason = %v, want insufficient balance", full.FailureReason)
	}
}

func TestProcessRefund(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	if err := f.service.HandleGatewayNotification(context.Background(), f.webhook(id, "GW123", "settlement", "200")); err != nil {
		t.Fatalf("settle contribution: %v", err)
	}

	admin := uuid.New()
	res, err := f.service.ProcessRefund(context.Background(), id, &admin, &dto.RefundRequest{Reason: "duplicate charge"})
	if err != nil {
		t.Fatalf("ProcessRefund returned %v", err)
	}
	if res.PaymentStatus != "refunded" {
		t.Errorf("status = %s, want refunded", res.PaymentStatus)
	}

	if len(f.gateway.Refunds) != 1 {
		t.Fatalf("gateway saw %d refunds, want 1", len(f.gateway.Refunds))
	}
	if f.gateway.Refunds[0].GatewayTransactionId != "GW123" {
		t.Errorf("refund targeted txn %s, want GW123", f.gateway.Refunds[0].GatewayTransactionId)
	}
	if f.gateway.Refunds[0].Reason != "duplicate charge" {
		t.Errorf("refund reason = %s, want duplicate charge", f.gateway.Refunds[0].Reason)
	}

	full, _ := f.service.Get(context.Background(), id)
	if len(full.Transactions) != 2 {
		t.Fatalf("ledger has %d transactions, want payment + refund", len(full.Transactions))
	}

	trail, _ := f.service.GetAuditTrail(context.Background(), id)
	if len(trail) != 2 {
		t.Fatalf("audit trail has %d entries, want 2", len(trail))
	}
	last := trail[len(trail)-1]
	if last.NewStatus != "refunded" || last.Reason == nil || *last.Reason != "duplicate charge" {
		t.Errorf("last audit = %+v, want refunded with reason", last)
	}
	if last.AdminUserId == nil || *last.AdminUserId != admin {
		t.Errorf("audit admin = %v, want %s", last.AdminUserId, admin)
	}
}

func TestProcessRefundGuards(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	// Pending contribution cannot be refunded.
	_, err := f.service.ProcessRefund(context.Background(), id, nil, &dto.RefundRequest{Reason: "mistake"})
	if apperror.KindOf(err) != apperror.KindInvalidTransition {
		t.Errorf("error kind = %s, want INVALID_TRANSITION", apperror.KindOf(err))
	}

	// Blank reason is rejected before touching the gateway.
	_, err = f.service.ProcessRefund(context.Background(), id, nil, &dto.RefundRequest{Reason: "   "})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("error kind = %s, want VALIDATION_ERROR", apperror.KindOf(err))
	}
	if len(f.gateway.Refunds) != 0 {
		t.Errorf("gateway saw %d refunds, want none", len(f.gateway.Refunds))
	}
}

func TestRequestRetryAfterFailure(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	if err := f.service.HandleGatewayNotification(context.Background(), f.webhook(id, "GW125", "expire", "407")); err != nil {
		t.Fatalf("expire contribution: %v", err)
	}

	res, err := f.service.RequestRetry(context.Background(), id, nil, &dto.RetryRequest{})
	if err != nil {
		t.Fatalf("RequestRetry returned %v", err)
	}
	if res.PaymentStatus != "pending" {
		t.Errorf("status = %s, want pending", res.PaymentStatus)
	}
	if res.FailureReason != nil {
		t.Errorf("failure reason = %v, want cleared", res.FailureReason)
	}

	trail, _ := f.service.GetAuditTrail(context.Background(), id)
	if len(trail) != 2 {
		t.Fatalf("audit trail has %d entries, want 2", len(trail))
	}
	last := trail[len(trail)-1]
	if last.Reason == nil || *last.Reason != "payment retry requested" {
		t.Errorf("retry audit reason = %v, want default", last.Reason)
	}
}

func TestBulkUpdateStatusPartialFailure(t *testing.T) {
	f := newServiceFixture(t)
	okId := f.createContribution(t, 100000)
	badId := f.createContribution(t, 200000)

	// The second contribution is already paid, so pending -> paid is
	// illegal for it.
	if err := f.service.HandleGatewayNotification(context.Background(), f.webhook(badId, "GW200", "settlement", "200")); err != nil {
		t.Fatalf("settle second contribution: %v", err)
	}

	admin := uuid.New()
	res, err := f.service.BulkUpdateStatus(context.Background(), &admin, &dto.BulkUpdateStatusRequest{
		ContributionIds: []uuid.UUID{okId, badId},
		Status:          "paid",
		Reason:          "manual reconciliation",
	})
	if err != nil {
		t.Fatalf("BulkUpdateStatus returned %v", err)
	}
	if res.SuccessCount != 1 || res.FailureCount != 1 {
		t.Errorf("result = %d/%d, want 1 success and 1 failure", res.SuccessCount, res.FailureCount)
	}
	if len(res.Errors) != 1 || res.Errors[0].ItemId != badId.String() {
		t.Errorf("errors = %+v, want one entry for %s", res.Errors, badId)
	}

	full, _ := f.service.Get(context.Background(), okId)
	if full.PaymentStatus != "paid" {
		t.Errorf("first contribution status = %s, want paid", full.PaymentStatus)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	f := newServiceFixture(t)
	first := f.createContribution(t, 100000)
	f.createContribution(t, 200000)

	if err := f.service.HandleGatewayNotification(context.Background(), f.webhook(first, "GW300", "settlement", "200")); err != nil {
		t.Fatalf("settle first contribution: %v", err)
	}

	res, err := f.service.List(context.Background(), &dto.ContributionListRequest{Status: "paid"})
	if err != nil {
		t.Fatalf("List returned %v", err)
	}
	if res.Total != 1 || len(res.Items) != 1 {
		t.Fatalf("list = total %d items %d, want 1/1", res.Total, len(res.Items))
	}
	if res.Items[0].Id != first {
		t.Errorf("listed %s, want %s", res.Items[0].Id, first)
	}

	_, err = f.service.List(context.Background(), &dto.ContributionListRequest{Status: "archived"})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("unknown status filter: error kind = %s, want VALIDATION_ERROR", apperror.KindOf(err))
	}
}

func TestGetMissingContribution(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.service.Get(context.Background(), uuid.New())
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("error kind = %s, want NOT_FOUND", apperror.KindOf(err))
	}

	_, err = f.service.GetAuditTrail(context.Background(), uuid.New())
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("audit trail error kind = %s, want NOT_FOUND", apperror.KindOf(err))
	}
}

func TestUpdateStatusRefundedDelegatesToRefundFlow(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)
	if err := f.service.HandleGatewayNotification(context.Background(), f.webhook(id, "GW400", "settlement", "200")); err != nil {
		t.Fatalf("settle contribution: %v", err)
	}

	admin := uuid.New()
	res, err := f.service.UpdateStatus(context.Background(), id, &admin, &dto.UpdateStatusRequest{
		Status: "refunded",
		Reason: "backer cancelled",
	})
	if err != nil {
		t.Fatalf("UpdateStatus returned %v", err)
	}
	if res.PaymentStatus != "refunded" {
		t.Errorf("status = %s, want refunded", res.PaymentStatus)
	}
	if len(f.gateway.Refunds) != 1 {
		t.Errorf("gateway saw %d refunds, want the refund flow to run", len(f.gateway.Refunds))
	}
}

func TestUpdateStatusManualSettlementWritesLedgerRow(t *testing.T) {
	f := newServiceFixture(t)
	id := f.createContribution(t, 250000)

	admin := uuid.New()
	res, err := f.service.UpdateStatus(context.Background(), id, &admin, &dto.UpdateStatusRequest{
		Status: "paid",
		Reason: "bank transfer reconciled by hand",
	})
	if err != nil {
		t.Fatalf("UpdateStatus returned %v", err)
	}
	if res.PaymentStatus != "paid" {
		t.Errorf("status = %s, want paid", res.PaymentStatus)
	}

	full, err := f.service.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get returned %v", err)
	}
	if len(full.Transactions) != 1 {
		t.Fatalf("ledger has %d transactions, want the manual settlement row", len(full.Transactions))
	}
	txn := full.Transactions[0]
	if txn.Type != "payment" || txn.Status != "success" {
		t.Errorf("transaction = %s/%s, want payment/success", txn.Type, txn.Status)
	}
	if txn.Amount != 250000 {
		t.Errorf("transaction amount = %v, want the contribution amount", txn.Amount)
	}
	if txn.GatewayTransactionId != nil {
		t.Errorf("gateway transaction id = %v, want none for a manual settlement", *txn.GatewayTransactionId)
	}
}

func TestArchiveContribution(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.createContribution(t, 250000)

	if err := f.service.Archive(ctx, id, nil); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := f.service.Get(ctx, id); apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("get after archive kind = %v, want not found", apperror.KindOf(err))
	}
}

func TestArchiveContributionWithLedgerEntriesRejected(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	id := f.createContribution(t, 250000)

	if _, err := f.service.InitiatePayment(ctx, id, &dto.InitiatePaymentRequest{
		PhoneNumber:      "+6281234567890",
		AccountReference: "backer-1",
	}); err != nil {
		t.Fatalf("initiate payment: %v", err)
	}

	err := f.service.Archive(ctx, id, nil)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Fatalf("archive kind = %v, want validation", apperror.KindOf(err))
	}
	if res, err := f.service.Get(ctx, id); err != nil || res == nil {
		t.Errorf("contribution should survive rejected archive, got %v", err)
	}
}

func TestListDateRangeFilter(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.createContribution(t, 250000)

	res, err := f.service.List(ctx, &dto.ContributionListRequest{DateFrom: "2000-01-01", DateTo: "2000-01-02"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("total in past window = %d, want 0", res.Total)
	}

	today := time.Now().Format("2006-01-02")
	res, err = f.service.List(ctx, &dto.ContributionListRequest{DateFrom: today, DateTo: today})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 1 {
		t.Errorf("total in today's window = %d, want 1", res.Total)
	}

	if _, err := f.service.List(ctx, &dto.ContributionListRequest{DateFrom: "not-a-date"}); apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("bad date kind = %v, want validation", apperror.KindOf(err))
	}
}
