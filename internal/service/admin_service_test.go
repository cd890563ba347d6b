package service

import (
	"context"
	"testing"

	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/pkg/logger"
	"crowdfund-be/internal/repository/memory"
	adminUser "crowdfund-be/pkg/admin/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type noopAdminPublisher struct{}

func (noopAdminPublisher) PublishUserRegistered(context.Context, uuid.UUID, string, string, string) {}
func (noopAdminPublisher) PublishUserStatusChanged(context.Context, uuid.UUID, string, string, string) {
}
func (noopAdminPublisher) PublishUserDeleted(context.Context, uuid.UUID, string) {}

// recordingLogger captures the GetLogs arguments the service passes
// through and serves canned entries back.
type recordingLogger struct {
	noopLogger
	level   string
	limit   int
	offset  int
	entries []logger.LogEntry
}

func (r *recordingLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	r.level, r.limit, r.offset = level, limit, offset
	return r.entries, nil
}

func newAdminFixture(t *testing.T) (*memory.Ledger, IAdminService) {
	t.Helper()
	ledger := memory.NewLedger()
	manager := adminUser.NewManager(noopLogger{}, noopAdminPublisher{})
	return ledger, NewAdminService(ledger, manager, noopLogger{})
}

func seedUser(t *testing.T, ledger *memory.Ledger, email string) *entity.User {
	t.Helper()
	u := &entity.User{
		Id:       uuid.New(),
		Email:    email,
		FullName: "Seeded User",
		Role:     entity.UserRoleUser,
		Status:   entity.UserStatusActive,
	}
	uow := ledger.NewUnitOfWork(context.Background())
	if err := uow.UserRepository().Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestAdminCreateUserHashesPassword(t *testing.T) {
	ledger, svc := newAdminFixture(t)

	res, err := svc.CreateUser(context.Background(), dto.AdminCreateUserRequest{
		Email:    "admin@example.com",
		Password: "s3cret-pass",
		FullName: "Platform Admin",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("CreateUser returned %v", err)
	}
	if res.Status != "active" {
		t.Errorf("status = %s, want active for admin-created users", res.Status)
	}

	uow := ledger.NewUnitOfWork(context.Background())
	stored, _ := uow.UserRepository().FindOne(context.Background())
	if stored == nil || stored.PasswordHash == nil {
		t.Fatal("stored user missing password hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("password hash does not verify: %v", err)
	}

	// Duplicate email rejected.
	_, err = svc.CreateUser(context.Background(), dto.AdminCreateUserRequest{
		Email:    "admin@example.com",
		Password: "another-pass",
		FullName: "Imposter",
		Role:     "user",
	})
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("duplicate email: error kind = %s, want VALIDATION_ERROR", apperror.KindOf(err))
	}
}

func TestAdminBulkBanPartialFailure(t *testing.T) {
	ledger, svc := newAdminFixture(t)
	existing := seedUser(t, ledger, "backer@example.com")
	missing := uuid.New()

	res, err := svc.BulkBanUsers(context.Background(), dto.AdminBulkUserRequest{
		UserIds: []uuid.UUID{existing.Id, missing},
	})
	if err != nil {
		t.Fatalf("BulkBanUsers returned %v", err)
	}
	if res.SuccessCount != 1 || res.FailureCount != 1 {
		t.Errorf("result = %d/%d, want 1 success and 1 failure", res.SuccessCount, res.FailureCount)
	}
	if len(res.Errors) != 1 || res.Errors[0].ItemId != missing.String() {
		t.Errorf("errors = %+v, want one entry for the missing user", res.Errors)
	}

	uow := ledger.NewUnitOfWork(context.Background())
	stored, _ := uow.UserRepository().FindOne(context.Background())
	if stored.Status != entity.UserStatusBanned {
		t.Errorf("user status = %s, want banned", stored.Status)
	}
}

func TestAdminBulkDeleteUsers(t *testing.T) {
	ledger, svc := newAdminFixture(t)
	first := seedUser(t, ledger, "one@example.com")
	second := seedUser(t, ledger, "two@example.com")

	res, err := svc.BulkDeleteUsers(context.Background(), dto.AdminBulkUserRequest{
		UserIds: []uuid.UUID{first.Id, second.Id},
	})
	if err != nil {
		t.Fatalf("BulkDeleteUsers returned %v", err)
	}
	if res.SuccessCount != 2 || res.FailureCount != 0 {
		t.Errorf("result = %d/%d, want 2/0", res.SuccessCount, res.FailureCount)
	}

	uow := ledger.NewUnitOfWork(context.Background())
	remaining, _ := uow.UserRepository().Count(context.Background())
	if remaining != 0 {
		t.Errorf("%d users remain, want 0", remaining)
	}
}

func TestAdminSystemLogs(t *testing.T) {
	rec := &recordingLogger{entries: []logger.LogEntry{
		{Id: "a1", Level: "ERROR", Message: "charge rejected"},
	}}
	svc := NewAdminService(memory.NewLedger(), adminUser.NewManager(noopLogger{}, noopAdminPublisher{}), rec)
	ctx := context.Background()

	logs, err := svc.GetSystemLogs(ctx, &dto.AdminLogListRequest{Level: "error", Page: 3, Limit: 20})
	if err != nil {
		t.Fatalf("GetSystemLogs returned %v", err)
	}
	if len(logs) != 1 || logs[0].Id != "a1" {
		t.Errorf("logs = %+v, want the canned entry", logs)
	}
	if rec.level != "ERROR" {
		t.Errorf("level = %q, want normalized ERROR", rec.level)
	}
	if rec.limit != 20 || rec.offset != 40 {
		t.Errorf("window = limit %d offset %d, want 20/40 for page 3", rec.limit, rec.offset)
	}

	if _, err := svc.GetSystemLogs(ctx, &dto.AdminLogListRequest{}); err != nil {
		t.Fatalf("GetSystemLogs defaults returned %v", err)
	}
	if rec.limit != 50 || rec.offset != 0 {
		t.Errorf("defaults = limit %d offset %d, want 50/0", rec.limit, rec.offset)
	}

	if _, err := svc.GetSystemLogById(ctx, "missing"); apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("missing entry kind = %s, want NOT_FOUND", apperror.KindOf(err))
	}
}

func TestAdminDashboardStats(t *testing.T) {
	ledger, svc := newAdminFixture(t)
	seedUser(t, ledger, "backer@example.com")

	ctx := context.Background()
	uow := ledger.NewUnitOfWork(ctx)
	for _, status := range []entity.PaymentStatus{
		entity.PaymentStatusPending,
		entity.PaymentStatusPaid,
		entity.PaymentStatusPaid,
	} {
		c := &entity.Contribution{
			Id:            uuid.New(),
			UserId:        uuid.New(),
			ProjectId:     uuid.New(),
			Amount:        1000,
			PaymentStatus: status,
		}
		if err := uow.ContributionRepository().Create(ctx, c); err != nil {
			t.Fatalf("seed contribution: %v", err)
		}
	}

	stats, err := svc.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("GetDashboardStats returned %v", err)
	}
	if stats.TotalContributions != 3 || stats.PaidContributions != 2 || stats.PendingContributions != 1 {
		t.Errorf("stats = %+v, want 3 total, 2 paid, 1 pending", stats)
	}
	if stats.TotalUsers != 1 || stats.ActiveUsers != 1 {
		t.Errorf("users = %d total / %d active, want 1/1", stats.TotalUsers, stats.ActiveUsers)
	}
}
