package memory

import (
	"context"
	"testing"
	"time"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedContribution(t *testing.T, ledger *Ledger, status entity.PaymentStatus) *entity.Contribution {
	t.Helper()
	c := &entity.Contribution{
		Id:            uuid.New(),
		UserId:        uuid.New(),
		ProjectId:     uuid.New(),
		Amount:        250000,
		PaymentStatus: status,
		CreatedAt:     time.Now(),
	}
	uow := ledger.NewUnitOfWork(context.Background())
	require.NoError(t, uow.ContributionRepository().Create(context.Background(), c))
	return c
}

func TestRollbackRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	c := seedContribution(t, ledger, entity.PaymentStatusPending)

	uow := ledger.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))

	c.PaymentStatus = entity.PaymentStatusPaid
	require.NoError(t, uow.ContributionRepository().UpdateLifecycleFields(ctx, c))
	require.NoError(t, uow.TransactionRepository().Create(ctx, &entity.Transaction{
		Id:             uuid.New(),
		ContributionId: c.Id,
		Type:           entity.TransactionTypePayment,
		Amount:         c.Amount,
		Status:         entity.TransactionStatusSuccess,
	}))
	require.NoError(t, uow.Rollback())

	fresh := ledger.NewUnitOfWork(ctx)
	stored, err := fresh.ContributionRepository().FindOne(ctx, specification.ByID{ID: c.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.PaymentStatusPending, stored.PaymentStatus)

	txns, err := fresh.TransactionRepository().FindAll(ctx, specification.ByContribution{ContributionID: c.Id})
	require.NoError(t, err)
	assert.Empty(t, txns, "rolled back transaction must not survive")
}

func TestCommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	c := seedContribution(t, ledger, entity.PaymentStatusPending)

	uow := ledger.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	c.PaymentStatus = entity.PaymentStatusPaid
	require.NoError(t, uow.ContributionRepository().UpdateLifecycleFields(ctx, c))
	require.NoError(t, uow.Commit())

	fresh := ledger.NewUnitOfWork(ctx)
	stored, err := fresh.ContributionRepository().FindOne(ctx, specification.ByID{ID: c.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, stored.PaymentStatus)
}

func TestFindOneWithTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	c := seedContribution(t, ledger, entity.PaymentStatusPaid)

	uow := ledger.NewUnitOfWork(ctx)
	base := time.Now()
	for i, status := range []entity.TransactionStatus{
		entity.TransactionStatusFailed,
		entity.TransactionStatusSuccess,
	} {
		require.NoError(t, uow.TransactionRepository().Create(ctx, &entity.Transaction{
			Id:             uuid.New(),
			ContributionId: c.Id,
			Type:           entity.TransactionTypePayment,
			Amount:         c.Amount,
			Status:         status,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}))
	}

	stored, err := uow.ContributionRepository().FindOneWithTransactions(ctx, c.Id)
	require.NoError(t, err)
	require.Len(t, stored.Transactions, 2)
	assert.Equal(t, entity.TransactionStatusSuccess, stored.Transactions[0].Status, "newest entry first")
}

func TestCountByPaymentStatus(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger()
	seedContribution(t, ledger, entity.PaymentStatusPending)
	seedContribution(t, ledger, entity.PaymentStatusPaid)
	seedContribution(t, ledger, entity.PaymentStatusPaid)

	uow := ledger.NewUnitOfWork(ctx)
	paid, err := uow.ContributionRepository().Count(ctx, specification.ByPaymentStatus{Status: string(entity.PaymentStatusPaid)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), paid)
}
