package implementation

import (
	"context"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/model"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/repository/contract"
	"crowdfund-be/internal/repository/scope"
	"crowdfund-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type transactionRepositoryImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) contract.TransactionRepository {
	return &transactionRepositoryImpl{db: db}
}

func (r *transactionRepositoryImpl) Create(ctx context.Context, transaction *entity.Transaction) error {
	m := &model.Transaction{
		Id:                   transaction.Id,
		ContributionId:       transaction.ContributionId,
		TransactionType:      string(transaction.Type),
		Amount:               transaction.Amount,
		Status:               string(transaction.Status),
		GatewayTransactionId: transaction.GatewayTransactionId,
		GatewayResponse:      datatypes.JSON(transaction.GatewayResponse),
		ErrorCode:            transaction.ErrorCode,
		ErrorMessage:         transaction.ErrorMessage,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *transactionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Transaction, error) {
	var ms []*model.Transaction
	// Ledger entries read newest first.
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, apperror.Persistence(err)
	}

	var transactions []*entity.Transaction
	for _, m := range ms {
		transactions = append(transactions, mapTransactionToEntity(m))
	}
	return transactions, nil
}

func (r *transactionRepositoryImpl) CountByContribution(ctx context.Context, contributionId uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("contribution_id = ?", contributionId).
		Count(&count).Error
	if err != nil {
		return 0, apperror.Persistence(err)
	}
	return count, nil
}
