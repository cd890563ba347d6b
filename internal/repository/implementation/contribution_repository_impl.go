package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/model"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/repository/contract"
	"crowdfund-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type contributionRepositoryImpl struct {
	db *gorm.DB
}

func NewContributionRepository(db *gorm.DB) contract.ContributionRepository {
	return &contributionRepositoryImpl{db: db}
}

func (r *contributionRepositoryImpl) Create(ctx context.Context, contribution *entity.Contribution) error {
	m := &model.Contribution{
		Id:               contribution.Id,
		UserId:           contribution.UserId,
		ProjectId:        contribution.ProjectId,
		Amount:           contribution.Amount,
		PaymentStatus:    string(contribution.PaymentStatus),
		Notes:            contribution.Notes,
		PaymentReference: contribution.PaymentReference,
		FailureReason:    contribution.FailureReason,
		PaidAt:           contribution.PaidAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *contributionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contribution, error) {
	var m model.Contribution
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Persistence(err)
	}

	return r.mapToEntity(&m), nil
}

func (r *contributionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contribution, error) {
	var ms []*model.Contribution
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, apperror.Persistence(err)
	}

	var contributions []*entity.Contribution
	for _, m := range ms {
		contributions = append(contributions, r.mapToEntity(m))
	}
	return contributions, nil
}

func (r *contributionRepositoryImpl) FindOneWithTransactions(ctx context.Context, id uuid.UUID) (*entity.Contribution, error) {
	var m model.Contribution
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Persistence(err)
	}

	contribution := r.mapToEntity(&m)
	for i := range m.Transactions {
		contribution.Transactions = append(contribution.Transactions, mapTransactionToEntity(&m.Transactions[i]))
	}
	return contribution, nil
}

// UpdateLifecycleFields writes the status-carrying columns only. Amount and
// ownership columns are never part of the update map.
func (r *contributionRepositoryImpl) UpdateLifecycleFields(ctx context.Context, contribution *entity.Contribution) error {
	err := r.db.WithContext(ctx).Model(&model.Contribution{}).
		Where("id = ?", contribution.Id).
		Updates(map[string]interface{}{
			"payment_status":    string(contribution.PaymentStatus),
			"payment_reference": contribution.PaymentReference,
			"failure_reason":    contribution.FailureReason,
			"paid_at":           contribution.PaidAt,
			"notes":             contribution.Notes,
		}).Error
	if err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *contributionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Contribution{})

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.Persistence(err)
	}
	return count, nil
}

func (r *contributionRepositoryImpl) Archive(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&model.Contribution{}, id).Error; err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *contributionRepositoryImpl) mapToEntity(m *model.Contribution) *entity.Contribution {
	return &entity.Contribution{
		Id:               m.Id,
		UserId:           m.UserId,
		ProjectId:        m.ProjectId,
		Amount:           m.Amount,
		PaymentStatus:    entity.PaymentStatus(m.PaymentStatus),
		Notes:            m.Notes,
		PaymentReference: m.PaymentReference,
		FailureReason:    m.FailureReason,
		PaidAt:           m.PaidAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func mapTransactionToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		Id:                   m.Id,
		ContributionId:       m.ContributionId,
		Type:                 entity.TransactionType(m.TransactionType),
		Amount:               m.Amount,
		Status:               entity.TransactionStatus(m.Status),
		GatewayTransactionId: m.GatewayTransactionId,
		GatewayResponse:      json.RawMessage(m.GatewayResponse),
		ErrorCode:            m.ErrorCode,
		ErrorMessage:         m.ErrorMessage,
		CreatedAt:            m.CreatedAt,
	}
}
