package implementation

import (
	"context"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/model"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/repository/contract"
	"crowdfund-be/internal/repository/scope"
	"crowdfund-be/internal/repository/specification"

	"gorm.io/gorm"
)

type auditLogRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) contract.AuditLogRepository {
	return &auditLogRepositoryImpl{db: db}
}

func (r *auditLogRepositoryImpl) Append(ctx context.Context, entry *entity.ContributionAuditLog) error {
	m := &model.ContributionAuditLog{
		Id:             entry.Id,
		ContributionId: entry.ContributionId,
		AdminUserId:    entry.AdminUserId,
		PreviousStatus: string(entry.PreviousStatus),
		NewStatus:      string(entry.NewStatus),
		Reason:         entry.Reason,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *auditLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ContributionAuditLog, error) {
	var ms []*model.ContributionAuditLog
	// Audit trails read oldest first.
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedAsc)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, apperror.Persistence(err)
	}

	var entries []*entity.ContributionAuditLog
	for _, m := range ms {
		entries = append(entries, &entity.ContributionAuditLog{
			Id:             m.Id,
			ContributionId: m.ContributionId,
			AdminUserId:    m.AdminUserId,
			PreviousStatus: entity.PaymentStatus(m.PreviousStatus),
			NewStatus:      entity.PaymentStatus(m.NewStatus),
			Reason:         m.Reason,
			CreatedAt:      m.CreatedAt,
		})
	}
	return entries, nil
}
