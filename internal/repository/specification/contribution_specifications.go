package specification

import (
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByContribution struct {
	ContributionID uuid.UUID
}

func (s ByContribution) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("contribution_id = ?", s.ContributionID)
}

type ByPaymentStatus struct {
	Status string
}

func (s ByPaymentStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payment_status = ?", s.Status)
}

type ByProject struct {
	ProjectID uuid.UUID
}

func (s ByProject) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ?", s.ProjectID)
}

type ByGatewayTransaction struct {
	GatewayTransactionID string
}

func (s ByGatewayTransaction) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("gateway_transaction_id = ?", s.GatewayTransactionID)
}

type CreatedBetween struct {
	From time.Time
	To   time.Time
}

func (s CreatedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at BETWEEN ? AND ?", s.From, s.To)
}
