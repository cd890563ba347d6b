package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Transaction rows are append-only. No UpdatedAt, no DeletedAt: once written
// a ledger entry is never touched again.
type Transaction struct {
	Id                   uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContributionId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	TransactionType      string         `gorm:"type:varchar(50);not null"`
	Amount               float64        `gorm:"type:decimal(12,2);not null"`
	Status               string         `gorm:"type:varchar(50);not null;default:'pending'"`
	GatewayTransactionId *string        `gorm:"type:varchar(255);index"`
	GatewayResponse      datatypes.JSON `gorm:"type:jsonb"`
	ErrorCode            *string        `gorm:"type:varchar(100)"`
	ErrorMessage         *string        `gorm:"type:text"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
}

func (Transaction) TableName() string {
	return "contribution_transactions"
}
