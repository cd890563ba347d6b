package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Contribution struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index"`
	ProjectId        uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount           float64   `gorm:"type:decimal(12,2);not null"`
	PaymentStatus    string    `gorm:"type:varchar(50);not null;default:'pending';index"`
	Notes            *string   `gorm:"type:text"`
	PaymentReference *string   `gorm:"type:varchar(255)"`
	FailureReason    *string   `gorm:"type:text"`
	PaidAt           *time.Time
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`

	// Relations
	Transactions []Transaction `gorm:"foreignKey:ContributionId"`
	User         User          `gorm:"foreignKey:UserId"`
	Project      Project       `gorm:"foreignKey:ProjectId"`
}

func (Contribution) TableName() string {
	return "contributions"
}
