package model

import (
	"time"

	"github.com/google/uuid"
)

type ContributionAuditLog struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ContributionId uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_contribution_created,priority:1"`
	AdminUserId    *uuid.UUID `gorm:"type:uuid"`
	PreviousStatus string     `gorm:"type:varchar(50);not null"`
	NewStatus      string     `gorm:"type:varchar(50);not null"`
	Reason         *string    `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index:idx_audit_contribution_created,priority:2"`
}

func (ContributionAuditLog) TableName() string {
	return "contribution_audit_logs"
}
