// FILE: internal/entity/project_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "draft"
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusFunded   ProjectStatus = "funded"
	ProjectStatusArchived ProjectStatus = "archived"
)

type Project struct {
	Id           uuid.UUID
	CreatorId    uuid.UUID
	Title        string
	Description  string
	TargetAmount float64
	Status       ProjectStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
