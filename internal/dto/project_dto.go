package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Description  string  `json:"description,omitempty"`
	TargetAmount float64 `json:"target_amount" validate:"required,gt=0"`
}

// PublishFundingRecalcMessage is the internal queue payload asking the
// reconciliation worker to recompute a project's raised total.
type PublishFundingRecalcMessage struct {
	ProjectId uuid.UUID `json:"project_id"`
}

type ProjectResponse struct {
	Id           uuid.UUID `json:"id"`
	CreatorId    uuid.UUID `json:"creator_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	TargetAmount float64   `json:"target_amount"`
	RaisedAmount float64   `json:"raised_amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
