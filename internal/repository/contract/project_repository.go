package contract

import (
	"context"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
