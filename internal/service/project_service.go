// FILE: internal/service/project_service.go
package service

import (
	"context"
	"strings"
	"time"

	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/pkg/logger"
	"crowdfund-be/internal/repository/specification"
	"crowdfund-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IProjectService interface {
	Create(ctx context.Context, creatorId uuid.UUID, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error)
	List(ctx context.Context) ([]*dto.ProjectResponse, error)
}

type projectService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewProjectService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IProjectService {
	return &projectService{uowFactory: uowFactory, logger: log}
}

func (s *projectService) Create(ctx context.Context, creatorId uuid.UUID, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("title", "title is required")
	}

	project := &entity.Project{
		Id:           uuid.New(),
		CreatorId:    creatorId,
		Title:        title,
		Description:  strings.TrimSpace(req.Description),
		TargetAmount: req.TargetAmount,
		Status:       entity.ProjectStatusActive,
		CreatedAt:    time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProjectRepository().Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project_service", "project created", map[string]interface{}{
		"project_id": project.Id.String(),
		"creator_id": creatorId.String(),
	})
	return s.toResponse(ctx, uow, project)
}

func (s *projectService) Get(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NotFound("project", id.String())
	}
	return s.toResponse(ctx, uow, project)
}

func (s *projectService) List(ctx context.Context) ([]*dto.ProjectResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	projects, err := uow.ProjectRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		r, err := s.toResponse(ctx, uow, p)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

// toResponse sums paid contributions so the raised amount always reflects
// the ledger rather than a denormalized counter.
func (s *projectService) toResponse(ctx context.Context, uow unitofwork.UnitOfWork, p *entity.Project) (*dto.ProjectResponse, error) {
	paid, err := uow.ContributionRepository().FindAll(ctx,
		specification.ByProject{ProjectID: p.Id},
		specification.ByPaymentStatus{Status: string(entity.PaymentStatusPaid)},
	)
	if err != nil {
		return nil, err
	}

	var raised float64
	for _, c := range paid {
		raised += c.Amount
	}

	return &dto.ProjectResponse{
		Id:           p.Id,
		CreatorId:    p.CreatorId,
		Title:        p.Title,
		Description:  p.Description,
		TargetAmount: p.TargetAmount,
		RaisedAmount: raised,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
	}, nil
}
