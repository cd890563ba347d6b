package implementation

import (
	"context"
	"errors"

	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/model"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/repository/contract"
	"crowdfund-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type projectRepositoryImpl struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) contract.ProjectRepository {
	return &projectRepositoryImpl{db: db}
}

func (r *projectRepositoryImpl) Create(ctx context.Context, project *entity.Project) error {
	m := &model.Project{
		Id:           project.Id,
		CreatorId:    project.CreatorId,
		Title:        project.Title,
		Description:  project.Description,
		TargetAmount: project.TargetAmount,
		Status:       string(project.Status),
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *projectRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	var m model.Project
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

func (r *projectRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Project, error) {
	var ms []*model.Project
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, apperror.Persistence(err)
	}

	var projects []*entity.Project
	for _, m := range ms {
		projects = append(projects, r.mapToEntity(m))
	}
	return projects, nil
}

func (r *projectRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return apperror.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("project", id.String())
	}
	return nil
}

func (r *projectRepositoryImpl) mapToEntity(m *model.Project) *entity.Project {
	return &entity.Project{
		Id:           m.Id,
		CreatorId:    m.CreatorId,
		Title:        m.Title,
		Description:  m.Description,
		TargetAmount: m.TargetAmount,
		Status:       entity.ProjectStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
