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
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type userRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := &model.User{
		Id:           user.Id,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FullName:     user.FullName,
		Phone:        user.Phone,
		Role:         string(user.Role),
		Status:       string(user.Status),
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		// Concurrent registration can slip past the pre-insert lookup;
		// the unique index on email is the source of truth.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.Validation("email", "email already exists")
		}
		return apperror.Persistence(err)
	}
	return nil
}

func (r *userRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.Id).
		Updates(map[string]interface{}{
			"email":     user.Email,
			"full_name": user.FullName,
			"phone":     user.Phone,
			"role":      string(user.Role),
			"status":    string(user.Status),
		}).Error
	if err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *userRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&model.User{}, id).Error; err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *userRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var m model.User
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

func (r *userRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var ms []*model.User
	query := r.db.WithContext(ctx)

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, apperror.Persistence(err)
	}

	var users []*entity.User
	for _, m := range ms {
		users = append(users, r.mapToEntity(m))
	}
	return users, nil
}

func (r *userRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.User{})

	for _, spec := range specs {
		query = spec.Apply(query)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, apperror.Persistence(err)
	}
	return count, nil
}

func (r *userRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

func (r *userRepositoryImpl) mapToEntity(m *model.User) *entity.User {
	return &entity.User{
		Id:           m.Id,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FullName:     m.FullName,
		Phone:        m.Phone,
		Role:         entity.UserRole(m.Role),
		Status:       entity.UserStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
