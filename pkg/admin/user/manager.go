package user

import (
	"context"
	"time"

	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/pkg/logger"
	"crowdfund-be/internal/repository/specification"
	"crowdfund-be/internal/repository/unitofwork"
	adminEvents "crowdfund-be/pkg/admin/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Manager handles user-related admin operations
type Manager struct {
	logger    logger.ILogger
	publisher adminEvents.Publisher
}

// NewManager creates a new user manager
func NewManager(logger logger.ILogger, publisher adminEvents.Publisher) *Manager {
	return &Manager{
		logger:    logger,
		publisher: publisher,
	}
}

// Create creates a new user with password hashing and emits event
func (m *Manager) Create(ctx context.Context, uow unitofwork.UnitOfWork, req dto.AdminCreateUserRequest) (*entity.User, error) {
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: req.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Validation("email", "email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	now := time.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: &hashStr,
		Role:         entity.UserRole(req.Role),
		Status:       entity.UserStatusActive, // Auto activate if admin creates
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	m.publisher.PublishUserRegistered(ctx, user.Id, user.Email, user.FullName, "admin_panel")
	return user, nil
}

// GetAll retrieves paginated users with optional role and status filters.
// includeDeleted lifts the soft-delete filter so removed accounts show up
// in admin audits.
func (m *Manager) GetAll(ctx context.Context, uow unitofwork.UnitOfWork, page, limit int, role, status string, includeDeleted bool) ([]*entity.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var filters []specification.Specification
	if role != "" {
		filters = append(filters, specification.ByRole{Role: role})
	}
	if status != "" {
		filters = append(filters, specification.Filter("status", status))
	}
	if includeDeleted {
		filters = append(filters, specification.IncludeDeleted{})
	}

	total, err := uow.UserRepository().Count(ctx, filters...)
	if err != nil {
		return nil, 0, err
	}

	listSpecs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	users, err := uow.UserRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateStatus bans or reactivates a user and emits event
func (m *Manager) UpdateStatus(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, status, reason string) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", userId.String())
	}

	oldStatus := string(user.Status)
	if err := uow.UserRepository().UpdateStatus(ctx, userId, status); err != nil {
		return nil, err
	}
	user.Status = entity.UserStatus(status)

	m.publisher.PublishUserStatusChanged(ctx, userId, oldStatus, status, reason)
	return user, nil
}

// Delete removes a user account and emits event
func (m *Manager) Delete(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) error {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("user", userId.String())
	}

	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return err
	}

	m.publisher.PublishUserDeleted(ctx, userId, user.Email)
	return nil
}
