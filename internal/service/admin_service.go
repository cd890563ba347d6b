// FILE: internal/service/admin_service.go
package service

import (
	"context"
	"strings"

	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/pkg/logger"
	"crowdfund-be/internal/repository/specification"
	"crowdfund-be/internal/repository/unitofwork"
	adminUser "crowdfund-be/pkg/admin/user"
	"crowdfund-be/pkg/bulk"

	"github.com/google/uuid"
)

type IAdminService interface {
	GetDashboardStats(ctx context.Context) (*dto.AdminDashboardStats, error)
	GetAllUsers(ctx context.Context, req *dto.AdminUserListRequest) ([]*dto.UserListResponse, int64, error)
	CreateUser(ctx context.Context, req dto.AdminCreateUserRequest) (*dto.UserListResponse, error)
	UpdateUserStatus(ctx context.Context, userId uuid.UUID, req dto.UpdateUserStatusRequest) error
	DeleteUser(ctx context.Context, userId uuid.UUID) error
	BulkBanUsers(ctx context.Context, req dto.AdminBulkUserRequest) (*dto.BulkOperationResponse, error)
	BulkDeleteUsers(ctx context.Context, req dto.AdminBulkUserRequest) (*dto.BulkOperationResponse, error)
	GetSystemLogs(ctx context.Context, req *dto.AdminLogListRequest) ([]logger.LogEntry, error)
	GetSystemLogById(ctx context.Context, id string) (*logger.LogEntry, error)
}

type adminService struct {
	uowFactory  unitofwork.RepositoryFactory
	userManager *adminUser.Manager
	logger      logger.ILogger
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	userManager *adminUser.Manager,
	log logger.ILogger,
) IAdminService {
	return &adminService{
		uowFactory:  uowFactory,
		userManager: userManager,
		logger:      log,
	}
}

// GetDashboardStats counts contributions per lifecycle status.
func (s *adminService) GetDashboardStats(ctx context.Context) (*dto.AdminDashboardStats, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ContributionRepository()

	stats := &dto.AdminDashboardStats{}
	counts := []struct {
		status entity.PaymentStatus
		target *int64
	}{
		{entity.PaymentStatusPending, &stats.PendingContributions},
		{entity.PaymentStatusPaid, &stats.PaidContributions},
		{entity.PaymentStatusFailed, &stats.FailedContributions},
		{entity.PaymentStatusRefunded, &stats.RefundedContributions},
	}
	for _, c := range counts {
		n, err := repo.Count(ctx, specification.ByPaymentStatus{Status: string(c.status)})
		if err != nil {
			return nil, err
		}
		*c.target = n
	}
	stats.TotalContributions = stats.PendingContributions + stats.PaidContributions +
		stats.FailedContributions + stats.RefundedContributions

	totalUsers, err := uow.UserRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = totalUsers

	activeUsers, err := uow.UserRepository().Count(ctx, specification.ActiveUsers{})
	if err != nil {
		return nil, err
	}
	stats.ActiveUsers = activeUsers
	return stats, nil
}

func (s *adminService) GetAllUsers(ctx context.Context, req *dto.AdminUserListRequest) ([]*dto.UserListResponse, int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	users, total, err := s.userManager.GetAll(ctx, uow, req.Page, req.Limit, req.Role, req.Status, req.IncludeDeleted)
	if err != nil {
		return nil, 0, err
	}

	res := make([]*dto.UserListResponse, 0, len(users))
	for _, u := range users {
		res = append(res, toUserListResponse(u))
	}
	return res, total, nil
}

func (s *adminService) CreateUser(ctx context.Context, req dto.AdminCreateUserRequest) (*dto.UserListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.userManager.Create(ctx, uow, req)
	if err != nil {
		return nil, err
	}
	return toUserListResponse(user), nil
}

func (s *adminService) UpdateUserStatus(ctx context.Context, userId uuid.UUID, req dto.UpdateUserStatusRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	_, err := s.userManager.UpdateStatus(ctx, uow, userId, req.Status, req.Reason)
	return err
}

func (s *adminService) DeleteUser(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.userManager.Delete(ctx, uow, userId)
}

// BulkBanUsers bans each user independently; one failure never aborts the
// rest of the batch.
func (s *adminService) BulkBanUsers(ctx context.Context, req dto.AdminBulkUserRequest) (*dto.BulkOperationResponse, error) {
	result := bulk.Process(ctx, req.UserIds,
		func(id uuid.UUID) string { return id.String() },
		func(ctx context.Context, id uuid.UUID) error {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			_, err := s.userManager.UpdateStatus(ctx, uow, id, string(entity.UserStatusBanned), "bulk ban")
			return err
		})

	s.logger.Info("admin_service", "bulk ban completed", map[string]interface{}{
		"requested": len(req.UserIds),
		"succeeded": result.SuccessCount,
		"failed":    result.FailureCount,
	})
	return dto.NewBulkOperationResponse(result), nil
}

// BulkDeleteUsers deletes each user in its own unit of work so partial
// failures leave the rest of the batch applied.
func (s *adminService) BulkDeleteUsers(ctx context.Context, req dto.AdminBulkUserRequest) (*dto.BulkOperationResponse, error) {
	result := bulk.Process(ctx, req.UserIds,
		func(id uuid.UUID) string { return id.String() },
		func(ctx context.Context, id uuid.UUID) error {
			uow := s.uowFactory.NewUnitOfWork(ctx)
			return s.userManager.Delete(ctx, uow, id)
		})

	s.logger.Info("admin_service", "bulk delete completed", map[string]interface{}{
		"requested": len(req.UserIds),
		"succeeded": result.SuccessCount,
		"failed":    result.FailureCount,
	})
	return dto.NewBulkOperationResponse(result), nil
}

// GetSystemLogs pages over the engine's own log file for the admin
// log viewer. The level filter is normalized to the uppercase form
// the file encoder writes.
func (s *adminService) GetSystemLogs(ctx context.Context, req *dto.AdminLogListRequest) ([]logger.LogEntry, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	level := strings.ToUpper(strings.TrimSpace(req.Level))
	return s.logger.GetLogs(level, limit, (page-1)*limit)
}

func (s *adminService) GetSystemLogById(ctx context.Context, id string) (*logger.LogEntry, error) {
	entry, err := s.logger.GetLogById(id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperror.NotFound("log entry", id)
	}
	return entry, nil
}

func toUserListResponse(u *entity.User) *dto.UserListResponse {
	return &dto.UserListResponse{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}
