package dto

import (
	"time"

	"github.com/google/uuid"

	"crowdfund-be/pkg/bulk"
)

// --- User Management ---

type AdminUserListRequest struct {
	Page           int    `query:"page"`
	Limit          int    `query:"limit"`
	Role           string `query:"role"`
	Status         string `query:"status"`
	IncludeDeleted bool   `query:"include_deleted"`
}

type UserListResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type AdminCreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active banned"`
	Reason string `json:"reason,omitempty"`
}

type AdminBulkUserRequest struct {
	UserIds []uuid.UUID `json:"user_ids" validate:"required,min=1"`
}

// --- System Logs ---

type AdminLogListRequest struct {
	Level string `query:"level"`
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
}

// --- Contribution Management ---

type BulkUpdateStatusRequest struct {
	ContributionIds []uuid.UUID `json:"contribution_ids" validate:"required,min=1"`
	Status          string      `json:"status" validate:"required,oneof=pending paid failed refunded"`
	Reason          string      `json:"reason,omitempty"`
}

// BulkOperationResponse reports a partial-failure batch: every requested
// item is accounted for either in SuccessCount or in Errors.
type BulkOperationResponse struct {
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	Errors       []bulk.ItemError `json:"errors,omitempty"`
}

func NewBulkOperationResponse(result bulk.Result) *BulkOperationResponse {
	return &BulkOperationResponse{
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		Errors:       result.Errors,
	}
}

// --- Dashboard ---

type AdminDashboardStats struct {
	TotalUsers            int64 `json:"total_users"`
	ActiveUsers           int64 `json:"active_users"`
	TotalContributions    int64 `json:"total_contributions"`
	PendingContributions  int64 `json:"pending_contributions"`
	PaidContributions     int64 `json:"paid_contributions"`
	FailedContributions   int64 `json:"failed_contributions"`
	RefundedContributions int64 `json:"refunded_contributions"`
}
