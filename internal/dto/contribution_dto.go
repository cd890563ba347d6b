package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateContributionRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
	Amount    float64   `json:"amount" validate:"required,gt=0"`
	Notes     string    `json:"notes,omitempty" validate:"max=500"`
}

type InitiatePaymentRequest struct {
	PhoneNumber      string `json:"phone_number" validate:"required,e164"`
	AccountReference string `json:"account_reference" validate:"required"`
}

type InitiatePaymentResponse struct {
	ContributionId       uuid.UUID `json:"contribution_id"`
	GatewayTransactionId string    `json:"gateway_transaction_id"`
	RedirectUrl          string    `json:"redirect_url,omitempty"`
	PaymentStatus        string    `json:"payment_status"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid failed refunded"`
	Reason string `json:"reason,omitempty"`
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type RetryRequest struct {
	Reason string `json:"reason,omitempty"`
}

type TransactionResponse struct {
	Id                   uuid.UUID `json:"id"`
	Type                 string    `json:"type"`
	Amount               float64   `json:"amount"`
	Status               string    `json:"status"`
	GatewayTransactionId *string   `json:"gateway_transaction_id,omitempty"`
	ErrorCode            *string   `json:"error_code,omitempty"`
	ErrorMessage         *string   `json:"error_message,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

type ContributionResponse struct {
	Id               uuid.UUID              `json:"id"`
	UserId           uuid.UUID              `json:"user_id"`
	ProjectId        uuid.UUID              `json:"project_id"`
	Amount           float64                `json:"amount"`
	PaymentStatus    string                 `json:"payment_status"`
	Notes            *string                `json:"notes,omitempty"`
	PaymentReference *string                `json:"payment_reference,omitempty"`
	FailureReason    *string                `json:"failure_reason,omitempty"`
	PaidAt           *time.Time             `json:"paid_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	Transactions     []*TransactionResponse `json:"transactions,omitempty"`
}

type ContributionListRequest struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	Status    string `query:"status"`
	ProjectId string `query:"project_id"`
	DateFrom  string `query:"date_from"` // YYYY-MM-DD, inclusive
	DateTo    string `query:"date_to"`   // YYYY-MM-DD, inclusive
}

type ContributionListResponse struct {
	Items []*ContributionResponse `json:"items"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

type AuditLogResponse struct {
	Id             uuid.UUID  `json:"id"`
	ContributionId uuid.UUID  `json:"contribution_id"`
	AdminUserId    *uuid.UUID `json:"admin_user_id,omitempty"`
	PreviousStatus string     `json:"previous_status"`
	NewStatus      string     `json:"new_status"`
	Reason         *string    `json:"reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
