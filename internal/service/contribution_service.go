// FILE: internal/service/contribution_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/entity"
	"crowdfund-be/internal/pkg/apperror"
	"crowdfund-be/internal/pkg/logger"
	"crowdfund-be/internal/repository/specification"
	"crowdfund-be/internal/repository/unitofwork"
	"crowdfund-be/pkg/bulk"
	"crowdfund-be/pkg/events"
	pktNats "crowdfund-be/pkg/nats"
	"crowdfund-be/pkg/payment/gateway"
	"crowdfund-be/pkg/payment/lifecycle"
	"crowdfund-be/pkg/retry"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type IContributionService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateContributionRequest) (*dto.ContributionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ContributionResponse, error)
	List(ctx context.Context, req *dto.ContributionListRequest) (*dto.ContributionListResponse, error)
	InitiatePayment(ctx context.Context, id uuid.UUID, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, adminId *uuid.UUID, req *dto.UpdateStatusRequest) (*dto.ContributionResponse, error)
	ProcessRefund(ctx context.Context, id uuid.UUID, adminId *uuid.UUID, req *dto.RefundRequest) (*dto.ContributionResponse, error)
	RequestRetry(ctx context.Context, id uuid.UUID, adminId *uuid.UUID, req *dto.RetryRequest) (*dto.ContributionResponse, error)
	BulkUpdateStatus(ctx context.Context, adminId *uuid.UUID, req *dto.BulkUpdateStatusRequest) (*dto.BulkOperationResponse, error)
	HandleGatewayNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
	GetAuditTrail(ctx context.Context, id uuid.UUID) ([]*dto.AuditLogResponse, error)
	Archive(ctx context.Context, id uuid.UUID, adminId *uuid.UUID) error
}

type ContributionServiceConfig struct {
	GatewayServerKey string
	RetryPolicy      retry.Policy
}

type contributionService struct {
	uowFactory       unitofwork.RepositoryFactory
	machine          *lifecycle.Machine
	gatewayClient    gateway.Client
	eventPublisher   *pktNats.Publisher
	fundingPublisher IPublisherService
	log              logger.ILogger
	cfg              ContributionServiceConfig

	// seenNotifications deduplicates webhook redeliveries by
	// transaction id and reported status.
	seenNotifications *cache.Cache
}

func NewContributionService(
	uowFactory unitofwork.RepositoryFactory,
	machine *lifecycle.Machine,
	gatewayClient gateway.Client,
	eventPublisher *pktNats.Publisher,
	fundingPublisher IPublisherService,
	log logger.ILogger,
	cfg ContributionServiceConfig,
) IContributionService {
	if cfg.RetryPolicy.MaxAttempts == 0 {
		cfg.RetryPolicy = retry.DefaultPolicy
	}
	return &contributionService{
		uowFactory:        uowFactory,
		machine:           machine,
		gatewayClient:     gatewayClient,
		eventPublisher:    eventPublisher,
		fundingPublisher:  fundingPublisher,
		log:               log,
		cfg:               cfg,
		seenNotifications: cache.New(24*time.Hour, time.Hour),
	}
}

func (s *contributionService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateContributionRequest) (*dto.ContributionResponse, error) {
	if err := validateAmount(req.Amount); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("user", userId.String())
	}

	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: req.ProjectId})
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NotFound("project", req.ProjectId.String())
	}
	if project.Status != entity.ProjectStatusActive {
		return nil, apperror.Validation("project_id", "project is not accepting contributions")
	}

	contribution := &entity.Contribution{
		Id:            uuid.New(),
		UserId:        userId,
		ProjectId:     req.ProjectId,
		Amount:        req.Amount,
		PaymentStatus: entity.PaymentStatusPending,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		contribution.Notes = &notes
	}

	if err := uow.ContributionRepository().Create(ctx, contribution); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeContributionCreated, map[string]interface{}{
		"contribution_id": contribution.Id,
		"user_id":         userId,
		"project_id":      req.ProjectId,
		"amount":          req.Amount,
		"occurred_at":     time.Now(),
	})

	return toContributionResponse(contribution), nil
}

func (s *contributionService) Get(ctx context.Context, id uuid.UUID) (*dto.ContributionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	contribution, err := uow.ContributionRepository().FindOneWithTransactions(ctx, id)
	if err != nil {
		return nil, err
	}
	if contribution == nil {
		return nil, apperror.NotFound("contribution", id.String())
	}
	return toContributionResponse(contribution), nil
}

func (s *contributionService) List(ctx context.Context, req *dto.ContributionListRequest) (*dto.ContributionListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var filters []specification.Specification
	if req.Status != "" {
		if !entity.PaymentStatus(req.Status).Valid() {
			return nil, apperror.Validation("status", "unknown payment status: "+req.Status)
		}
		filters = append(filters, specification.ByPaymentStatus{Status: req.Status})
	}
	if req.ProjectId != "" {
		projectId, err := uuid.Parse(req.ProjectId)
		if err != nil {
			return nil, apperror.Validation("project_id", "project_id must be a valid uuid")
		}
		filters = append(filters, specification.ByProject{ProjectID: projectId})
	}
	if req.DateFrom != "" || req.DateTo != "" {
		rangeSpec, err := dateRangeSpec(req.DateFrom, req.DateTo)
		if err != nil {
			return nil, err
		}
		filters = append(filters, rangeSpec)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.ContributionRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(filters,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	contributions, err := uow.ContributionRepository().FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ContributionResponse, 0, len(contributions))
	for _, c := range contributions {
		items = append(items, toContributionResponse(c))
	}
	return &dto.ContributionListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// dateRangeSpec builds an inclusive created_at window. An open end falls
// back to the epoch or to now.
func dateRangeSpec(from, to string) (specification.Specification, error) {
	spec := specification.CreatedBetween{To: time.Now()}
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, apperror.Validation("date_from", "date_from must be YYYY-MM-DD")
		}
		spec.From = t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, apperror.Validation("date_to", "date_to must be YYYY-MM-DD")
		}
		spec.To = t.Add(24*time.Hour - time.Nanosecond)
	}
	return spec, nil
}

// InitiatePayment asks the gateway to charge a pending contribution.
// Transient gateway failures are retried with backoff; when all attempts
// fail the contribution is marked failed with the last error as the
// failure reason.
func (s *contributionService) InitiatePayment(ctx context.Context, id uuid.UUID, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	contribution, err := uow.ContributionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if contribution == nil {
		return nil, apperror.NotFound("contribution", id.String())
	}
	if contribution.PaymentStatus != entity.PaymentStatusPending {
		return nil, apperror.InvalidTransition(id.String(), string(contribution.PaymentStatus), string(entity.PaymentStatusPaid))
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: contribution.UserId})
	if err != nil {
		return nil, err
	}

	paymentReq := gateway.PaymentRequest{
		OrderId:          contribution.Id.String(),
		Amount:           contribution.Amount,
		PhoneNumber:      req.PhoneNumber,
		AccountReference: req.AccountReference,
		Description:      "Project contribution",
	}
	if user != nil {
		paymentReq.CustomerName = user.FullName
		paymentReq.CustomerEmail = user.Email
	}

	var initiation *gateway.PaymentInitiation
	err = retry.Do(ctx, s.cfg.RetryPolicy, func(ctx context.Context) error {
		var opErr error
		initiation, opErr = s.gatewayClient.InitiatePayment(ctx, paymentReq)
		return opErr
	},
		retry.WithRetryable(apperror.IsRetryable),
		retry.WithOnRetry(func(attempt int, opErr error, delay time.Duration) {
			s.log.Warn("contribution_service", "payment initiation retry", map[string]interface{}{
				"contribution_id": id,
				"attempt":         attempt,
				"delay":           delay.String(),
				"error":           opErr.Error(),
			})
		}),
	)
	if err != nil {
		s.markInitiationFailed(ctx, id, contribution.Amount, err)
		return nil, err
	}

	// Record the accepted charge as a pending ledger entry. Settlement
	// arrives later through the webhook.
	txn := &entity.Transaction{
		Id:                   uuid.New(),
		ContributionId:       id,
		Type:                 entity.TransactionTypePayment,
		Amount:               contribution.Amount,
		Status:               entity.TransactionStatusPending,
		GatewayTransactionId: &initiation.GatewayTransactionId,
		GatewayResponse:      initiation.RawResponse,
	}
	if err := uow.TransactionRepository().Create(ctx, txn); err != nil {
		return nil, err
	}

	return &dto.InitiatePaymentResponse{
		ContributionId:       id,
		GatewayTransactionId: initiation.GatewayTransactionId,
		RedirectUrl:          initiation.RedirectUrl,
		PaymentStatus:        string(entity.PaymentStatusPending),
	}, nil
}

// markInitiationFailed transitions the contribution to failed after the
// gateway definitively rejected the charge or retries were exhausted.
func (s *contributionService) markInitiationFailed(ctx context.Context, id uuid.UUID, amount float64, cause error) {
	reason := cause.Error()
	errMsg := reason
	_, err := s.machine.Apply(ctx, lifecycle.Request{
		ContributionId: id,
		NewStatus:      entity.PaymentStatusFailed,
		FailureReason:  &reason,
		Transaction: &entity.Transaction{
			Type:         entity.TransactionTypePayment,
			Amount:       amount,
			Status:       entity.TransactionStatusFailed,
			ErrorMessage: &errMsg,
		},
	})
	if err != nil {
		s.log.Error("contribution_service", "failed to mark contribution failed", map[string]interface{}{
			"contribution_id": id,
			"error":           err.Error(),
		})
		return
	}

	s.publishEvent(ctx, events.TypeContributionFailed, map[string]interface{}{
		"contribution_id": id,
		"failure_reason":  reason,
		"occurred_at":     time.Now(),
	})
}

func (s *contributionService) UpdateStatus(ctx context.Context, id uuid.UUID, adminId *uuid.UUID, req *dto.UpdateStatusRequest) (*dto.ContributionResponse, error) {
	target := entity.PaymentStatus(req.Status)
	if target == entity.PaymentStatusRefunded {
		return s.ProcessRefund(ctx, id, adminId, &dto.RefundRequest{Reason: req.Reason})
	}

	lifecycleReq := lifecycle.Request{
		ContributionId: id,
		NewStatus:      target,
		Reason:         req.Reason,
		AdminUserId:    adminId,
	}
	if target == entity.PaymentStatusFailed && strings.TrimSpace(req.Reason) != "" {
		reason := strings.TrimSpace(req.Reason)
		lifecycleReq.FailureReason = &reason
	}
	if target == entity.PaymentStatusPaid {
		// Marking paid by hand is a manual settlement: no gateway
		// transaction exists, but the ledger still has to account for
		// the money, so a settled PAYMENT row without a gateway id is
		// written in the same commit as the transition.
		uow := s.uowFactory.NewUnitOfWork(ctx)
		existing, err := uow.ContributionRepository().FindOne(ctx, specification.ByID{ID: id})
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, apperror.NotFound("contribution", id.String())
		}
		lifecycleReq.Transaction = &entity.Transaction{
			Type:   entity.TransactionTypePayment,
			Amount: existing.Amount,
			Status: entity.TransactionStatusSuccess,
		}
	}

	contribution, err := s.machine.Apply(ctx, lifecycleReq)
	if err != nil {
		return nil, err
	}

	s.publishStatusEvent(ctx, contribution)
	return toContributionResponse(contribution), nil
}

// ProcessRefund refunds a paid contribution. The gateway refund runs
// first; only after the provider accepts it does the status flip, with
// the refund ledger entry and audit row in the same commit.
func (s *contributionService) ProcessRefund(ctx context.Context, id uuid.UUID, adminId *uuid.UUID, req *dto.RefundRequest) (*dto.ContributionResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperror.Validation("reason", "refund requires a non-empty reason")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	contribution, err := uow.ContributionRepository().FindOneWithTransactions(ctx, id)
	if err != nil {
		return nil, err
	}
	if contribution == nil {
		return nil, apperror.NotFound("contribution", id.String())
	}
	if contribution.PaymentStatus != entity.PaymentStatusPaid {
		return nil, apperror.InvalidTransition(id.String(), string(contribution.PaymentStatus), string(entity.PaymentStatusRefunded))
	}

	gatewayTxnId := lastSuccessfulPaymentTxn(contribution)

	refundReq := gateway.RefundRequest{
		OrderId:              id.String(),
		GatewayTransactionId: gatewayTxnId,
		Amount:               contribution.Amount,
		Reason:               reason,
	}

	var refund *gateway.RefundResult
	err = retry.Do(ctx, s.cfg.RetryPolicy, func(ctx context.Context) error {
		var opErr error
		refund, opErr = s.gatewayClient.InitiateRefund(ctx, refundReq)
		return opErr
	},
		retry.WithRetryable(apperror.IsRetryable),
		retry.WithOnRetry(func(attempt int, opErr error, delay time.Duration) {
			s.log.Warn("contribution_service", "refund initiation retry", map[string]interface{}{
				"contribution_id": id,
				"attempt":         attempt,
				"delay":           delay.String(),
				"error":           opErr.Error(),
			})
		}),
	)
	if err != nil {
		return nil, err
	}

	updated, err := s.machine.Apply(ctx, lifecycle.Request{
		ContributionId: id,
		NewStatus:      entity.PaymentStatusRefunded,
		Reason:         reason,
		AdminUserId:    adminId,
		Transaction: &entity.Transaction{
			Type:                 entity.TransactionTypeRefund,
			Amount:               contribution.Amount,
			Status:               entity.TransactionStatusSuccess,
			GatewayTransactionId: &refund.GatewayRefundId,
			GatewayResponse:      refund.RawResponse,
		},
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeContributionRefunded, map[string]interface{}{
		"contribution_id": id,
		"user_id":         updated.UserId,
		"amount":          updated.Amount,
		"reason":          reason,
		"occurred_at":     time.Now(),
	})
	return toContributionResponse(updated), nil
}

// RequestRetry moves a failed contribution back to pending so the payer
// can attempt the charge again. The transition is audited with the
// requester and reason.
func (s *contributionService) RequestRetry(ctx context.Context, id uuid.UUID, adminId *uuid.UUID, req *dto.RetryRequest) (*dto.ContributionResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "payment retry requested"
	}

	contribution, err := s.machine.Apply(ctx, lifecycle.Request{
		ContributionId: id,
		NewStatus:      entity.PaymentStatusPending,
		Reason:         reason,
		AdminUserId:    adminId,
	})
	if err != nil {
		return nil, err
	}
	return toContributionResponse(contribution), nil
}

// BulkUpdateStatus applies one target status across many contributions.
// Items are processed in request order and failures never abort the
// batch; the response accounts for every id.
func (s *contributionService) BulkUpdateStatus(ctx context.Context, adminId *uuid.UUID, req *dto.BulkUpdateStatusRequest) (*dto.BulkOperationResponse, error) {
	if !entity.PaymentStatus(req.Status).Valid() {
		return nil, apperror.Validation("status", "unknown payment status: "+req.Status)
	}

	result := bulk.Process(ctx, req.ContributionIds,
		func(id uuid.UUID) string { return id.String() },
		func(ctx context.Context, id uuid.UUID) error {
			_, err := s.UpdateStatus(ctx, id, adminId, &dto.UpdateStatusRequest{
				Status: req.Status,
				Reason: req.Reason,
			})
			return err
		})

	return dto.NewBulkOperationResponse(result), nil
}

// HandleGatewayNotification processes an asynchronous settlement callback.
// The signature is verified before anything else; redeliveries and stale
// notifications are acknowledged without effect.
func (s *contributionService) HandleGatewayNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	if s.cfg.GatewayServerKey == "" {
		return apperror.Gateway("gateway server key not configured", false, nil)
	}
	if !gateway.VerifySignature(s.cfg.GatewayServerKey, req.OrderId, req.StatusCode, req.GrossAmount, req.SignatureKey) {
		s.log.Warn("contribution_service", "webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return apperror.Validation("signature_key", "invalid signature")
	}

	dedupeKey := req.TransactionId + ":" + req.TransactionStatus
	if _, seen := s.seenNotifications.Get(dedupeKey); seen {
		s.log.Info("contribution_service", "duplicate webhook ignored", map[string]interface{}{
			"order_id":           req.OrderId,
			"transaction_status": req.TransactionStatus,
		})
		return nil
	}

	contributionId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return apperror.Validation("order_id", "order_id must be a valid uuid")
	}

	var target entity.PaymentStatus
	switch req.TransactionStatus {
	case "capture", "settlement":
		target = entity.PaymentStatusPaid
	case "deny", "cancel", "expire", "failure":
		target = entity.PaymentStatusFailed
	case "pending":
		return nil
	default:
		s.log.Warn("contribution_service", "unknown transaction status ignored", map[string]interface{}{
			"order_id":           req.OrderId,
			"transaction_status": req.TransactionStatus,
		})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	contribution, err := uow.ContributionRepository().FindOne(ctx, specification.ByID{ID: contributionId})
	if err != nil {
		return err
	}
	if contribution == nil {
		return apperror.NotFound("contribution", req.OrderId)
	}
	if contribution.PaymentStatus == target {
		s.seenNotifications.SetDefault(dedupeKey, struct{}{})
		return nil
	}

	lifecycleReq := lifecycle.Request{
		ContributionId: contributionId,
		NewStatus:      target,
	}

	raw := rawWebhookPayload(req)
	switch target {
	case entity.PaymentStatusPaid:
		lifecycleReq.PaymentReference = &req.TransactionId
		lifecycleReq.Transaction = &entity.Transaction{
			Type:                 entity.TransactionTypePayment,
			Amount:               contribution.Amount,
			Status:               entity.TransactionStatusSuccess,
			GatewayTransactionId: &req.TransactionId,
			GatewayResponse:      raw,
		}
	case entity.PaymentStatusFailed:
		failureReason := fmt.Sprintf("gateway reported %s", req.TransactionStatus)
		if req.StatusMessage != "" {
			failureReason = req.StatusMessage
		}
		lifecycleReq.FailureReason = &failureReason
		lifecycleReq.Transaction = &entity.Transaction{
			Type:                 entity.TransactionTypePayment,
			Amount:               contribution.Amount,
			Status:               entity.TransactionStatusFailed,
			GatewayTransactionId: &req.TransactionId,
			GatewayResponse:      raw,
			ErrorCode:            &req.StatusCode,
			ErrorMessage:         &failureReason,
		}
	}

	updated, err := s.machine.Apply(ctx, lifecycleReq)
	if err != nil {
		return err
	}
	s.seenNotifications.SetDefault(dedupeKey, struct{}{})

	s.publishStatusEvent(ctx, updated)
	return nil
}

func (s *contributionService) GetAuditTrail(ctx context.Context, id uuid.UUID) ([]*dto.AuditLogResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	contribution, err := uow.ContributionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if contribution == nil {
		return nil, apperror.NotFound("contribution", id.String())
	}

	audits, err := uow.AuditLogRepository().FindAll(ctx,
		specification.ByContribution{ContributionID: id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.AuditLogResponse, 0, len(audits))
	for _, a := range audits {
		res = append(res, &dto.AuditLogResponse{
			Id:             a.Id,
			ContributionId: a.ContributionId,
			AdminUserId:    a.AdminUserId,
			PreviousStatus: string(a.PreviousStatus),
			NewStatus:      string(a.NewStatus),
			Reason:         a.Reason,
			CreatedAt:      a.CreatedAt,
		})
	}
	return res, nil
}

// Archive soft-deletes a contribution. A contribution that already has
// ledger entries is part of the financial record and cannot be removed.
func (s *contributionService) Archive(ctx context.Context, id uuid.UUID, adminId *uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	contribution, err := uow.ContributionRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if contribution == nil {
		return apperror.NotFound("contribution", id.String())
	}

	txnCount, err := uow.TransactionRepository().CountByContribution(ctx, id)
	if err != nil {
		return err
	}
	if txnCount > 0 {
		return apperror.Validation("contribution_id", "contribution has ledger entries and cannot be deleted")
	}

	if err := uow.ContributionRepository().Archive(ctx, id); err != nil {
		return err
	}

	s.log.Info("ContributionService", "Contribution archived", map[string]interface{}{
		"contribution_id": id,
		"admin_user_id":   adminId,
	})
	return nil
}

func (s *contributionService) publishStatusEvent(ctx context.Context, contribution *entity.Contribution) {
	var eventType string
	switch contribution.PaymentStatus {
	case entity.PaymentStatusPaid:
		eventType = events.TypeContributionPaid
	case entity.PaymentStatusFailed:
		eventType = events.TypeContributionFailed
	case entity.PaymentStatusRefunded:
		eventType = events.TypeContributionRefunded
	default:
		return
	}

	data := map[string]interface{}{
		"contribution_id": contribution.Id,
		"user_id":         contribution.UserId,
		"project_id":      contribution.ProjectId,
		"amount":          contribution.Amount,
		"occurred_at":     time.Now(),
	}
	if contribution.FailureReason != nil {
		data["failure_reason"] = *contribution.FailureReason
	}
	s.publishEvent(ctx, eventType, data)

	// Paid and refunded contributions move project totals, so queue a
	// funding recalculation for the reconciliation worker.
	if s.fundingPublisher != nil && contribution.PaymentStatus != entity.PaymentStatusFailed {
		if err := s.fundingPublisher.PublishFundingRecalc(ctx, contribution.ProjectId); err != nil {
			s.log.Warn("contribution_service", "failed to queue funding recalculation", map[string]interface{}{
				"project_id": contribution.ProjectId.String(),
				"error":      err.Error(),
			})
		}
	}
}

func (s *contributionService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.log.Warn("contribution_service", "failed to publish event", map[string]interface{}{
			"event_type": eventType,
			"error":      err.Error(),
		})
	}
}

// validateAmount rejects non-positive amounts and amounts with more than
// two fraction digits, matching the ledger's decimal(12,2) columns.
func validateAmount(amount float64) error {
	if amount <= 0 {
		return apperror.Validation("amount", "amount must be greater than zero")
	}
	cents := amount * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return apperror.Validation("amount", "amount must have at most two decimal places")
	}
	return nil
}

// lastSuccessfulPaymentTxn returns the gateway transaction id of the most
// recent successful payment, or the empty string when the payment settled
// without a recorded gateway id.
func lastSuccessfulPaymentTxn(contribution *entity.Contribution) string {
	for _, txn := range contribution.Transactions {
		if txn.Type == entity.TransactionTypePayment && txn.Status == entity.TransactionStatusSuccess && txn.GatewayTransactionId != nil {
			return *txn.GatewayTransactionId
		}
	}
	return ""
}

func rawWebhookPayload(req *dto.MidtransWebhookRequest) []byte {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil
	}
	return raw
}

func toContributionResponse(c *entity.Contribution) *dto.ContributionResponse {
	res := &dto.ContributionResponse{
		Id:               c.Id,
		UserId:           c.UserId,
		ProjectId:        c.ProjectId,
		Amount:           c.Amount,
		PaymentStatus:    string(c.PaymentStatus),
		Notes:            c.Notes,
		PaymentReference: c.PaymentReference,
		FailureReason:    c.FailureReason,
		PaidAt:           c.PaidAt,
		CreatedAt:        c.CreatedAt,
	}
	for _, txn := range c.Transactions {
		res.Transactions = append(res.Transactions, &dto.TransactionResponse{
			Id:                   txn.Id,
			Type:                 string(txn.Type),
			Amount:               txn.Amount,
			Status:               string(txn.Status),
			GatewayTransactionId: txn.GatewayTransactionId,
			ErrorCode:            txn.ErrorCode,
			ErrorMessage:         txn.ErrorMessage,
			CreatedAt:            txn.CreatedAt,
		})
	}
	return res
}
