// FILE: internal/controller/contribution_controller.go
package controller

import (
	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/pkg/serverutils"
	"crowdfund-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IContributionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Pay(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	AuditTrail(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type contributionController struct {
	service service.IContributionService
}

func NewContributionController(service service.IContributionService) IContributionController {
	return &contributionController{service: service}
}

func (c *contributionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/contributions")
	h.Post("/midtrans/notification", c.Webhook)

	// Protected Routes
	h.Post("/", serverutils.JwtMiddleware, c.Create)
	h.Get("/", serverutils.JwtMiddleware, c.List)
	h.Get("/:id", serverutils.JwtMiddleware, c.Get)
	h.Post("/:id/pay", serverutils.JwtMiddleware, c.Pay)
	h.Post("/:id/retry", serverutils.JwtMiddleware, c.Retry)
	h.Get("/:id/audit", serverutils.JwtMiddleware, c.AuditTrail)
}

func (c *contributionController) Create(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	req := new(dto.CreateContributionRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), userId, req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Contribution created", res))
}

func (c *contributionController) Get(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid contribution id"))
	}

	res, err := c.service.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Contribution detail", res))
}

func (c *contributionController) List(ctx *fiber.Ctx) error {
	req := new(dto.ContributionListRequest)
	if err := ctx.QueryParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query parameters"))
	}

	res, err := c.service.List(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Contributions", res))
}

func (c *contributionController) Pay(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid contribution id"))
	}

	req := new(dto.InitiatePaymentRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.InitiatePayment(ctx.Context(), id, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment initiated", res))
}

func (c *contributionController) Retry(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid contribution id"))
	}

	req := new(dto.RetryRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	res, err := c.service.RequestRetry(ctx.Context(), id, nil, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Payment retry requested", res))
}

func (c *contributionController) AuditTrail(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid contribution id"))
	}

	res, err := c.service.GetAuditTrail(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Audit trail", res))
}

func (c *contributionController) Webhook(ctx *fiber.Ctx) error {
	req := new(dto.MidtransWebhookRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid notification body"))
	}

	if err := c.service.HandleGatewayNotification(ctx.Context(), req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Notification processed", nil))
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid user id in token")
	}
	return userId, nil
}
