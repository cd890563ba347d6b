// FILE: internal/controller/admin_controller.go
package controller

import (
	"crowdfund-be/internal/dto"
	"crowdfund-be/internal/pkg/serverutils"
	"crowdfund-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
}

type adminController struct {
	adminService        service.IAdminService
	contributionService service.IContributionService
}

func NewAdminController(
	adminService service.IAdminService,
	contributionService service.IContributionService,
) IAdminController {
	return &adminController{
		adminService:        adminService,
		contributionService: contributionService,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin", serverutils.JwtMiddleware, serverutils.AdminMiddleware)

	h.Get("/dashboard/stats", c.DashboardStats)

	h.Get("/logs", c.SystemLogs)
	h.Get("/logs/:id", c.SystemLogById)

	h.Get("/users", c.ListUsers)
	h.Post("/users", c.CreateUser)
	h.Patch("/users/:id/status", c.UpdateUserStatus)
	h.Delete("/users/:id", c.DeleteUser)
	h.Post("/users/bulk/ban", c.BulkBanUsers)
	h.Post("/users/bulk/delete", c.BulkDeleteUsers)

	h.Patch("/contributions/:id/status", c.UpdateContributionStatus)
	h.Post("/contributions/:id/refund", c.RefundContribution)
	h.Post("/contributions/bulk/status", c.BulkUpdateContributionStatus)
	h.Delete("/contributions/:id", c.ArchiveContribution)
}

func (c *adminController) DashboardStats(ctx *fiber.Ctx) error {
	stats, err := c.adminService.GetDashboardStats(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Dashboard stats", stats))
}

func (c *adminController) SystemLogs(ctx *fiber.Ctx) error {
	req := new(dto.AdminLogListRequest)
	if err := ctx.QueryParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query parameters"))
	}

	logs, err := c.adminService.GetSystemLogs(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminController) SystemLogById(ctx *fiber.Ctx) error {
	entry, err := c.adminService.GetSystemLogById(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System log", entry))
}

func (c *adminController) ListUsers(ctx *fiber.Ctx) error {
	req := new(dto.AdminUserListRequest)
	if err := ctx.QueryParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query parameters"))
	}

	users, total, err := c.adminService.GetAllUsers(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Users", fiber.Map{
		"users": users,
		"total": total,
	}))
}

func (c *adminController) CreateUser(ctx *fiber.Ctx) error {
	req := new(dto.AdminCreateUserRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.CreateUser(ctx.Context(), *req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("User created", res))
}

func (c *adminController) UpdateUserStatus(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid user id"))
	}

	req := new(dto.UpdateUserStatusRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.adminService.UpdateUserStatus(ctx.Context(), userId, *req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("User status updated", nil))
}

func (c *adminController) DeleteUser(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid user id"))
	}

	if err := c.adminService.DeleteUser(ctx.Context(), userId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("User deleted", nil))
}

func (c *adminController) BulkBanUsers(ctx *fiber.Ctx) error {
	req := new(dto.AdminBulkUserRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.BulkBanUsers(ctx.Context(), *req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Bulk ban completed", res))
}

func (c *adminController) BulkDeleteUsers(ctx *fiber.Ctx) error {
	req := new(dto.AdminBulkUserRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.adminService.BulkDeleteUsers(ctx.Context(), *req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Bulk delete completed", res))
}

func (c *adminController) UpdateContributionStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid contribution id"))
	}

	req := new(dto.UpdateStatusRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	adminId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.contributionService.UpdateStatus(ctx.Context(), id, &adminId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Contribution status updated", res))
}

func (c *adminController) RefundContribution(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid contribution id"))
	}

	req := new(dto.RefundRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	adminId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.contributionService.ProcessRefund(ctx.Context(), id, &adminId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund processed", res))
}

func (c *adminController) ArchiveContribution(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid contribution id"))
	}

	adminId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	if err := c.contributionService.Archive(ctx.Context(), id, &adminId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Contribution archived", nil))
}

func (c *adminController) BulkUpdateContributionStatus(ctx *fiber.Ctx) error {
	req := new(dto.BulkUpdateStatusRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	adminId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.contributionService.BulkUpdateStatus(ctx.Context(), &adminId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Bulk status update completed", res))
}
