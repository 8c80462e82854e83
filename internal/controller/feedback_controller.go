package controller

import (
	"docvault-be/internal/dto"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/serverutils"
	"docvault-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IFeedbackController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type feedbackController struct {
	feedbackService service.IFeedbackService
}

func NewFeedbackController(feedbackService service.IFeedbackService) IFeedbackController {
	return &feedbackController{
		feedbackService: feedbackService,
	}
}

func (c *feedbackController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/feedback")
	h.Post("", c.Submit)
	h.Get("messages/:id", c.Show)
}

func (c *feedbackController) Submit(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.SubmitFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.feedbackService.Submit(ctx.Context(), tenant, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("feedback recorded", res))
}

func (c *feedbackController) Show(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid message id")
	}

	res, err := c.feedbackService.GetForMessage(ctx.Context(), tenant, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("feedback loaded", res))
}
