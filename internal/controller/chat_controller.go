package controller

import (
	"docvault-be/internal/dto"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/serverutils"
	"docvault-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
	Sessions(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("ask", c.Ask)
	h.Post("sessions/:sessionId/messages/:messageId/retry", c.Retry)
	h.Get("sessions", c.Sessions)
	h.Get("sessions/:id/messages", c.History)
	h.Delete("sessions/:id", c.DeleteSession)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "invalid request body", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Ask(ctx.Context(), tenant, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("answer generated", res))
}

func (c *chatController) Retry(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid session id")
	}
	messageId, err := uuid.Parse(ctx.Params("messageId"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid message id")
	}

	res, err := c.chatService.RetryAnswer(ctx.Context(), tenant, sessionId, messageId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("answer generated", res))
}

func (c *chatController) Sessions(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetSessions(ctx.Context(), tenant)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("sessions listed", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid session id")
	}

	res, err := c.chatService.GetHistory(ctx.Context(), tenant, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("history loaded", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid session id")
	}

	if err := c.chatService.DeleteSession(ctx.Context(), tenant, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("session deleted", fiber.Map{"id": id}))
}
