package controller

import (
	"io"

	"docvault-be/internal/dto"
	"docvault-be/internal/pkg/apperrors"
	"docvault-be/internal/pkg/serverutils"
	"docvault-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Post("", c.Upload)
	h.Get("", c.List)
	h.Delete(":id", c.Delete)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "failed to open upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "failed to read upload", err)
	}

	req := dto.UploadDocumentRequest{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Upload(ctx.Context(), tenant, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("document uploaded", res))
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.documentService.List(ctx.Context(), tenant)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("documents listed", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	tenant, err := serverutils.TenantFromCtx(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperrors.New(apperrors.KindValidation, "invalid document id")
	}

	if err := c.documentService.Delete(ctx.Context(), tenant, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("document deleted", fiber.Map{"id": id}))
}
