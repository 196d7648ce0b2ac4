package controller

import (
	"braincells-be/internal/apperror"
	"braincells-be/internal/constant"
	"braincells-be/internal/dto"
	"braincells-be/internal/pkg/serverutils"
	"braincells-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBraincellController interface {
	RegisterRoutes(r fiber.Router, auth *serverutils.Authenticator)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type braincellController struct {
	braincellService service.IBraincellService
}

func NewBraincellController(braincellService service.IBraincellService) IBraincellController {
	return &braincellController{
		braincellService: braincellService,
	}
}

// RegisterRoutes mounts the write endpoints behind the non-rejecting identity
// middleware; the service decides on 401 after validating and looking up.
func (c *braincellController) RegisterRoutes(r fiber.Router, auth *serverutils.Authenticator) {
	h := r.Group("/braincells")
	h.Post("", auth.IdentityMiddleware, c.Create)
	h.Put("", auth.IdentityMiddleware, c.Update)
	h.Delete("", auth.IdentityMiddleware, c.Delete)
	h.Get("", auth.JwtMiddleware, c.List)
	h.Get("/:id", auth.JwtMiddleware, c.Show)
}

func (c *braincellController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateBraincellRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewInvalidInput("body", "")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.braincellService.Create(ctx.UserContext(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Success create braincell", res))
}

func (c *braincellController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateBraincellRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewInvalidInput("body", "")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.braincellService.Update(ctx.UserContext(), serverutils.UserID(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update braincell", res))
}

func (c *braincellController) Delete(ctx *fiber.Ctx) error {
	var req dto.DeleteBraincellRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewInvalidInput("body", "")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.braincellService.Delete(ctx.UserContext(), serverutils.UserID(ctx), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any](constant.BraincellDeletedMessage, nil))
}

func (c *braincellController) List(ctx *fiber.Ctx) error {
	res, err := c.braincellService.List(ctx.UserContext(), serverutils.UserID(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get braincells", res))
}

func (c *braincellController) Show(ctx *fiber.Ctx) error {
	res, err := c.braincellService.Show(ctx.UserContext(), serverutils.UserID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show braincell", res))
}
