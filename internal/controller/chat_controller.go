package controller

import (
	"bufio"
	"errors"
	"io"

	"braincells-be/internal/apperror"
	"braincells-be/internal/dto"
	"braincells-be/internal/pkg/logger"
	"braincells-be/internal/pkg/serverutils"
	"braincells-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth *serverutils.Authenticator)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatController(chatService service.IChatService, logger logger.ILogger) IChatController {
	return &chatController{
		chatService: chatService,
		logger:      logger,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth *serverutils.Authenticator) {
	r.Post("/chat", auth.IdentityMiddleware, c.Chat)
}

// Chat streams the completion as plain text. Errors before the stream opens
// go through the error handler; once bytes are sent a failure only ends the
// body early.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewInvalidInput("body", "")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	userId := serverutils.UserID(ctx)
	stream, err := c.chatService.Chat(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer stream.Close()

		for {
			token, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				c.logger.Error("ChatController", "completion stream failed", map[string]interface{}{
					"user_id": userId,
					"error":   err,
				})
				return
			}

			if _, err := w.WriteString(token); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				c.logger.Warn("ChatController", "client went away mid-stream", map[string]interface{}{"user_id": userId})
				return
			}
		}
	})

	return nil
}
