package http

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"github.com/TheJproject/weather-chatbot/pkg/observe"
)

// ChatAssistant is the conversational surface exposed over HTTP.
type ChatAssistant interface {
	Answer(ctx context.Context, question string) (string, error)
}

type routes struct {
	assistant ChatAssistant
	l         *observe.Logger
}

func NewRouter(
	app *fiber.App,
	assistant ChatAssistant,
	l *observe.Logger,
) {
	r := &routes{
		assistant: assistant,
		l:         l,
	}

	// Swagger documentation
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		swaggerData, err := os.ReadFile("docs/swagger.json")
		if err != nil {
			return c.Status(fiber.ErrInternalServerError.Code).JSON(fiber.Map{"error": "Failed to read Swagger documentation"})
		}

		c.Set("Content-Type", "application/json")
		return c.Send(swaggerData)
	})

	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
	}))

	// API routes
	app.Post("/v1/chat", r.handleChat)
}
