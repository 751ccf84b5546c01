package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const maxMessageLength = 4000

// ChatRequest is one user turn for the weather assistant
type ChatRequest struct {
	Message string `json:"message" example:"Will it rain in Copenhagen tomorrow?"`
}

// ChatResponse is the assistant's natural-language reply
type ChatResponse struct {
	Reply string `json:"reply" example:"Tomorrow in Copenhagen expect light rain, 4 mm, with a high of 7°C."`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Missing required field: message"`
}

// HandleChat godoc
// @Summary Ask the weather assistant
// @Description Sends one question to the weather assistant. The model orchestrates geocoding, forecast, and historical lookups and composes a natural-language answer.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body ChatRequest true "User question"
// @Success 200 {object} ChatResponse "Successful response"
// @Failure 400 {object} ErrorResponse "Bad request - missing or oversized message"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /v1/chat [post]
func (r *routes) handleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Invalid JSON body",
		})
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required field: message",
		})
	}

	if len(req.Message) > maxMessageLength {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Message too long",
		})
	}

	reply, err := r.assistant.Answer(c.Context(), req.Message)
	if err != nil {
		r.l.Error(err, map[string]any{
			"message": req.Message,
		})

		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Failed to answer the question",
		})
	}

	return c.JSON(ChatResponse{Reply: reply})
}
