package public

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/niposch/ovh-embedding-adapter/internal/app"
	"github.com/niposch/ovh-embedding-adapter/internal/httpserver/httputil"
	"github.com/niposch/ovh-embedding-adapter/internal/models"
)

type embeddingHandler struct {
	container *app.Container
}

// embeddings translates one OpenAI-shaped embedding request into batched
// upstream calls and returns the reassembled response. Failures never
// surface partial results.
func (h *embeddingHandler) embeddings(c *fiber.Ctx) error {
	var req models.EmbeddingsRequest
	if err := c.BodyParser(&req); err != nil {
		return httputil.WriteError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.container.Translator.Translate(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
		}
		return httputil.WriteError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(resp)
}
