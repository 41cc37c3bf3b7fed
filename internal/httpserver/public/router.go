package public

import (
	"github.com/gofiber/fiber/v2"

	"github.com/niposch/ovh-embedding-adapter/internal/app"
)

// Register wires up the OpenAI-compatible public API routes.
func Register(app *fiber.App, container *app.Container) {
	group := app.Group("/v1")
	handler := &embeddingHandler{container: container}
	group.Post("/embeddings", handler.embeddings)
}
