package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	swag "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires every endpoint of the portal onto app.
func RegisterRoutes(app *fiber.App, kc *KeyController, pc *PageController) {
	app.Get("/", pc.Index)
	app.Get("/health", pc.Health)
	app.Use("/static", filesystem.New(filesystem.Config{
		Root: pc.static,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swag.HandlerDefault)

	app.Post("/validate-key", kc.ValidateKey)
	app.Post("/get-code", kc.GetCode)
	app.Post("/key-info", kc.KeyInfo)
}
