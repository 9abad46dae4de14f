package controller

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"keyportal/web"
)

type PageController struct {
	index  []byte
	static http.FileSystem
}

func NewPageController() (*PageController, error) {
	index, err := web.Assets.ReadFile("index.html")
	if err != nil {
		return nil, fmt.Errorf("read index page: %w", err)
	}
	static, err := web.Static()
	if err != nil {
		return nil, fmt.Errorf("open static assets: %w", err)
	}
	return &PageController{index: index, static: http.FS(static)}, nil
}

// Index serves the single page
func (pc *PageController) Index(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(pc.index)
}

func (pc *PageController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
