package social

import (
	"github.com/gofiber/fiber/v2"
)

// HTTPController handles the social auth HTTP routes. The provider flows
// themselves are placeholders until the OAuth exchange lands, but the
// route shape and provider gating are stable.
type HTTPController struct {
	config HTTPConfig
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// Providers lists the provider names clients may request.
	Providers []string
}

// DefaultProviders are the providers the routes accept out of the box.
var DefaultProviders = []string{"google", "github"}

// NewHTTPController creates a new social auth HTTP controller.
func NewHTTPController(cfg HTTPConfig) *HTTPController {
	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders
	}

	return &HTTPController{config: cfg}
}

// RegisterRoutes registers social auth routes on the given group.
func (c *HTTPController) RegisterRoutes(group fiber.Router) {
	group.Get("/:provider/callback", c.Callback).Name("social.callback")
	group.Get("/:provider", c.BeginAuth).Name("social.begin")
}

// BeginAuth starts the OAuth flow for a configured provider.
func (c *HTTPController) BeginAuth(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	if !c.hasProvider(provider) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   ErrProviderNotFound.Message,
		})
	}

	return ctx.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
		"success": false,
		"error":   ErrNotImplemented.Message,
	})
}

// Callback completes the OAuth flow for a configured provider.
func (c *HTTPController) Callback(ctx *fiber.Ctx) error {
	provider := ctx.Params("provider")

	if !c.hasProvider(provider) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   ErrProviderNotFound.Message,
		})
	}

	return ctx.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
		"success": false,
		"error":   ErrNotImplemented.Message,
	})
}

func (c *HTTPController) hasProvider(name string) bool {
	for _, p := range c.config.Providers {
		if p == name {
			return true
		}
	}
	return false
}

// RegisterRoutes mounts the social routes with default configuration.
func RegisterRoutes(group fiber.Router) {
	NewHTTPController(HTTPConfig{}).RegisterRoutes(group)
}
