package controller

import (
	"github.com/gofiber/fiber/v2"

	"maildraft/config"
	"maildraft/utils"
)

type SettingsController struct {
	Config *config.Config
}

func NewSettingsController(cfg *config.Config) *SettingsController {
	return &SettingsController{Config: cfg}
}

// GetSMTPSettings is a readiness probe for the mail transport: whether a
// send could be attempted, and which settings are missing if not. Values are
// never echoed back.
func (sc *SettingsController) GetSMTPSettings(c *fiber.Ctx) error {
	errs := sc.Config.ValidateSMTPSettings()
	if errs == nil {
		errs = []string{}
	}
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"configured": sc.Config.SMTPConfigured(),
		"errors":     errs,
	}))
}
