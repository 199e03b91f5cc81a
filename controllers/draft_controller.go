package controller

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"maildraft/models"
	"maildraft/storage"
	"maildraft/utils"
)

// Generator produces email content; it never fails, degrading to a fallback
// result instead.
type Generator interface {
	GenerateWithSubject(ctx context.Context, prompt, tone string) utils.GeneratedEmail
}

// MailSender delivers a composed message; a non-nil error means the draft
// must transition to failed.
type MailSender interface {
	Send(to, subject, body string) error
	Configured() bool
}

type DraftController struct {
	Store     *storage.DraftStore
	Generator Generator
	Mailer    MailSender
	Logger    *log.Logger
}

func NewDraftController(store *storage.DraftStore, generator Generator, mailer MailSender, logger *log.Logger) *DraftController {
	return &DraftController{
		Store:     store,
		Generator: generator,
		Mailer:    mailer,
		Logger:    logger,
	}
}

type GenerateRequest struct {
	Prompt    string `json:"prompt" form:"prompt" validate:"required"`
	Recipient string `json:"recipient" form:"recipient" validate:"required,email"`
	Tone      string `json:"tone" form:"tone" validate:"omitempty,oneof=formal friendly casual persuasive"`
	Type      string `json:"type" form:"type"`
}

type UpdateDraftRequest struct {
	Content string `json:"content" form:"content" validate:"required"`
}

// Generate creates a draft from a prompt. A generation failure still yields
// a usable fallback draft; only validation or persistence failures are
// reported to the client.
func (dc *DraftController) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if req.Tone == "" {
		req.Tone = models.ToneFriendly
	}
	if req.Type == "" {
		req.Type = models.TypeGeneral
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := utils.ValidateEmail(req.Recipient); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	email := dc.Generator.GenerateWithSubject(c.Context(), req.Prompt, req.Tone)

	draft := &models.Draft{
		Prompt:    req.Prompt,
		Content:   email.Content,
		Recipient: req.Recipient,
		Tone:      req.Tone,
		Type:      req.Type,
		Subject:   email.Subject,
	}
	if err := dc.Store.Create(draft); err != nil {
		dc.Logger.Printf("Failed to persist draft: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Error generating email", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"content":  email.Content,
		"subject":  email.Subject,
		"draft_id": draft.ID,
	}))
}

// SendDraft delivers a stored draft. Transport failures mark the draft
// failed and stay inspectable and retryable; the underlying cause is logged,
// never raised.
func (dc *DraftController) SendDraft(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid draft id", nil)
	}

	draft, err := dc.Store.GetByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Draft not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load draft", err)
	}

	if sendErr := dc.Mailer.Send(draft.Recipient, sendSubject(draft), draft.Content); sendErr != nil {
		utils.LogError("email_send_failed", sendErr, map[string]interface{}{
			"draft_id": draft.ID,
		})
		if _, err := dc.Store.MarkFailed(draft.ID); err != nil {
			dc.Logger.Printf("Failed to mark draft %d as failed: %v", draft.ID, err)
		}
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to send email", nil)
	}

	if _, err := dc.Store.MarkSent(draft.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update draft status", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"status":  models.StatusSent,
		"message": "Email sent successfully",
	}))
}

// sendSubject picks the stored subject, falling back to the first content
// line capped at 50 characters, then to a generic subject.
func sendSubject(draft *models.Draft) string {
	if draft.Content == "" {
		return "Email"
	}
	if draft.Subject != "" {
		return draft.Subject
	}
	firstLine := draft.Content
	for i, r := range firstLine {
		if r == '\n' {
			firstLine = firstLine[:i]
			break
		}
	}
	if runes := []rune(firstLine); len(runes) > 50 {
		return string(runes[:50])
	}
	return firstLine
}

// GetEmails returns all drafts, newest first.
func (dc *DraftController) GetEmails(c *fiber.Ctx) error {
	drafts, err := dc.Store.ListAll()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Error fetching emails", err)
	}
	return c.JSON(utils.SuccessResponse(drafts))
}

// GetEmail returns a single draft by id.
func (dc *DraftController) GetEmail(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid draft id", nil)
	}

	draft, err := dc.Store.GetByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Draft not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Error fetching email", err)
	}
	return c.JSON(utils.SuccessResponse(draft))
}

// UpdateDraft replaces the draft content; subject, status and timestamps are
// untouched.
func (dc *DraftController) UpdateDraft(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid draft id", nil)
	}

	var req UpdateDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	draft, err := dc.Store.UpdateContent(id, req.Content)
	if err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Draft not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Error updating draft", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Draft updated",
		"draft":   draft,
	}))
}

// DeleteEmail removes a draft permanently.
func (dc *DraftController) DeleteEmail(c *fiber.Ctx) error {
	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid draft id", nil)
	}

	if err := dc.Store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Draft not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Error deleting email", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Email deleted successfully",
	}))
}
