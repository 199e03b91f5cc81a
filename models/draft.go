package models

import "time"

// Draft lifecycle statuses. A draft moves from StatusDraft to StatusSent or
// StatusFailed via the send operation and never back.
const (
	StatusDraft  = "draft"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

const (
	ToneFormal     = "formal"
	ToneFriendly   = "friendly"
	ToneCasual     = "casual"
	TonePersuasive = "persuasive"
)

const (
	TypeGeneral = "general"
	TypeMeeting = "meeting"
)

// Draft is a stored email composition. Prompt, recipient, tone and type are
// fixed at creation; content is editable, status and sent_at change only
// through the send path. Deletes are hard deletes, so no soft-delete column.
type Draft struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Prompt    string     `gorm:"not null" json:"prompt"`
	Content   string     `json:"content"`
	Recipient string     `gorm:"not null" json:"recipient"`
	Tone      string     `gorm:"default:'friendly'" json:"tone"`
	Status    string     `gorm:"default:'draft';index" json:"status"`
	Type      string     `gorm:"default:'general'" json:"type"`
	Subject   string     `json:"subject"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	SentAt    *time.Time `json:"sent_at"`
}
