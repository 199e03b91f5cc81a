package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"maildraft/models"
)

// ErrDraftNotFound is returned for every operation against an unknown draft
// id, so callers can map it to a not-found response instead of a generic
// failure.
var ErrDraftNotFound = errors.New("draft not found")

// DraftStore wraps all database access for drafts. Every operation is a
// single-record read or write; no cross-record transactions are needed.
type DraftStore struct {
	db *gorm.DB
}

func NewDraftStore(db *gorm.DB) *DraftStore {
	return &DraftStore{db: db}
}

// Create persists a new draft. Status always starts at draft and created_at
// is stamped in UTC; missing tone/type fall back to their defaults.
func (s *DraftStore) Create(draft *models.Draft) error {
	if draft.Tone == "" {
		draft.Tone = models.ToneFriendly
	}
	if draft.Type == "" {
		draft.Type = models.TypeGeneral
	}
	draft.Status = models.StatusDraft
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = time.Now().UTC()
	}
	return s.db.Create(draft).Error
}

func (s *DraftStore) GetByID(id uint) (*models.Draft, error) {
	var draft models.Draft
	if err := s.db.First(&draft, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &draft, nil
}

// ListAll returns every draft, newest first.
func (s *DraftStore) ListAll() ([]models.Draft, error) {
	var drafts []models.Draft
	if err := s.db.Order("created_at DESC").Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

// UpdateContent replaces the draft body and nothing else; subject, status
// and timestamps are left untouched.
func (s *DraftStore) UpdateContent(id uint, content string) (*models.Draft, error) {
	draft, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(draft).Update("content", content).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

// MarkSent transitions the draft to sent and stamps sent_at in UTC.
func (s *DraftStore) MarkSent(id uint) (*models.Draft, error) {
	draft, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":  models.StatusSent,
		"sent_at": &now,
	}
	if err := s.db.Model(draft).Updates(updates).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

// MarkFailed transitions the draft to failed; sent_at stays unset so the
// sent ⇒ sent_at invariant holds.
func (s *DraftStore) MarkFailed(id uint) (*models.Draft, error) {
	draft, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(draft).Update("status", models.StatusFailed).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

// Delete removes the draft permanently. Deleting an unknown id reports
// ErrDraftNotFound, never a silent success.
func (s *DraftStore) Delete(id uint) error {
	result := s.db.Delete(&models.Draft{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDraftNotFound
	}
	return nil
}
