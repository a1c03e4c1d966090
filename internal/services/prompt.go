package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/pkg/response"
	"gorm.io/gorm"
)

// PromptService implements the prompt store contract over gorm.
type PromptService struct {
	db *gorm.DB
}

func NewPromptService(db *gorm.DB) *PromptService {
	return &PromptService{db: db}
}

// PromptSubmission is the payload for creating a prompt.
type PromptSubmission struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	PromptText  string                 `json:"prompt_text"`
	AISystems   []string               `json:"ai_systems"`
	Categories  []string               `json:"categories"`
	Techniques  []string               `json:"techniques"`
	Tags        []string               `json:"tags"`
	UseCases    []string               `json:"use_cases"`
	Examples    []models.PromptExample `json:"examples"`
	Author      string                 `json:"author"`
	AuthorEmail string                 `json:"author_email"`
	Draft       bool                   `json:"draft"`
}

func (s *PromptSubmission) validate() error {
	switch {
	case strings.TrimSpace(s.Title) == "":
		return response.NewBadRequest("title is required")
	case strings.TrimSpace(s.Description) == "":
		return response.NewBadRequest("description is required")
	case strings.TrimSpace(s.PromptText) == "":
		return response.NewBadRequest("prompt_text is required")
	case len(s.AISystems) == 0:
		return response.NewBadRequest("at least one ai_system is required")
	case len(s.Categories) == 0:
		return response.NewBadRequest("at least one category is required")
	case strings.TrimSpace(s.Author) == "":
		return response.NewBadRequest("author is required")
	}
	return nil
}

// Create validates the submission, enforces the owner's prompt quota and
// stores a new prompt with zeroed counters. Published and public by
// default unless a draft is requested.
func (s *PromptService) Create(ownerID uint, limit int, sub *PromptSubmission) (*models.Prompt, error) {
	if err := sub.validate(); err != nil {
		return nil, err
	}

	var owned int64
	if err := s.db.Model(&models.Prompt{}).
		Where("owner_id = ? AND status <> ?", ownerID, models.PromptStatusArchived).
		Count(&owned).Error; err != nil {
		return nil, err
	}
	if owned >= int64(limit) {
		return nil, response.NewForbidden("prompt limit reached for your membership tier")
	}

	status := models.PromptStatusPublished
	if sub.Draft {
		status = models.PromptStatusDraft
	}

	examples := "[]"
	if len(sub.Examples) > 0 {
		if data, err := encodeExamples(sub.Examples); err == nil {
			examples = data
		}
	}

	prompt := &models.Prompt{
		PublicID:    uuid.New().String(),
		Title:       strings.TrimSpace(sub.Title),
		Description: strings.TrimSpace(sub.Description),
		PromptText:  sub.PromptText,
		AISystems:   models.EncodeStringList(sub.AISystems),
		Categories:  models.EncodeStringList(sub.Categories),
		Techniques:  models.EncodeStringList(sub.Techniques),
		Tags:        models.EncodeStringList(sub.Tags),
		UseCases:    models.EncodeStringList(sub.UseCases),
		Examples:    examples,
		Author:      strings.TrimSpace(sub.Author),
		AuthorEmail: strings.TrimSpace(sub.AuthorEmail),
		OwnerID:     ownerID,
		IsPublic:    true,
		Status:      status,
	}

	if err := s.db.Create(prompt).Error; err != nil {
		return nil, err
	}
	return prompt, nil
}

// GetByPublicID fetches one prompt through the catalog path: only public,
// published rows resolve, so an archived prompt reads as deleted. countView
// must be true only for the detail-page use case: it atomically bumps
// view_count before the read.
func (s *PromptService) GetByPublicID(publicID string, countView bool) (*models.Prompt, error) {
	if countView {
		res := s.catalogScope(publicID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, response.NewNotFound("prompt not found")
		}
	}

	var prompt models.Prompt
	if err := s.catalogScope(publicID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("prompt not found")
		}
		return nil, err
	}
	return &prompt, nil
}

// catalogScope narrows a query to the publicly served rows.
func (s *PromptService) catalogScope(publicID string) *gorm.DB {
	return s.db.Model(&models.Prompt{}).
		Where("public_id = ? AND is_public = ? AND status = ?",
			publicID, true, models.PromptStatusPublished)
}

// lookupByPublicID resolves a prompt regardless of status or visibility.
// Owner and moderation paths use it; the catalog never does.
func (s *PromptService) lookupByPublicID(publicID string) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := s.db.Where("public_id = ?", publicID).First(&prompt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("prompt not found")
		}
		return nil, err
	}
	return &prompt, nil
}

// SearchResult is the listing payload.
type SearchResult struct {
	Prompts []models.Prompt `json:"prompts"`
	Total   int             `json:"total"`
}

// Search loads the public, published prompts and applies the pure filter
// engine.
func (s *PromptService) Search(f Filter) (*SearchResult, error) {
	var prompts []models.Prompt
	if err := s.db.
		Where("is_public = ? AND status = ?", true, models.PromptStatusPublished).
		Find(&prompts).Error; err != nil {
		return nil, err
	}

	matched := FilterPrompts(prompts, f)
	return &SearchResult{Prompts: matched, Total: len(matched)}, nil
}

// ListAll returns every prompt without filtering or view counting.
func (s *PromptService) ListAll() ([]models.Prompt, error) {
	var prompts []models.Prompt
	if err := s.db.Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

// ListByOwner returns all non-archived prompts owned by a user.
func (s *PromptService) ListByOwner(ownerID uint) ([]models.Prompt, error) {
	var prompts []models.Prompt
	if err := s.db.
		Where("owner_id = ? AND status <> ?", ownerID, models.PromptStatusArchived).
		Order("created_at DESC").
		Find(&prompts).Error; err != nil {
		return nil, err
	}
	return prompts, nil
}

// immutableFields can never be set through Update.
var immutableFields = []string{
	"id", "public_id", "owner_id", "rating", "rating_count",
	"view_count", "like_count", "featured", "verified",
	"created_at", "updated_at",
}

// Update applies an owner edit. Only the owner or an admin may edit;
// immutable and counter fields are stripped from the update map.
func (s *PromptService) Update(publicID string, userID uint, isAdmin bool, updates map[string]interface{}) (*models.Prompt, error) {
	prompt, err := s.lookupByPublicID(publicID)
	if err != nil {
		return nil, err
	}

	if prompt.OwnerID != userID && !isAdmin {
		return nil, response.NewForbidden("only the owner may edit this prompt")
	}

	for _, f := range immutableFields {
		delete(updates, f)
	}
	if len(updates) == 0 {
		return prompt, nil
	}

	if err := s.db.Model(&models.Prompt{}).
		Where("id = ?", prompt.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.lookupByPublicID(publicID)
}

// Archive marks a prompt archived. This is the delete path; rows are never
// removed.
func (s *PromptService) Archive(publicID string, userID uint, isAdmin bool) error {
	prompt, err := s.lookupByPublicID(publicID)
	if err != nil {
		return err
	}

	if prompt.OwnerID != userID && !isAdmin {
		return response.NewForbidden("only the owner may archive this prompt")
	}

	return s.db.Model(&models.Prompt{}).
		Where("id = ?", prompt.ID).
		Update("status", models.PromptStatusArchived).Error
}

// Rate records a 1..5 vote and folds it into the running average. Only
// catalog rows accept votes. The whole read-modify-write happens in one
// SQL UPDATE so concurrent raters serialize inside the store and no vote
// is lost.
func (s *PromptService) Rate(publicID string, score int) (*models.Prompt, error) {
	if score < 1 || score > 5 {
		return nil, response.NewBadRequest("rating must be between 1 and 5")
	}

	res := s.catalogScope(publicID).
		Updates(map[string]interface{}{
			"rating":       gorm.Expr("(rating * rating_count + ?) / (rating_count + 1)", float64(score)),
			"rating_count": gorm.Expr("rating_count + 1"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, response.NewNotFound("prompt not found")
	}

	return s.GetByPublicID(publicID, false)
}

// Like atomically bumps the like counter. Catalog rows only, like Rate.
func (s *PromptService) Like(publicID string) (*models.Prompt, error) {
	res := s.catalogScope(publicID).
		UpdateColumn("like_count", gorm.Expr("like_count + 1"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, response.NewNotFound("prompt not found")
	}
	return s.GetByPublicID(publicID, false)
}

// SetFeatured toggles the editorial featured flag (admin moderation).
func (s *PromptService) SetFeatured(publicID string, featured bool) error {
	return s.setFlag(publicID, "featured", featured)
}

// SetVerified toggles the editorial verified flag (admin moderation).
func (s *PromptService) SetVerified(publicID string, verified bool) error {
	return s.setFlag(publicID, "verified", verified)
}

func (s *PromptService) setFlag(publicID, column string, value bool) error {
	res := s.db.Model(&models.Prompt{}).
		Where("public_id = ?", publicID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return response.NewNotFound("prompt not found")
	}
	return nil
}

func encodeExamples(examples []models.PromptExample) (string, error) {
	data, err := json.Marshal(examples)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
