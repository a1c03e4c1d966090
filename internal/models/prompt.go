package models

import (
	"encoding/json"
	"time"
)

// Prompt status values. Archival via status is the deletion path; prompts
// are never hard-deleted.
const (
	PromptStatusDraft     = "draft"
	PromptStatusPublished = "published"
	PromptStatusArchived  = "archived"
)

// PromptExample is one input/output demonstration attached to a prompt.
type PromptExample struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Notes  string `json:"notes,omitempty"`
}

// Prompt is a reusable text prompt listed on the marketplace.
//
// Tag-set fields (AISystems, Categories, Techniques, Tags, UseCases) and
// Examples are stored as JSON-encoded strings so the model works unchanged
// across sqlite, mysql and postgres. Use the typed accessors below.
type Prompt struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	PublicID    string `gorm:"uniqueIndex;size:36;not null" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"size:2000;not null" json:"description"`
	PromptText  string `gorm:"type:text;not null" json:"prompt_text"`

	AISystems  string `gorm:"size:500;not null" json:"-"` // JSON array, non-empty
	Categories string `gorm:"size:500;not null" json:"-"` // JSON array, non-empty
	Techniques string `gorm:"size:500" json:"-"`          // JSON array
	Tags       string `gorm:"size:500" json:"-"`          // JSON array
	UseCases   string `gorm:"size:1000" json:"-"`         // JSON array
	Examples   string `gorm:"type:text" json:"-"`         // JSON array of PromptExample

	Author      string `gorm:"size:200;not null" json:"author"`
	AuthorEmail string `gorm:"size:255" json:"author_email,omitempty"`
	OwnerID     uint   `gorm:"index" json:"owner_id"`

	Rating      float64 `gorm:"default:0" json:"rating"` // running average in [0,5]
	RatingCount int     `gorm:"default:0" json:"rating_count"`
	ViewCount   int     `gorm:"default:0" json:"view_count"`
	LikeCount   int     `gorm:"default:0" json:"like_count"`

	Featured bool   `gorm:"default:false;index" json:"featured"`
	Verified bool   `gorm:"default:false" json:"verified"`
	IsPublic bool   `gorm:"default:true" json:"is_public"`
	Status   string `gorm:"size:20;default:published;index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Prompt) TableName() string { return "prompts" }

// EncodeStringList JSON-encodes a list of labels for storage.
func EncodeStringList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeStringList decodes a stored JSON array of labels. Malformed or
// empty columns decode to nil.
func DecodeStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func (p *Prompt) AISystemList() []string  { return DecodeStringList(p.AISystems) }
func (p *Prompt) CategoryList() []string  { return DecodeStringList(p.Categories) }
func (p *Prompt) TechniqueList() []string { return DecodeStringList(p.Techniques) }
func (p *Prompt) TagList() []string       { return DecodeStringList(p.Tags) }
func (p *Prompt) UseCaseList() []string   { return DecodeStringList(p.UseCases) }

// ExampleList decodes the stored examples, preserving order.
func (p *Prompt) ExampleList() []PromptExample {
	if p.Examples == "" {
		return nil
	}
	var examples []PromptExample
	if err := json.Unmarshal([]byte(p.Examples), &examples); err != nil {
		return nil
	}
	return examples
}

// promptJSON is the API representation with tag sets expanded.
type promptJSON struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	PromptText  string          `json:"prompt_text"`
	AISystems   []string        `json:"ai_systems"`
	Categories  []string        `json:"categories"`
	Techniques  []string        `json:"techniques"`
	Tags        []string        `json:"tags"`
	UseCases    []string        `json:"use_cases"`
	Examples    []PromptExample `json:"examples"`
	Author      string          `json:"author"`
	AuthorEmail string          `json:"author_email,omitempty"`
	OwnerID     uint            `json:"owner_id"`
	Rating      float64         `json:"rating"`
	RatingCount int             `json:"rating_count"`
	ViewCount   int             `json:"view_count"`
	LikeCount   int             `json:"like_count"`
	Featured    bool            `json:"featured"`
	Verified    bool            `json:"verified"`
	IsPublic    bool            `json:"is_public"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MarshalJSON expands the stored JSON columns into real arrays.
func (p Prompt) MarshalJSON() ([]byte, error) {
	out := promptJSON{
		ID:          p.PublicID,
		Title:       p.Title,
		Description: p.Description,
		PromptText:  p.PromptText,
		AISystems:   p.AISystemList(),
		Categories:  p.CategoryList(),
		Techniques:  p.TechniqueList(),
		Tags:        p.TagList(),
		UseCases:    p.UseCaseList(),
		Examples:    p.ExampleList(),
		Author:      p.Author,
		AuthorEmail: p.AuthorEmail,
		OwnerID:     p.OwnerID,
		Rating:      p.Rating,
		RatingCount: p.RatingCount,
		ViewCount:   p.ViewCount,
		LikeCount:   p.LikeCount,
		Featured:    p.Featured,
		Verified:    p.Verified,
		IsPublic:    p.IsPublic,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	return json.Marshal(out)
}
