package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prompthive/prompthive/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&Prompt{},
		&Membership{},
		&UsageCounter{},
		&LLMConfig{},
		&AIUsageLog{},
		&AuditLog{},
		&WebhookEvent{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates starter marketplace content if the prompts table
// is empty. Seeded prompts belong to the system account (OwnerID 0) and are
// marked verified.
func SeedDefaultData() error {
	var promptCount int64
	DB.Model(&Prompt{}).Where("verified = ?", true).Count(&promptCount)
	if promptCount > 0 {
		return nil
	}

	seed := []Prompt{
		{
			PublicID:    uuid.New().String(),
			Title:       "Senior Code Reviewer",
			Description: "Reviews a code diff for correctness, security and maintainability, returning the top issues with concrete fixes.",
			PromptText: `You are a senior software engineer performing a code review.
Review the following code for correctness, security risks and maintainability.
List the three most important issues, each with a concrete suggested fix.

Code:
{{code}}`,
			AISystems:  EncodeStringList([]string{"gpt-4", "claude"}),
			Categories: EncodeStringList([]string{"coding"}),
			Techniques: EncodeStringList([]string{"role-based"}),
			Tags:       EncodeStringList([]string{"code-review", "engineering"}),
			UseCases:   EncodeStringList([]string{"pull request review"}),
			Author:     "PromptHive",
			Featured:   true,
			Verified:   true,
			IsPublic:   true,
			Status:     PromptStatusPublished,
		},
		{
			PublicID:    uuid.New().String(),
			Title:       "Structured Meeting Summarizer",
			Description: "Turns a raw meeting transcript into decisions, action items and open questions.",
			PromptText: `Summarize the meeting transcript below into three sections:
1. Decisions made
2. Action items (with owner if mentioned)
3. Open questions

Transcript:
{{transcript}}`,
			AISystems:  EncodeStringList([]string{"gpt-4", "claude", "gemini"}),
			Categories: EncodeStringList([]string{"productivity", "writing"}),
			Techniques: EncodeStringList([]string{"structured"}),
			Tags:       EncodeStringList([]string{"summarization", "meetings"}),
			UseCases:   EncodeStringList([]string{"meeting notes"}),
			Author:     "PromptHive",
			Featured:   true,
			Verified:   true,
			IsPublic:   true,
			Status:     PromptStatusPublished,
		},
		{
			PublicID:    uuid.New().String(),
			Title:       "Step-by-Step Math Tutor",
			Description: "Explains a math problem one reasoning step at a time, checking understanding before moving on.",
			PromptText: `You are a patient math tutor. Solve the problem below step by step.
After each step, briefly explain why the step is valid before continuing.

Problem:
{{problem}}`,
			AISystems:  EncodeStringList([]string{"gpt-4"}),
			Categories: EncodeStringList([]string{"education"}),
			Techniques: EncodeStringList([]string{"chain-of-thought"}),
			Tags:       EncodeStringList([]string{"math", "tutoring"}),
			UseCases:   EncodeStringList([]string{"homework help"}),
			Author:     "PromptHive",
			Verified:   true,
			IsPublic:   true,
			Status:     PromptStatusPublished,
		},
	}

	for i := range seed {
		if err := DB.Create(&seed[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
