package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/prompthive/prompthive/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// One-off maintenance: early imports left some prompt rows without a
// public ID and with mixed-case label lists. Dry run by default; pass
// --update to write fixes.

type promptRow struct {
	ID         uint   `gorm:"primaryKey"`
	PublicID   string `gorm:"size:64"`
	Title      string `gorm:"size:200"`
	Categories string `gorm:"type:text"`
	Tags       string `gorm:"type:text"`
}

func (promptRow) TableName() string { return "prompts" }

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	default:
		dialector = sqlite.Open(cfg.Database.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	var rows []promptRow
	if err := db.Order("id").Find(&rows).Error; err != nil {
		fmt.Printf("Failed to read prompts: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d prompts\n\n", len(rows))

	update := len(os.Args) > 1 && os.Args[1] == "--update"
	fixed := 0

	for _, row := range rows {
		changes := map[string]interface{}{}

		if row.PublicID == "" {
			changes["public_id"] = uuid.New().String()
		}
		if normalized := normalizeLabels(row.Categories); normalized != row.Categories {
			changes["categories"] = normalized
		}
		if normalized := normalizeLabels(row.Tags); normalized != row.Tags {
			changes["tags"] = normalized
		}

		if len(changes) == 0 {
			continue
		}

		fmt.Printf("ID %d (%s): %d field(s) need fixing\n", row.ID, row.Title, len(changes))
		if !update {
			continue
		}

		if err := db.Model(&promptRow{}).Where("id = ?", row.ID).Updates(changes).Error; err != nil {
			fmt.Printf("Failed to update prompt %d: %v\n", row.ID, err)
			continue
		}
		fixed++
	}

	if update {
		fmt.Printf("\nDone, updated %d prompts\n", fixed)
	} else {
		fmt.Println("\nDry run only. To apply fixes, run: go run scripts/backfill_prompts.go --update")
	}
}

// normalizeLabels lowercases and trims every label in a JSON string array,
// dropping empties. Malformed input is returned unchanged.
func normalizeLabels(raw string) string {
	if raw == "" || raw == "[]" {
		return raw
	}

	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return raw
	}

	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if label != "" {
			out = append(out, label)
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return raw
	}
	return string(data)
}
