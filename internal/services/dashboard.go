package services

import (
	"sort"

	"github.com/prompthive/prompthive/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type MarketplaceStats struct {
	TotalPrompts     int64   `json:"total_prompts"`
	PublishedPrompts int64   `json:"published_prompts"`
	FeaturedPrompts  int64   `json:"featured_prompts"`
	TotalViews       int64   `json:"total_views"`
	TotalLikes       int64   `json:"total_likes"`
	AverageRating    float64 `json:"average_rating"`
}

type CategoryStat struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type DashboardResponse struct {
	Stats         MarketplaceStats `json:"stats"`
	TopCategories []CategoryStat   `json:"top_categories"`
	Recent        []models.Prompt  `json:"recent"`
}

// GetStats aggregates marketplace-wide numbers plus the caller's most
// recent submissions context.
func (s *DashboardService) GetStats() (*DashboardResponse, error) {
	var stats MarketplaceStats

	s.db.Model(&models.Prompt{}).Count(&stats.TotalPrompts)
	s.db.Model(&models.Prompt{}).
		Where("status = ?", models.PromptStatusPublished).
		Count(&stats.PublishedPrompts)
	s.db.Model(&models.Prompt{}).
		Where("featured = ?", true).
		Count(&stats.FeaturedPrompts)

	type sums struct {
		Views  int64
		Likes  int64
		Rating float64
	}
	var agg sums
	s.db.Model(&models.Prompt{}).
		Select("COALESCE(SUM(view_count),0) as views, COALESCE(SUM(like_count),0) as likes, COALESCE(AVG(CASE WHEN rating_count > 0 THEN rating END),0) as rating").
		Scan(&agg)
	stats.TotalViews = agg.Views
	stats.TotalLikes = agg.Likes
	stats.AverageRating = agg.Rating

	// Category counts live in JSON columns, so aggregate in memory.
	var published []models.Prompt
	if err := s.db.
		Where("status = ?", models.PromptStatusPublished).
		Find(&published).Error; err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, p := range published {
		for _, cat := range p.CategoryList() {
			counts[cat]++
		}
	}
	top := make([]CategoryStat, 0, len(counts))
	for cat, n := range counts {
		top = append(top, CategoryStat{Category: cat, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Category < top[j].Category
	})
	if len(top) > 10 {
		top = top[:10]
	}

	var recent []models.Prompt
	if err := s.db.
		Where("status = ?", models.PromptStatusPublished).
		Order("created_at DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	return &DashboardResponse{
		Stats:         stats,
		TopCategories: top,
		Recent:        recent,
	}, nil
}
