package services

import (
	"testing"
)

func TestDashboardStats(t *testing.T) {
	db := setupTestDB(t)
	prompts := NewPromptService(db)

	a, _ := prompts.Create(1, 10, submission("first"))
	prompts.Create(1, 10, submission("second"))
	draft := submission("hidden draft")
	draft.Draft = true
	prompts.Create(1, 10, draft)

	prompts.SetFeatured(a.PublicID, true)
	prompts.Rate(a.PublicID, 4)
	prompts.Like(a.PublicID)
	prompts.GetByPublicID(a.PublicID, true)
	prompts.GetByPublicID(a.PublicID, true)

	svc := NewDashboardService(db)
	resp, err := svc.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if resp.Stats.TotalPrompts != 3 {
		t.Errorf("TotalPrompts = %d, expected 3", resp.Stats.TotalPrompts)
	}
	if resp.Stats.PublishedPrompts != 2 {
		t.Errorf("PublishedPrompts = %d, expected 2", resp.Stats.PublishedPrompts)
	}
	if resp.Stats.FeaturedPrompts != 1 {
		t.Errorf("FeaturedPrompts = %d, expected 1", resp.Stats.FeaturedPrompts)
	}
	if resp.Stats.TotalViews != 2 {
		t.Errorf("TotalViews = %d, expected 2", resp.Stats.TotalViews)
	}
	if resp.Stats.TotalLikes != 1 {
		t.Errorf("TotalLikes = %d, expected 1", resp.Stats.TotalLikes)
	}
	if resp.Stats.AverageRating != 4.0 {
		t.Errorf("AverageRating = %v, expected 4.0", resp.Stats.AverageRating)
	}
}

func TestDashboardTopCategories(t *testing.T) {
	db := setupTestDB(t)
	prompts := NewPromptService(db)

	coding := submission("a")
	coding.Categories = []string{"coding"}
	prompts.Create(1, 10, coding)

	both := submission("b")
	both.Categories = []string{"coding", "writing"}
	prompts.Create(1, 10, both)

	svc := NewDashboardService(db)
	resp, err := svc.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if len(resp.TopCategories) != 2 {
		t.Fatalf("got %d categories, expected 2", len(resp.TopCategories))
	}
	if resp.TopCategories[0].Category != "coding" || resp.TopCategories[0].Count != 2 {
		t.Errorf("top category = %+v, expected coding x2", resp.TopCategories[0])
	}
}
