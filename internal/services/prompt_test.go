package services

import (
	"math"
	"sync"
	"testing"

	"github.com/prompthive/prompthive/internal/models"
)

func submission(title string) *PromptSubmission {
	return &PromptSubmission{
		Title:       title,
		Description: "a test prompt",
		PromptText:  "act as a tester",
		AISystems:   []string{"gpt-4"},
		Categories:  []string{"coding"},
		Author:      "Test Author",
	}
}

func TestPromptCreate_Validation(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	testCases := []struct {
		name   string
		mutate func(*PromptSubmission)
	}{
		{"missing title", func(s *PromptSubmission) { s.Title = "  " }},
		{"missing description", func(s *PromptSubmission) { s.Description = "" }},
		{"missing prompt text", func(s *PromptSubmission) { s.PromptText = "" }},
		{"missing ai systems", func(s *PromptSubmission) { s.AISystems = nil }},
		{"missing categories", func(s *PromptSubmission) { s.Categories = nil }},
		{"missing author", func(s *PromptSubmission) { s.Author = "" }},
	}

	for _, tc := range testCases {
		sub := submission("valid title")
		tc.mutate(sub)
		if _, err := svc.Create(1, 10, sub); err == nil {
			t.Errorf("%s: expected validation error, got none", tc.name)
		}
	}
}

func TestPromptCreate_Defaults(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	prompt, err := svc.Create(1, 10, submission("fresh"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if prompt.PublicID == "" {
		t.Error("PublicID should be assigned")
	}
	if prompt.Status != models.PromptStatusPublished {
		t.Errorf("Status = %q, expected published", prompt.Status)
	}
	if prompt.Rating != 0 || prompt.RatingCount != 0 || prompt.ViewCount != 0 || prompt.LikeCount != 0 {
		t.Error("counters must start at zero")
	}
}

func TestPromptCreate_QuotaEnforced(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(1, 3, submission("prompt")); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}

	if _, err := svc.Create(1, 3, submission("over quota")); err == nil {
		t.Error("expected quota error on 4th prompt, got none")
	}

	// A different owner is unaffected.
	if _, err := svc.Create(2, 3, submission("other owner")); err != nil {
		t.Errorf("other owner should not be blocked: %v", err)
	}
}

func TestPromptCreate_ArchivedDoNotCountAgainstQuota(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	p, err := svc.Create(1, 1, submission("first"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(1, 1, submission("blocked")); err == nil {
		t.Fatal("expected quota error")
	}

	if err := svc.Archive(p.PublicID, 1, false); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if _, err := svc.Create(1, 1, submission("replacement")); err != nil {
		t.Errorf("archived prompt still counted against quota: %v", err)
	}
}

func TestPromptGet_ViewCounting(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	p, _ := svc.Create(1, 10, submission("viewed"))

	// Internal fetches leave the counter alone.
	for i := 0; i < 3; i++ {
		if _, err := svc.GetByPublicID(p.PublicID, false); err != nil {
			t.Fatalf("internal fetch failed: %v", err)
		}
	}
	got, _ := svc.GetByPublicID(p.PublicID, false)
	if got.ViewCount != 0 {
		t.Errorf("ViewCount = %d after internal fetches, expected 0", got.ViewCount)
	}

	// View-counted fetches bump it once each.
	for i := 0; i < 5; i++ {
		if _, err := svc.GetByPublicID(p.PublicID, true); err != nil {
			t.Fatalf("counted fetch failed: %v", err)
		}
	}
	got, _ = svc.GetByPublicID(p.PublicID, false)
	if got.ViewCount != 5 {
		t.Errorf("ViewCount = %d, expected 5", got.ViewCount)
	}
}

func TestPromptGet_NotFound(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	if _, err := svc.GetByPublicID("no-such-id", true); err == nil {
		t.Error("expected not-found error for counted fetch")
	}
	if _, err := svc.GetByPublicID("no-such-id", false); err == nil {
		t.Error("expected not-found error for internal fetch")
	}
}

func TestPromptRate_RunningAverage(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	p, _ := svc.Create(1, 10, submission("rated"))

	scores := []int{5, 3, 4, 4}
	for _, s := range scores {
		if _, err := svc.Rate(p.PublicID, s); err != nil {
			t.Fatalf("Rate(%d) failed: %v", s, err)
		}
	}

	got, _ := svc.GetByPublicID(p.PublicID, false)
	if got.RatingCount != len(scores) {
		t.Errorf("RatingCount = %d, expected %d", got.RatingCount, len(scores))
	}
	if math.Abs(got.Rating-4.0) > 1e-9 {
		t.Errorf("Rating = %v, expected 4.0", got.Rating)
	}
}

func TestPromptRate_Bounds(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))
	p, _ := svc.Create(1, 10, submission("bounded"))

	for _, score := range []int{0, -1, 6, 100} {
		if _, err := svc.Rate(p.PublicID, score); err == nil {
			t.Errorf("Rate(%d): expected error, got none", score)
		}
	}

	got, _ := svc.GetByPublicID(p.PublicID, false)
	if got.RatingCount != 0 {
		t.Errorf("rejected ratings must not touch the counter, RatingCount = %d", got.RatingCount)
	}
}

func TestPromptRate_ConcurrentVotesAllCounted(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))
	p, _ := svc.Create(1, 10, submission("contended"))

	const voters = 20
	var wg sync.WaitGroup
	wg.Add(voters)
	for i := 0; i < voters; i++ {
		go func() {
			defer wg.Done()
			svc.Rate(p.PublicID, 4)
		}()
	}
	wg.Wait()

	got, _ := svc.GetByPublicID(p.PublicID, false)
	if got.RatingCount != voters {
		t.Errorf("RatingCount = %d, expected %d (votes lost under concurrency)", got.RatingCount, voters)
	}
	if math.Abs(got.Rating-4.0) > 1e-6 {
		t.Errorf("Rating = %v, expected 4.0", got.Rating)
	}
}

func TestPromptUpdate_OwnerOnly(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))
	p, _ := svc.Create(1, 10, submission("owned"))

	if _, err := svc.Update(p.PublicID, 2, false, map[string]interface{}{"title": "stolen"}); err == nil {
		t.Error("non-owner edit should be rejected")
	}

	updated, err := svc.Update(p.PublicID, 2, true, map[string]interface{}{"title": "moderated"})
	if err != nil {
		t.Fatalf("admin edit failed: %v", err)
	}
	if updated.Title != "moderated" {
		t.Errorf("Title = %q, expected %q", updated.Title, "moderated")
	}
}

func TestPromptUpdate_ImmutableFieldsStripped(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))
	p, _ := svc.Create(1, 10, submission("locked"))
	svc.Rate(p.PublicID, 5)

	updated, err := svc.Update(p.PublicID, 1, false, map[string]interface{}{
		"title":        "renamed",
		"rating":       0.0,
		"rating_count": 0,
		"view_count":   9999,
		"owner_id":     42,
		"public_id":    "hijacked",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Title != "renamed" {
		t.Errorf("Title = %q, expected %q", updated.Title, "renamed")
	}
	if updated.RatingCount != 1 || updated.Rating != 5.0 {
		t.Error("rating fields must be immutable through Update")
	}
	if updated.OwnerID != 1 || updated.PublicID != p.PublicID {
		t.Error("identity fields must be immutable through Update")
	}
}

func TestPromptArchive_HiddenFromSearch(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))
	p, _ := svc.Create(1, 10, submission("ephemeral"))

	result, _ := svc.Search(Filter{})
	if result.Total != 1 {
		t.Fatalf("Total = %d before archive, expected 1", result.Total)
	}

	if err := svc.Archive(p.PublicID, 1, false); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	result, _ = svc.Search(Filter{})
	if result.Total != 0 {
		t.Errorf("Total = %d after archive, expected 0", result.Total)
	}

	// Row still exists, only the status changed.
	got, err := svc.lookupByPublicID(p.PublicID)
	if err != nil {
		t.Fatalf("archived prompt should still exist in the store: %v", err)
	}
	if got.Status != models.PromptStatusArchived {
		t.Errorf("Status = %q, expected archived", got.Status)
	}
}

func TestPromptArchive_GoneFromCatalogPath(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))
	p, _ := svc.Create(1, 10, submission("retired"))

	if err := svc.Archive(p.PublicID, 1, false); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	// The known public ID must behave like a deleted record for every
	// anonymous operation.
	if _, err := svc.GetByPublicID(p.PublicID, true); err == nil {
		t.Error("archived prompt served through the counted detail fetch")
	}
	if _, err := svc.GetByPublicID(p.PublicID, false); err == nil {
		t.Error("archived prompt served through the catalog fetch")
	}
	if _, err := svc.Rate(p.PublicID, 5); err == nil {
		t.Error("archived prompt accepted a rating")
	}
	if _, err := svc.Like(p.PublicID); err == nil {
		t.Error("archived prompt accepted a like")
	}

	got, _ := svc.lookupByPublicID(p.PublicID)
	if got.ViewCount != 0 || got.RatingCount != 0 || got.LikeCount != 0 {
		t.Errorf("rejected operations mutated counters: views=%d ratings=%d likes=%d",
			got.ViewCount, got.RatingCount, got.LikeCount)
	}
}

func TestPromptDraft_NotInCatalogButOwnerEditable(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	sub := submission("work in progress")
	sub.Draft = true
	p, _ := svc.Create(1, 10, sub)

	if _, err := svc.GetByPublicID(p.PublicID, true); err == nil {
		t.Error("draft served through the catalog fetch")
	}
	if _, err := svc.Like(p.PublicID); err == nil {
		t.Error("draft accepted a like")
	}

	// The owner keeps working on it through the owner path.
	updated, err := svc.Update(p.PublicID, 1, false, map[string]interface{}{"title": "almost done"})
	if err != nil {
		t.Fatalf("owner edit of a draft failed: %v", err)
	}
	if updated.Title != "almost done" {
		t.Errorf("Title = %q", updated.Title)
	}
}

func TestPromptSearch_ExcludesDrafts(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))

	sub := submission("draft")
	sub.Draft = true
	svc.Create(1, 10, sub)
	svc.Create(1, 10, submission("live"))

	result, _ := svc.Search(Filter{})
	if result.Total != 1 {
		t.Fatalf("Total = %d, expected 1 (drafts are not public)", result.Total)
	}
	if result.Prompts[0].Title != "live" {
		t.Errorf("matched %q, expected %q", result.Prompts[0].Title, "live")
	}
}

func TestPromptLike(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))
	p, _ := svc.Create(1, 10, submission("likable"))

	for i := 0; i < 3; i++ {
		if _, err := svc.Like(p.PublicID); err != nil {
			t.Fatalf("Like failed: %v", err)
		}
	}

	got, _ := svc.GetByPublicID(p.PublicID, false)
	if got.LikeCount != 3 {
		t.Errorf("LikeCount = %d, expected 3", got.LikeCount)
	}
}

func TestPromptModerationFlags(t *testing.T) {
	svc := NewPromptService(setupTestDB(t))
	p, _ := svc.Create(1, 10, submission("flagged"))

	if err := svc.SetFeatured(p.PublicID, true); err != nil {
		t.Fatalf("SetFeatured failed: %v", err)
	}
	if err := svc.SetVerified(p.PublicID, true); err != nil {
		t.Fatalf("SetVerified failed: %v", err)
	}

	got, _ := svc.GetByPublicID(p.PublicID, false)
	if !got.Featured || !got.Verified {
		t.Error("moderation flags not persisted")
	}

	if err := svc.SetFeatured("missing", true); err == nil {
		t.Error("expected not-found for missing prompt")
	}
}
