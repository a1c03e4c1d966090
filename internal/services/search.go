package services

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/prompthive/prompthive/internal/models"
)

// SortOrder is the total order applied to filtered results.
type SortOrder string

const (
	SortRecent  SortOrder = "recent"  // createdAt descending
	SortPopular SortOrder = "popular" // viewCount descending
	SortRating  SortOrder = "rating"  // rating descending
)

// Filter describes a prompt search. Array fields are OR-within-field and
// AND-across-fields; an absent field places no constraint on that
// dimension.
type Filter struct {
	AISystems  []string
	Categories []string
	Techniques []string
	Tags       []string
	Search     string
	Featured   *bool
	SortBy     SortOrder
}

// filterQueryKeys are the only query parameters FilterFromQuery accepts.
// Each facet answers to both its singular and plural name.
var filterQueryKeys = map[string]bool{
	"search":     true,
	"aiSystem":   true,
	"aiSystems":  true,
	"category":   true,
	"categories": true,
	"technique":  true,
	"techniques": true,
	"tag":        true,
	"tags":       true,
	"featured":   true,
	"sortBy":     true,
}

// FilterFromQuery builds a Filter from URL query parameters. Unknown keys
// and unknown sort orders are rejected rather than silently ignored, so a
// typo'd filter never degrades into an unfiltered listing.
func FilterFromQuery(values url.Values) (Filter, error) {
	for key := range values {
		if !filterQueryKeys[key] {
			return Filter{}, fmt.Errorf("unknown filter parameter: %s", key)
		}
	}

	f := Filter{
		AISystems:  facetValues(values, "aiSystem", "aiSystems"),
		Categories: facetValues(values, "category", "categories"),
		Techniques: facetValues(values, "technique", "techniques"),
		Tags:       facetValues(values, "tag", "tags"),
		Search:     strings.TrimSpace(values.Get("search")),
	}

	if raw := values.Get("featured"); raw != "" {
		v := raw == "true"
		f.Featured = &v
	}

	if raw := values.Get("sortBy"); raw != "" {
		switch SortOrder(raw) {
		case SortRecent, SortPopular, SortRating:
			f.SortBy = SortOrder(raw)
		default:
			return Filter{}, fmt.Errorf("unknown sort order: %s", raw)
		}
	}

	return f, nil
}

// facetValues collects the raw values of every accepted key for one facet.
func facetValues(values url.Values, keys ...string) []string {
	var raw []string
	for _, k := range keys {
		raw = append(raw, values[k]...)
	}
	return splitMulti(raw)
}

// splitMulti flattens repeated and comma-separated query values into one
// trimmed list.
func splitMulti(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// FilterPrompts returns the subset of prompts matching every non-empty
// filter dimension, ordered by the filter's sort key. The input slice is
// not modified; ties keep input order.
func FilterPrompts(prompts []models.Prompt, f Filter) []models.Prompt {
	matched := make([]models.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if matchesFilter(&p, f) {
			matched = append(matched, p)
		}
	}
	sortPrompts(matched, f.SortBy)
	return matched
}

func matchesFilter(p *models.Prompt, f Filter) bool {
	if !hasAny(p.AISystemList(), f.AISystems) {
		return false
	}
	if !hasAny(p.CategoryList(), f.Categories) {
		return false
	}
	if !hasAny(p.TechniqueList(), f.Techniques) {
		return false
	}
	if !hasAny(p.TagList(), f.Tags) {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Search != "" && !matchesSearch(p, f.Search) {
		return false
	}
	return true
}

// hasAny reports whether have contains at least one of want. An empty want
// means no constraint. Comparison is case-insensitive.
func hasAny(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

// matchesSearch does a case-insensitive substring match against title,
// description, prompt text and tags.
func matchesSearch(p *models.Prompt, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(p.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.PromptText), term) {
		return true
	}
	for _, tag := range p.TagList() {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func sortPrompts(prompts []models.Prompt, order SortOrder) {
	switch order {
	case SortRecent:
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].CreatedAt.After(prompts[j].CreatedAt)
		})
	case SortPopular:
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].ViewCount > prompts[j].ViewCount
		})
	case SortRating:
		sort.SliceStable(prompts, func(i, j int) bool {
			return prompts[i].Rating > prompts[j].Rating
		})
	}
}
