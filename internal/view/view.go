// Package view turns the question collection into the ordered list shown to
// the user. Everything here is a pure function of its arguments.
package view

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"prepdeck/internal/link"
	"prepdeck/internal/model"
)

type SortMode string

const (
	SortAnswersFirst SortMode = "answersFirst"
	SortNewest       SortMode = "newest"
	SortOldest       SortMode = "oldest"
	SortLastUpdated  SortMode = "lastUpdated"
)

// SortModes lists every mode in selector order.
var SortModes = []SortMode{SortAnswersFirst, SortNewest, SortOldest, SortLastUpdated}

func ParseSortMode(s string) (SortMode, error) {
	for _, m := range SortModes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q (want one of %s)", s, joinModes())
}

// Next cycles to the following mode.
func (m SortMode) Next() SortMode {
	i := slices.Index(SortModes, m)
	return SortModes[(i+1)%len(SortModes)]
}

func (m SortMode) Label() string {
	switch m {
	case SortAnswersFirst:
		return "Answers first"
	case SortNewest:
		return "Newest"
	case SortOldest:
		return "Oldest"
	case SortLastUpdated:
		return "Last updated"
	default:
		return string(m)
	}
}

// Filter is the user's current search, tag selection and sort.
type Filter struct {
	Search string
	Tags   []string
	Sort   SortMode
}

// IsZero reports whether neither search nor tags narrow the view.
func (f Filter) IsZero() bool {
	return f.Search == "" && len(f.Tags) == 0
}

// Apply filters qs by f and sorts the survivors stably. l resolves shared
// answers for the answersFirst mode; it should see the whole collection, not
// only the filtered slice.
func Apply(l link.Lookup, qs []model.Question, f Filter) []model.Question {
	out := make([]model.Question, 0, len(qs))
	for _, q := range qs {
		if Matches(q, f.Search, f.Tags) {
			out = append(out, q)
		}
	}
	Sort(l, out, f.Sort)
	return out
}

// Matches is a case-insensitive title substring test combined with an AND
// over tags.
func Matches(q model.Question, search string, tags []string) bool {
	if !strings.Contains(strings.ToLower(q.Title), strings.ToLower(search)) {
		return false
	}
	for _, t := range tags {
		if !q.HasTag(t) {
			return false
		}
	}
	return true
}

// Sort orders qs in place. Equal keys keep their input order. An unknown mode
// leaves qs untouched.
func Sort(l link.Lookup, qs []model.Question, mode SortMode) {
	switch mode {
	case SortAnswersFirst:
		answered := make(map[string]bool, len(qs))
		for _, q := range qs {
			answered[q.ID] = link.HasAnswer(l, q)
		}
		sort.SliceStable(qs, func(i, j int) bool {
			ai, aj := answered[qs[i].ID], answered[qs[j].ID]
			if ai != aj {
				return ai
			}
			return qs[i].CreatedAt.After(qs[j].CreatedAt)
		})
	case SortNewest:
		sort.SliceStable(qs, func(i, j int) bool {
			return qs[i].CreatedAt.After(qs[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(qs, func(i, j int) bool {
			return qs[i].CreatedAt.Before(qs[j].CreatedAt)
		})
	case SortLastUpdated:
		sort.SliceStable(qs, func(i, j int) bool {
			return qs[i].LastTouched().After(qs[j].LastTouched())
		})
	}
}

// AvailableTags returns every distinct tag in qs, sorted.
func AvailableTags(qs []model.Question) []string {
	seen := map[string]struct{}{}
	for _, q := range qs {
		for _, t := range q.Tags {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// ToggleTag adds tag to selected or removes it when already present.
func ToggleTag(selected []string, tag string) []string {
	if i := slices.Index(selected, tag); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), tag)
}

func joinModes() string {
	names := make([]string, len(SortModes))
	for i, m := range SortModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
