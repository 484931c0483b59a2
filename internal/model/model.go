package model

import (
	"strings"
	"time"
)

// Question is a single interview question. A question either carries its own
// answer in Content or borrows one from another question via LinkedAnswerID.
type Question struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Tags           []string   `json:"tags"`
	LinkedAnswerID *string    `json:"linkedAnswerId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// IsLinked reports whether q delegates its answer to another question.
func (q Question) IsLinked() bool {
	return q.LinkedAnswerID != nil && *q.LinkedAnswerID != ""
}

// LinkedID returns the linked question id or "".
func (q Question) LinkedID() string {
	if q.LinkedAnswerID == nil {
		return ""
	}
	return *q.LinkedAnswerID
}

// HasTag is an exact, case-sensitive match.
func (q Question) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// LastTouched is UpdatedAt when set, CreatedAt otherwise.
func (q Question) LastTouched() time.Time {
	if q.UpdatedAt != nil {
		return *q.UpdatedAt
	}
	return q.CreatedAt
}

// Clone returns a copy that shares no slices or pointers with q.
func (q Question) Clone() Question {
	out := q
	if q.Tags != nil {
		out.Tags = append([]string(nil), q.Tags...)
	}
	if q.LinkedAnswerID != nil {
		id := *q.LinkedAnswerID
		out.LinkedAnswerID = &id
	}
	if q.UpdatedAt != nil {
		ts := *q.UpdatedAt
		out.UpdatedAt = &ts
	}
	return out
}

// Input is the payload of a create.
type Input struct {
	Title          string
	Content        string
	Tags           []string
	LinkedAnswerID string
}

// Patch is a shallow merge over an existing question. Nil fields are left
// untouched. Link set to "" removes the link; any other value links to that id.
type Patch struct {
	Title   *string
	Content *string
	Tags    *[]string
	Link    *string
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.Link == nil
}

func StringPtr(s string) *string { return &s }

func TagsPtr(tags []string) *[]string { return &tags }

// NormalizeTags trims every tag, drops empties and collapses duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitTags parses a tag list typed or stored as text. Both ';' and ',' separate.
func SplitTags(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	return NormalizeTags(parts)
}
