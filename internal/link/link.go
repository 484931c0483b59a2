// Package link resolves the effective answer of a question, following at most
// one linkedAnswerId hop. A chain A -> B -> C resolves A to B's own content,
// which is empty when B is itself linked.
package link

import (
	"strings"

	"prepdeck/internal/model"
)

// UnknownTitle is shown when a link points at a question that no longer exists.
const UnknownTitle = "Unknown question"

// Lookup finds a question by id.
type Lookup interface {
	Get(id string) (model.Question, bool)
}

// Content returns the answer text to display for q.
func Content(l Lookup, q model.Question) string {
	if !q.IsLinked() {
		return q.Content
	}
	target, ok := l.Get(q.LinkedID())
	if !ok {
		return ""
	}
	return target.Content
}

// Title returns the title of the question q shares its answer with. ok is false
// when q is not linked. A dangling link yields UnknownTitle.
func Title(l Lookup, q model.Question) (title string, ok bool) {
	if !q.IsLinked() {
		return "", false
	}
	target, found := l.Get(q.LinkedID())
	if !found {
		return UnknownTitle, true
	}
	return target.Title, true
}

func HasAnswer(l Lookup, q model.Question) bool {
	return strings.TrimSpace(Content(l, q)) != ""
}

// Snapshot is an immutable id index over a slice of questions.
type Snapshot map[string]model.Question

func Index(qs []model.Question) Snapshot {
	s := make(Snapshot, len(qs))
	for _, q := range qs {
		s[q.ID] = q
	}
	return s
}

func (s Snapshot) Get(id string) (model.Question, bool) {
	q, ok := s[id]
	return q, ok
}
