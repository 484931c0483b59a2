// Package store owns the question collection. All mutations run on the
// caller's goroutine and persist the whole collection before returning; the
// store is not safe for concurrent use.
package store

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"prepdeck/internal/logger"
	"prepdeck/internal/model"
)

// Persister writes the full collection to durable storage.
type Persister interface {
	SaveAll(questions []model.Question) error
}

// clearer is implemented by persisters that can drop the slot entirely.
type clearer interface {
	Clear() error
}

type Store struct {
	questions []model.Question
	persist   Persister
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the id source. Collisions are still re-drawn.
func WithIDs(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New returns a store seeded with initial, typically the result of a load.
// Records repeating an earlier id are dropped.
func New(p Persister, initial []model.Question, opts ...Option) *Store {
	s := &Store{
		persist: p,
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newID == nil {
		s.newID = func() string { return model.NewID(s.now()) }
	}

	seen := make(map[string]struct{}, len(initial))
	for _, q := range initial {
		if _, dup := seen[q.ID]; dup || q.ID == "" {
			s.log.Warn("dropping stored question with duplicate or empty id", logger.String("id", q.ID))
			continue
		}
		seen[q.ID] = struct{}{}
		s.questions = append(s.questions, q.Clone())
	}
	return s
}

func (s *Store) Len() int { return len(s.questions) }

// Get returns a copy of the question with id.
func (s *Store) Get(id string) (model.Question, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Question{}, false
	}
	return s.questions[i].Clone(), true
}

// List returns copies of all questions in insertion order.
func (s *Store) List() []model.Question {
	out := make([]model.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// LinkCandidates lists the questions id may borrow an answer from: every other
// question that has its own non-empty answer and is not linked itself.
func (s *Store) LinkCandidates(id string) []model.Question {
	var out []model.Question
	for _, q := range s.questions {
		if q.ID == id || q.IsLinked() || strings.TrimSpace(q.Content) == "" {
			continue
		}
		out = append(out, q.Clone())
	}
	return out
}

func (s *Store) Create(in model.Input) (model.Question, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Question{}, &model.ValidationError{Field: "title"}
	}

	now := s.now()
	q := model.Question{
		ID:        model.UniqueID(s.newID, s.exists),
		Title:     title,
		Content:   in.Content,
		Tags:      model.NormalizeTags(in.Tags),
		CreatedAt: now,
	}
	if in.LinkedAnswerID != "" {
		if !s.exists(in.LinkedAnswerID) {
			return model.Question{}, &model.NotFoundError{ID: in.LinkedAnswerID}
		}
		q.LinkedAnswerID = model.StringPtr(in.LinkedAnswerID)
		q.Content = ""
	}

	s.questions = append(s.questions, q)
	return q.Clone(), s.save("create")
}

// Update merges p over the question with id and stamps UpdatedAt.
//
// Link and content exclude each other: setting a link clears the content, and
// setting non-empty content on a linked question removes its link.
func (s *Store) Update(id string, p model.Patch) (model.Question, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Question{}, &model.NotFoundError{ID: id}
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return model.Question{}, &model.ValidationError{Field: "title"}
	}
	if p.Link != nil && *p.Link != "" {
		if *p.Link == id {
			return model.Question{}, &model.ValidationError{Field: "linkedAnswerId", Reason: "a question cannot share its own answer"}
		}
		if !s.exists(*p.Link) {
			return model.Question{}, &model.NotFoundError{ID: *p.Link}
		}
	}

	q := s.questions[i].Clone()
	if p.Title != nil {
		q.Title = strings.TrimSpace(*p.Title)
	}
	if p.Tags != nil {
		q.Tags = model.NormalizeTags(*p.Tags)
	}
	if p.Content != nil {
		q.Content = *p.Content
	}
	switch {
	case p.Link != nil && *p.Link == "":
		q.LinkedAnswerID = nil
	case p.Link != nil:
		q.LinkedAnswerID = model.StringPtr(*p.Link)
		q.Content = ""
	case p.Content != nil && strings.TrimSpace(*p.Content) != "" && q.IsLinked():
		q.LinkedAnswerID = nil
	}
	now := s.now()
	q.UpdatedAt = &now

	s.questions[i] = q
	return q.Clone(), s.save("update")
}

// Delete removes the question with id after unlinking every question that
// shares its answer. The collection is persisted once.
func (s *Store) Delete(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return &model.NotFoundError{ID: id}
	}

	now := s.now()
	repaired := 0
	kept := make([]model.Question, 0, len(s.questions)-1)
	for _, q := range s.questions {
		if q.ID == id {
			continue
		}
		if q.LinkedID() == id {
			q.LinkedAnswerID = nil
			stamp := now
			q.UpdatedAt = &stamp
			repaired++
		}
		kept = append(kept, q)
	}
	s.questions = kept

	s.log.Info("question deleted", logger.String("id", id), logger.Int("unlinked", repaired))
	return s.save("delete")
}

// Append adds a batch in one step, as an import does. Ids that collide with the
// collection or with earlier batch entries are replaced, and links inside the
// batch follow the replacement. Links to ids that exist neither in the batch
// nor in the collection are dropped. Nothing is inserted if any record lacks a
// title.
func (s *Store) Append(batch []model.Question) ([]model.Question, error) {
	for i, q := range batch {
		if strings.TrimSpace(q.Title) == "" {
			return nil, &model.ValidationError{Field: "title", Reason: "missing in batch record " + strconv.Itoa(i+1)}
		}
	}

	now := s.now()
	final := make(map[string]struct{}, len(batch))
	taken := func(id string) bool {
		if _, ok := final[id]; ok {
			return true
		}
		return s.exists(id)
	}
	remap := make(map[string]string, len(batch))
	added := make([]model.Question, 0, len(batch))
	for _, in := range batch {
		q := in.Clone()
		q.Title = strings.TrimSpace(q.Title)
		q.Tags = model.NormalizeTags(q.Tags)
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		orig := q.ID
		if orig == "" || taken(orig) {
			q.ID = model.UniqueID(s.newID, taken)
		}
		if _, ok := remap[orig]; !ok && orig != "" {
			remap[orig] = q.ID
		}
		final[q.ID] = struct{}{}
		added = append(added, q)
	}

	for i := range added {
		q := &added[i]
		if !q.IsLinked() {
			continue
		}
		target, ok := remap[q.LinkedID()]
		switch {
		case ok && target != q.ID:
			q.LinkedAnswerID = model.StringPtr(target)
			q.Content = ""
		case !ok && s.exists(q.LinkedID()):
			q.Content = ""
		default:
			q.LinkedAnswerID = nil
		}
	}

	s.questions = append(s.questions, added...)
	s.log.Info("questions appended", logger.Int("count", len(added)))

	out := make([]model.Question, len(added))
	for i, q := range added {
		out[i] = q.Clone()
	}
	return out, s.save("append")
}

// Clear drops every question and the durable slot with them.
func (s *Store) Clear() error {
	s.questions = nil
	if c, ok := s.persist.(clearer); ok {
		if err := c.Clear(); err != nil {
			return s.wrap("clear", err)
		}
		return nil
	}
	return s.save("clear")
}

func (s *Store) save(op string) error {
	if s.persist == nil {
		return nil
	}
	if err := s.persist.SaveAll(s.List()); err != nil {
		s.log.Error("failed to persist questions", logger.String("op", op), logger.Error(err))
		return s.wrap(op, err)
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	var pe *model.PersistenceError
	if errors.As(err, &pe) {
		return pe
	}
	return &model.PersistenceError{Op: op, Err: err}
}

func (s *Store) exists(id string) bool {
	return s.indexOf(id) >= 0
}

func (s *Store) indexOf(id string) int {
	for i := range s.questions {
		if s.questions[i].ID == id {
			return i
		}
	}
	return -1
}
