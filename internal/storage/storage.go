// Package storage keeps the question collection in a single named slot of a
// key-value backend. The slot value is the JSON array of every question.
package storage

import (
	"context"
	"encoding/json"
	"errors"

	"prepdeck/internal/logger"
	"prepdeck/internal/model"
)

// DefaultKey is the slot name used when the configuration leaves it empty.
const DefaultKey = "interview-prep-questions"

// ErrNotFound is returned by Backend.Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a blob store addressed by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Slot binds one key of a backend to the question collection.
type Slot struct {
	backend Backend
	key     string
	log     logger.Logger
}

func NewSlot(b Backend, key string, log logger.Logger) *Slot {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Slot{backend: b, key: key, log: log}
}

func (s *Slot) Key() string { return s.key }

// LoadAll reads the collection. An absent slot or unparseable content yields an
// empty collection; only a failing backend is an error.
func (s *Slot) LoadAll(ctx context.Context) ([]model.Question, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []model.Question{}, nil
	}
	if err != nil {
		return []model.Question{}, &model.PersistenceError{Op: "load", Err: err}
	}

	var qs []model.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		s.log.Warn("stored questions are unreadable, starting empty",
			logger.String("key", s.key), logger.Error(err))
		return []model.Question{}, nil
	}
	if qs == nil {
		qs = []model.Question{}
	}
	return qs, nil
}

// SaveAll overwrites the slot with qs.
func (s *Slot) SaveAll(qs []model.Question) error {
	out := make([]model.Question, len(qs))
	for i, q := range qs {
		if q.Tags == nil {
			q.Tags = []string{}
		}
		out[i] = q
	}
	data, err := json.Marshal(out)
	if err != nil {
		return &model.PersistenceError{Op: "encode", Err: err}
	}
	if err := s.backend.Put(context.Background(), s.key, data); err != nil {
		return &model.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Clear removes the slot.
func (s *Slot) Clear() error {
	if err := s.backend.Delete(context.Background(), s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return &model.PersistenceError{Op: "clear", Err: err}
	}
	return nil
}
