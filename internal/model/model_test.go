package model

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDFormat(t *testing.T) {
	now := time.UnixMilli(1710000000123)
	id := NewID(now)
	assert.Regexp(t, regexp.MustCompile(`^1710000000123-[0-9a-f]{10}$`), id)
	assert.NotEqual(t, id, NewID(now))
}

func TestUniqueIDSkipsTakenAndEmpty(t *testing.T) {
	seq := []string{"", "a", "b"}
	i := 0
	gen := func() string { id := seq[i]; i++; return id }
	id := UniqueID(gen, func(id string) bool { return id == "a" })
	assert.Equal(t, "b", id)
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"go", "basics"}, NormalizeTags([]string{" go ", "", "basics", "go"}))
	assert.Equal(t, []string{"go", "basics", "sql"}, SplitTags("go; basics,sql;;"))
	assert.Equal(t, []string{}, SplitTags(""))
}

func TestQuestionHelpers(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := Question{ID: "1", Title: "x", Tags: []string{"go"}, CreatedAt: created}
	assert.False(t, q.IsLinked())
	assert.Equal(t, "", q.LinkedID())
	assert.Equal(t, created, q.LastTouched())

	q.LinkedAnswerID = StringPtr("")
	assert.False(t, q.IsLinked())

	updated := created.Add(time.Hour)
	q.LinkedAnswerID = StringPtr("2")
	q.UpdatedAt = &updated
	assert.True(t, q.IsLinked())
	assert.True(t, q.HasTag("go"))
	assert.Equal(t, updated, q.LastTouched())

	c := q.Clone()
	c.Tags[0] = "sql"
	*c.LinkedAnswerID = "3"
	assert.Equal(t, "go", q.Tags[0])
	assert.Equal(t, "2", q.LinkedID())
}

func TestErrorsClassify(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("save: %w", &PersistenceError{Op: "update", Err: base})

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "update", pe.Op)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "persist update: disk full", pe.Error())

	assert.Equal(t, "title is required", (&ValidationError{Field: "title"}).Error())
	assert.Equal(t, "row 3: missing title", (&ParseError{Row: 3, Reason: "missing title"}).Error())
	assert.Equal(t, `question "x" not found`, (&NotFoundError{ID: "x"}).Error())
}
