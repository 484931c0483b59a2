package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prepdeck/internal/link"
	"prepdeck/internal/model"
)

func at(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func ids(qs []model.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func apply(qs []model.Question, f Filter) []model.Question {
	return Apply(link.Index(qs), qs, f)
}

func TestEmptyCollectionGivesEmptyView(t *testing.T) {
	for _, m := range SortModes {
		assert.Empty(t, apply(nil, Filter{Sort: m}), m)
	}
}

func TestSortModesOnTwoQuestions(t *testing.T) {
	a := model.Question{ID: "A", Title: "A", Content: "answer", CreatedAt: at(1)}
	b := model.Question{ID: "B", Title: "B", CreatedAt: at(2)}
	qs := []model.Question{a, b}

	assert.Equal(t, []string{"A", "B"}, ids(apply(qs, Filter{Sort: SortAnswersFirst})))
	assert.Equal(t, []string{"A", "B"}, ids(apply(qs, Filter{Sort: SortOldest})))
	assert.Equal(t, []string{"B", "A"}, ids(apply(qs, Filter{Sort: SortNewest})))
}

func TestAnswersFirstUsesSharedAnswers(t *testing.T) {
	r := model.Question{ID: "R", Title: "R", Content: "shared", CreatedAt: at(1)}
	empty := model.Question{ID: "E", Title: "E", CreatedAt: at(3)}
	linked := model.Question{ID: "L", Title: "L", LinkedAnswerID: model.StringPtr("R"), CreatedAt: at(2)}
	qs := []model.Question{r, empty, linked}

	assert.Equal(t, []string{"L", "R", "E"}, ids(apply(qs, Filter{Sort: SortAnswersFirst})))
}

func TestAnswersFirstResolvesAgainstFullCollection(t *testing.T) {
	r := model.Question{ID: "R", Title: "hidden", Content: "shared", CreatedAt: at(1)}
	linked := model.Question{ID: "L", Title: "match linked", LinkedAnswerID: model.StringPtr("R"), CreatedAt: at(1)}
	bare := model.Question{ID: "B", Title: "match bare", CreatedAt: at(2)}
	qs := []model.Question{r, bare, linked}

	got := Apply(link.Index(qs), qs, Filter{Search: "match", Sort: SortAnswersFirst})
	assert.Equal(t, []string{"L", "B"}, ids(got))
}

func TestSortIsStableOnTies(t *testing.T) {
	var qs []model.Question
	for _, id := range []string{"1", "2", "3", "4"} {
		qs = append(qs, model.Question{ID: id, Title: id, CreatedAt: at(5)})
	}
	for _, m := range SortModes {
		assert.Equal(t, []string{"1", "2", "3", "4"}, ids(apply(qs, Filter{Sort: m})), m)
	}
}

func TestLastUpdatedFallsBackToCreated(t *testing.T) {
	upd := at(10)
	a := model.Question{ID: "A", Title: "A", CreatedAt: at(1), UpdatedAt: &upd}
	b := model.Question{ID: "B", Title: "B", CreatedAt: at(5)}
	c := model.Question{ID: "C", Title: "C", CreatedAt: at(3)}

	assert.Equal(t, []string{"A", "B", "C"}, ids(apply([]model.Question{c, b, a}, Filter{Sort: SortLastUpdated})))
}

func TestSearchIsCaseInsensitiveOnTitleOnly(t *testing.T) {
	hooks := model.Question{ID: "H", Title: "Explain React Hooks", CreatedAt: at(1)}
	body := model.Question{ID: "X", Title: "Closures", Content: "react", CreatedAt: at(2)}

	got := apply([]model.Question{hooks, body}, Filter{Search: "react", Sort: SortOldest})
	assert.Equal(t, []string{"H"}, ids(got))
}

func TestTagFilterIsConjunctive(t *testing.T) {
	r := model.Question{ID: "R", Title: "r", Tags: []string{"react"}, CreatedAt: at(1)}
	rr := model.Question{ID: "RR", Title: "rr", Tags: []string{"redux", "react"}, CreatedAt: at(2)}

	got := apply([]model.Question{r, rr}, Filter{Tags: []string{"react", "redux"}, Sort: SortOldest})
	assert.Equal(t, []string{"RR"}, ids(got))
}

func TestTagFilterIsCaseSensitive(t *testing.T) {
	q := model.Question{ID: "Q", Title: "q", Tags: []string{"Go"}}
	assert.Empty(t, apply([]model.Question{q}, Filter{Tags: []string{"go"}}))
}

func TestApplyDoesNotReorderInput(t *testing.T) {
	qs := []model.Question{{ID: "1", Title: "1", CreatedAt: at(1)}, {ID: "2", Title: "2", CreatedAt: at(2)}}
	_ = apply(qs, Filter{Sort: SortNewest})
	assert.Equal(t, []string{"1", "2"}, ids(qs))
}

func TestAvailableTags(t *testing.T) {
	qs := []model.Question{
		{Tags: []string{"redux", "go"}},
		{Tags: []string{"go", "algorithms"}},
		{},
	}
	assert.Equal(t, []string{"algorithms", "go", "redux"}, AvailableTags(qs))
	assert.Empty(t, AvailableTags(nil))
}

func TestParseSortModeAndCycle(t *testing.T) {
	m, err := ParseSortMode("LASTUPDATED")
	require.NoError(t, err)
	assert.Equal(t, SortLastUpdated, m)
	assert.Equal(t, SortAnswersFirst, m.Next())
	assert.Equal(t, SortNewest, SortAnswersFirst.Next())

	_, err = ParseSortMode("alphabetical")
	assert.Error(t, err)
}

func TestToggleTag(t *testing.T) {
	sel := ToggleTag(nil, "go")
	sel = ToggleTag(sel, "react")
	assert.Equal(t, []string{"go", "react"}, sel)
	assert.Equal(t, []string{"react"}, ToggleTag(sel, "go"))
	assert.Equal(t, []string{"go", "react"}, sel)
}
