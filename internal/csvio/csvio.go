// Package csvio maps questions to and from flat CSV rows. Shared answers are
// written as the title of the linked question and re-linked by title on import.
package csvio

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"prepdeck/internal/link"
	"prepdeck/internal/model"
)

// Header is the column order written on export.
var Header = []string{"title", "content", "linkedQuestionTitle", "tags"}

var (
	titleColumns   = []string{"title", "question"}
	contentColumns = []string{"content", "answer"}
	linkColumns    = []string{"linkedquestiontitle"}
	tagColumns     = []string{"tags"}
)

const tagSeparator = ";"

// FileName returns interview-questions-<ISO 8601 UTC with ':' and '.' as '-'>.csv.
func FileName(now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "interview-questions-" + ts + ".csv"
}

// Export writes a header and one row per question, quoting every field.
func Export(w io.Writer, l link.Lookup, qs []model.Question) error {
	qw := newQuotedWriter(w)
	if err := qw.Write(Header); err != nil {
		return err
	}
	for _, q := range qs {
		linkedTitle := ""
		if q.IsLinked() {
			if target, ok := l.Get(q.LinkedID()); ok {
				linkedTitle = target.Title
			}
		}
		row := []string{q.Title, q.Content, linkedTitle, strings.Join(q.Tags, tagSeparator)}
		if err := qw.Write(row); err != nil {
			return err
		}
	}
	return qw.Flush()
}

// ImportOptions tune Import. Zero values pick time.Now and model.NewID.
type ImportOptions struct {
	Now   func() time.Time
	NewID func() string
}

type provisional struct {
	q           model.Question
	linkedTitle string
}

// Import parses r into a batch of new questions. It either returns every row
// or a *model.ParseError and no questions.
//
// Pass one builds a question per row under a fresh id. Pass two points each row
// that names a linkedQuestionTitle at the first other row of the same file with
// that exact title and clears its content; rows whose title finds no match keep
// their content.
func Import(r io.Reader, opts ImportOptions) ([]model.Question, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return model.NewID(opts.Now()) }
	}

	header, rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &model.ParseError{Reason: "No data found in the CSV file"}
	}
	cols := newColumns(header)
	if cols.first(rows[0], titleColumns) == "" {
		return nil, &model.ParseError{Reason: `CSV must contain a column named "title", "Title", "question", or "Question"`}
	}

	now := opts.Now()
	seen := map[string]struct{}{}
	batch := make([]provisional, 0, len(rows))
	for i, row := range rows {
		title := strings.TrimSpace(cols.first(row, titleColumns))
		if title == "" {
			return nil, &model.ParseError{Row: i + 1, Reason: "missing title"}
		}
		id := model.UniqueID(opts.NewID, func(id string) bool {
			_, ok := seen[id]
			return ok
		})
		seen[id] = struct{}{}
		batch = append(batch, provisional{
			q: model.Question{
				ID:        id,
				Title:     title,
				Content:   cols.first(row, contentColumns),
				Tags:      model.NormalizeTags(strings.Split(cols.first(row, tagColumns), tagSeparator)),
				CreatedAt: now,
			},
			linkedTitle: strings.TrimSpace(cols.first(row, linkColumns)),
		})
	}

	out := make([]model.Question, len(batch))
	for i, p := range batch {
		q := p.q
		if p.linkedTitle != "" {
			for j, other := range batch {
				if j != i && other.q.Title == p.linkedTitle {
					q.LinkedAnswerID = model.StringPtr(other.q.ID)
					q.Content = ""
					break
				}
			}
		}
		out[i] = q
	}
	return out, nil
}

func readRows(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, &model.ParseError{Reason: "No data found in the CSV file"}
	}
	if err != nil {
		return nil, nil, &model.ParseError{Reason: "Error parsing CSV", Err: err}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, &model.ParseError{Row: n, Reason: "Error parsing CSV", Err: err}
		}
		if blank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// columns maps lower-cased header names to their first position.
type columns map[string]int

func newColumns(header []string) columns {
	c := make(columns, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := c[key]; !dup {
			c[key] = i
		}
	}
	return c
}

// first returns the first non-empty value among the aliases.
func (c columns) first(row []string, aliases []string) string {
	for _, a := range aliases {
		i, ok := c[a]
		if !ok || i >= len(row) {
			continue
		}
		if v := row[i]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
