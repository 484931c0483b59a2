package csvio

import (
	"bufio"
	"io"
	"strings"
)

// quotedWriter writes CSV with every field quoted and CRLF line endings.
// encoding/csv only quotes fields that need it.
type quotedWriter struct {
	w *bufio.Writer
}

func newQuotedWriter(w io.Writer) *quotedWriter {
	return &quotedWriter{w: bufio.NewWriter(w)}
}

func (q *quotedWriter) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if err := q.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := q.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := q.w.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
			return err
		}
		if err := q.w.WriteByte('"'); err != nil {
			return err
		}
	}
	_, err := q.w.WriteString("\r\n")
	return err
}

func (q *quotedWriter) Flush() error {
	return q.w.Flush()
}
