// Package csvexport writes projected response rows as CSV for spreadsheet consumers.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"llmbroker/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// FullResponseColumn heads the column carrying each row's full response text.
const FullResponseColumn = "FullResponse"

// Writer wraps csv.Writer for exporting response rows. Columns are the full
// response followed by the configured output paths in order.
type Writer struct {
	csv   *csv.Writer
	paths []string
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer, paths []string) *Writer {
	return &Writer{csv: csv.NewWriter(w), paths: append([]string(nil), paths...)}
}

// WriteBOM writes the UTF-8 byte order mark directly to w, ahead of any CSV output.
func WriteBOM(w io.Writer) error {
	_, err := w.Write(BOM)
	return err
}

// WriteHeader writes FullResponse followed by one column per output path.
func (w *Writer) WriteHeader() error {
	header := make([]string, 0, len(w.paths)+1)
	header = append(header, FullResponseColumn)
	header = append(header, w.paths...)
	return w.csv.Write(header)
}

// WriteRows writes one CSV record per row. Paths missing from a row are empty.
func (w *Writer) WriteRows(rows []domain.ResponseRow) error {
	for i := range rows {
		if err := w.csv.Write(w.record(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) record(row *domain.ResponseRow) []string {
	rec := make([]string, len(w.paths)+1)
	rec[0] = row.FullResponse
	for i, p := range w.paths {
		rec[i+1] = row.Fields[p]
	}
	return rec
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "responses"
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.csv for the given day.
func BuildFilename(name string, day time.Time) string {
	return fmt.Sprintf("%s_%s.csv", SanitizeFilename(name), day.Format("2006-01-02"))
}
