package document

import (
	"bytes"
	"encoding/csv"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText returns content as text, dropping a leading UTF-8 byte order mark.
func decodeText(content []byte) string {
	return string(bytes.TrimPrefix(content, utf8BOM))
}

// csvText passes delimited text through unchanged unless Markdown rendering is
// enabled. Malformed CSV always falls back to the raw text.
func (n *Normalizer) csvText(content []byte) string {
	raw := decodeText(content)
	if !n.opts.CSVAsMarkdown {
		return raw
	}

	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		return raw
	}
	return markdownTable(records)
}

// markdownTable renders rows as a Markdown table with the first row as header.
// Short rows are padded to the widest row.
func markdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		sb.WriteString("|")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = escapeCell(row[i])
			}
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|")
	for i := 0; i < width; i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return sb.String()
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func escapeCell(s string) string {
	return cellReplacer.Replace(strings.TrimSpace(s))
}
