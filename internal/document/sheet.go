package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"llmbroker/internal/domain"
)

// normalizeSpreadsheet renders every worksheet's used range as a Markdown table
// under a sheet-name heading.
func normalizeSpreadsheet(content []byte) (*domain.NormalizedDocument, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", domain.ErrDecode, err)
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: reading sheet %q: %v", domain.ErrDecode, name, err)
		}

		fmt.Fprintf(&sb, "## Sheet: %s\n\n", name)
		if table := markdownTable(usedRange(rows)); table != "" {
			sb.WriteString(table)
			sb.WriteString("\n")
		}
	}

	return &domain.NormalizedDocument{Text: strings.TrimRight(sb.String(), "\n") + "\n"}, nil
}

// usedRange trims leading and trailing blank rows and leading blank columns.
// Blank rows between data are kept so separate blocks stay apart.
func usedRange(rows [][]string) [][]string {
	first, last, firstCol := -1, -1, -1
	for i, row := range rows {
		lead := firstNonBlank(row)
		if lead < 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		if firstCol < 0 || lead < firstCol {
			firstCol = lead
		}
	}
	if first < 0 {
		return nil
	}

	used := make([][]string, 0, last-first+1)
	for _, row := range rows[first : last+1] {
		if firstCol < len(row) {
			used = append(used, row[firstCol:])
		} else {
			used = append(used, nil)
		}
	}
	return used
}

func firstNonBlank(row []string) int {
	for i, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return i
		}
	}
	return -1
}
