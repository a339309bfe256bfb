// Package projector maps declared JSON paths onto a model answer, producing
// one output row (single-record mode) or one row per array element (list mode).
package projector

import (
	"bytes"
	"encoding/json"
	"strings"

	"llmbroker/internal/domain"
)

// Result is the outcome of a projection. It always has at least one row unless
// list mode met an empty array.
type Result struct {
	Rows []domain.ResponseRow
}

// Projector holds an output schema compiled once per broker instance.
type Projector struct {
	paths    []string
	compiled [][]segment // nil entry: path failed to compile and never resolves
	listMode bool
}

// New compiles paths. Paths that fail to compile are kept and always resolve to "".
func New(paths []string, listMode bool) *Projector {
	p := &Projector{
		paths:    append([]string(nil), paths...),
		compiled: make([][]segment, len(paths)),
		listMode: listMode,
	}
	for i, path := range paths {
		segs, err := parsePath(path)
		if err != nil {
			continue
		}
		if segs == nil {
			segs = []segment{}
		}
		p.compiled[i] = segs
	}
	return p
}

// Paths returns the declared output paths in order.
func (p *Projector) Paths() []string {
	return append([]string(nil), p.paths...)
}

// ListMode reports whether top-level arrays are expanded into rows.
func (p *Projector) ListMode() bool {
	return p.listMode
}

// Project is a convenience wrapper around New(paths, listMode).Project(jsonText).
func Project(jsonText string, paths []string, listMode bool) Result {
	return New(paths, listMode).Project(jsonText)
}

// Project resolves every path against jsonText. Unparseable input yields one row
// carrying the input verbatim with every field empty; it is never an error.
func (p *Projector) Project(jsonText string) Result {
	trimmed := bytes.TrimSpace([]byte(jsonText))
	if !json.Valid(trimmed) {
		return p.Unprojected(jsonText)
	}
	root := json.RawMessage(trimmed)

	if p.listMode && trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(root, &elems); err != nil {
			return p.Unprojected(jsonText)
		}
		rows := make([]domain.ResponseRow, 0, len(elems))
		for _, elem := range elems {
			if firstByte(elem) != '{' {
				rows = append(rows, p.emptyRow(string(elem)))
				continue
			}
			rows = append(rows, p.row(string(elem), elem))
		}
		return Result{Rows: rows}
	}

	return Result{Rows: []domain.ResponseRow{p.row(jsonText, root)}}
}

// Unprojected returns a single row carrying full verbatim with every field
// empty, for answers that cannot be projected at all.
func (p *Projector) Unprojected(full string) Result {
	return Result{Rows: []domain.ResponseRow{p.emptyRow(full)}}
}

func (p *Projector) row(full string, value json.RawMessage) domain.ResponseRow {
	fields := make(map[string]string, len(p.paths))
	for i, path := range p.paths {
		fields[path] = ""
		if p.compiled[i] == nil {
			continue
		}
		if v, ok := resolve(value, p.compiled[i]); ok {
			fields[path] = render(v)
		}
	}
	return domain.ResponseRow{FullResponse: full, Fields: fields}
}

func (p *Projector) emptyRow(full string) domain.ResponseRow {
	fields := make(map[string]string, len(p.paths))
	for _, path := range p.paths {
		fields[path] = ""
	}
	return domain.ResponseRow{FullResponse: full, Fields: fields}
}

// resolve walks segs through value, decoding only the containers it steps into.
func resolve(value json.RawMessage, segs []segment) (json.RawMessage, bool) {
	cur := value
	for _, seg := range segs {
		if seg.isIndex {
			if firstByte(cur) != '[' {
				return nil, false
			}
			var elems []json.RawMessage
			if err := json.Unmarshal(cur, &elems); err != nil || seg.index >= len(elems) {
				return nil, false
			}
			cur = elems[seg.index]
			continue
		}

		if firstByte(cur) != '{' {
			return nil, false
		}
		var members map[string]json.RawMessage
		if err := json.Unmarshal(cur, &members); err != nil {
			return nil, false
		}
		next, ok := members[seg.name]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// render turns a JSON value into an output field: strings unquoted, null empty,
// everything else as its JSON source text.
func render(v json.RawMessage) string {
	switch firstByte(v) {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case 'n':
		return ""
	default:
		return strings.TrimSpace(string(v))
	}
}

func firstByte(v json.RawMessage) byte {
	t := bytes.TrimSpace(v)
	if len(t) == 0 {
		return 0
	}
	return t[0]
}
