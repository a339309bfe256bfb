package projector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errBadPath = errors.New("invalid path")

// segment is one step of a compiled path: an object member or an array index.
type segment struct {
	name    string
	index   int
	isIndex bool
}

// parsePath compiles a path such as "$.items[0].name" or "meta['content-type']".
// An empty path (or a bare "$") addresses the root value.
func parsePath(path string) ([]segment, error) {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "$")
	p = strings.TrimPrefix(p, ".")

	var segs []segment
	for i := 0; i < len(p); {
		switch p[i] {
		case '.':
			if i+1 >= len(p) || p[i+1] == '.' || p[i+1] == '[' {
				return nil, fmt.Errorf("%w: empty member name in %q", errBadPath, path)
			}
			i++
		case '[':
			seg, next, err := parseBracket(p, i)
			if err != nil {
				return nil, fmt.Errorf("%w in %q", err, path)
			}
			segs = append(segs, seg)
			i = next
		default:
			end := i
			for end < len(p) && p[end] != '.' && p[end] != '[' {
				end++
			}
			segs = append(segs, segment{name: p[i:end]})
			i = end
		}
	}
	return segs, nil
}

// parseBracket reads "[n]", "['name']" or "[\"name\"]" starting at p[i] == '['
// and returns the segment plus the index just past the closing bracket.
func parseBracket(p string, i int) (segment, int, error) {
	i++
	if i >= len(p) {
		return segment{}, 0, fmt.Errorf("%w: unterminated bracket", errBadPath)
	}

	if q := p[i]; q == '\'' || q == '"' {
		end := strings.IndexByte(p[i+1:], q)
		if end < 0 {
			return segment{}, 0, fmt.Errorf("%w: unterminated quoted name", errBadPath)
		}
		name := p[i+1 : i+1+end]
		closing := i + 1 + end + 1
		if closing >= len(p) || p[closing] != ']' {
			return segment{}, 0, fmt.Errorf("%w: expected ']' after quoted name", errBadPath)
		}
		return segment{name: name}, closing + 1, nil
	}

	end := strings.IndexByte(p[i:], ']')
	if end < 0 {
		return segment{}, 0, fmt.Errorf("%w: unterminated bracket", errBadPath)
	}
	n, err := strconv.Atoi(strings.TrimSpace(p[i : i+end]))
	if err != nil || n < 0 {
		return segment{}, 0, fmt.Errorf("%w: bad index %q", errBadPath, p[i:i+end])
	}
	return segment{index: n, isIndex: true}, i + end + 1, nil
}
