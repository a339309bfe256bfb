// Package jsonsnip locates JSON values embedded in free-form model output.
package jsonsnip

import (
	"encoding/json"
	"regexp"
	"strings"
)

// metaToken matches chat-template tokens such as <|channel|> or <|message|>.
var metaToken = regexp.MustCompile(`<\|[^>|]+?\|>`)

var fenceReplacer = strings.NewReplacer("```json", "", "```JSON", "", "```", "")

// StripNoise removes meta tokens and code-fence markers, keeping fenced content.
func StripNoise(s string) string {
	s = metaToken.ReplaceAllString(s, "")
	return fenceReplacer.Replace(s)
}

// ExtractFirstValue returns the first balanced top-level JSON object or array in raw.
//
// Brackets inside double-quoted strings are ignored. A closing bracket that does not
// match the innermost open bracket, or input that never balances, yields false.
// With mustParse set, the span must also be valid JSON.
func ExtractFirstValue(raw string, stripNoise, mustParse bool) (string, bool) {
	return extract(raw, stripNoise, mustParse, false)
}

// ExtractFirstObject is ExtractFirstValue restricted to objects: an opening '['
// before the first '{' is treated as plain text.
func ExtractFirstObject(raw string, stripNoise, mustParse bool) (string, bool) {
	return extract(raw, stripNoise, mustParse, true)
}

func extract(raw string, stripNoise, mustParse, objectOnly bool) (string, bool) {
	if raw == "" {
		return "", false
	}
	text := raw
	if stripNoise {
		text = StripNoise(text)
	}

	span, ok := scan(text, objectOnly)
	if !ok {
		return "", false
	}
	if mustParse && !json.Valid([]byte(span)) {
		return "", false
	}
	return span, true
}

// scan walks text once, tracking string state and a stack of open brackets.
// Scanning operates on bytes; every byte it inspects is ASCII, and UTF-8
// continuation bytes never collide with them.
func scan(text string, objectOnly bool) (string, bool) {
	start := -1
	inString, escaped := false, false
	var stack []byte

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{', '[':
			if start < 0 {
				if ch == '[' && objectOnly {
					continue
				}
				start = i
			}
			stack = append(stack, ch)
		case '}', ']':
			if start < 0 {
				continue
			}
			if len(stack) == 0 {
				return "", false
			}
			open := stack[len(stack)-1]
			if (open == '{' && ch != '}') || (open == '[' && ch != ']') {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
