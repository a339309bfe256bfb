// Package prompt composes the system and user messages sent to the model.
package prompt

import (
	"strings"

	"llmbroker/internal/domain"
)

// Attachment is a normalized attachment appended to the user prompt.
type Attachment struct {
	Filename string
	Document *domain.NormalizedDocument
}

// Builder composes prompts for one broker configuration.
type Builder struct {
	inputFields []string
	system      string
}

// NewBuilder precomputes the system message from the configured prompt, the
// topic constraint and the JSON shape the caller expects back.
func NewBuilder(systemPrompt, topicConstraint string, inputFields []string, skeleton string, listMode bool) *Builder {
	return &Builder{
		inputFields: append([]string(nil), inputFields...),
		system:      buildSystem(systemPrompt, topicConstraint, skeleton, listMode),
	}
}

// System returns the system message.
func (b *Builder) System() string {
	return b.system
}

// InputFields returns the declared input field names in order.
func (b *Builder) InputFields() []string {
	return append([]string(nil), b.inputFields...)
}

func buildSystem(systemPrompt, topicConstraint, skeleton string, listMode bool) string {
	var parts []string
	if s := strings.TrimSpace(systemPrompt); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(topicConstraint); s != "" {
		parts = append(parts, s)
	}

	var shape strings.Builder
	if listMode {
		shape.WriteString("Respond with a JSON array only, one element per record, with no commentary and no code fences. ")
	} else {
		shape.WriteString("Respond with a single JSON object only, with no commentary and no code fences. ")
	}
	shape.WriteString("Use this structure and fill in the values:\n")
	shape.WriteString(skeleton)
	parts = append(parts, shape.String())

	return strings.Join(parts, "\n\n")
}

// User composes the user message text. A single declared input field is sent
// as its bare value; several fields become "name: value" lines in declaration
// order. Inputs that are not declared are ignored and missing ones are empty.
// The attachment text follows after a blank line.
func (b *Builder) User(inputs map[string]string, att *Attachment) string {
	var sb strings.Builder
	switch len(b.inputFields) {
	case 0:
	case 1:
		sb.WriteString(inputs[b.inputFields[0]])
	default:
		for i, name := range b.inputFields {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(inputs[name])
		}
	}

	if att != nil && att.Document != nil {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Attachment (")
		sb.WriteString(att.Filename)
		sb.WriteString("):\n")
		sb.WriteString(att.Document.Text)
	}
	return sb.String()
}
