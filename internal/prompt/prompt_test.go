package prompt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"llmbroker/internal/domain"
	"llmbroker/internal/prompt"
)

func TestBuilder_System(t *testing.T) {
	b := prompt.NewBuilder("You extract invoice data.", "Only discuss invoices.", nil, `{"id": ""}`, false)

	assert.Equal(t, "You extract invoice data.\n\nOnly discuss invoices.\n\n"+
		"Respond with a single JSON object only, with no commentary and no code fences. "+
		"Use this structure and fill in the values:\n{\"id\": \"\"}", b.System())
}

func TestBuilder_SystemListModeWithoutConstraint(t *testing.T) {
	b := prompt.NewBuilder("  Extract rows.  ", "   ", nil, `[{"id": ""}]`, true)

	assert.Equal(t, "Extract rows.\n\n"+
		"Respond with a JSON array only, one element per record, with no commentary and no code fences. "+
		"Use this structure and fill in the values:\n[{\"id\": \"\"}]", b.System())
}

func TestBuilder_UserSingleField(t *testing.T) {
	b := prompt.NewBuilder("", "", []string{"UserPrompt"}, "{}", false)

	assert.Equal(t, "What is the total?", b.User(map[string]string{"UserPrompt": "What is the total?", "Other": "x"}, nil))
	assert.Equal(t, "", b.User(nil, nil))
}

func TestBuilder_UserSeveralFields(t *testing.T) {
	b := prompt.NewBuilder("", "", []string{"Customer", "Question"}, "{}", false)

	got := b.User(map[string]string{"Question": "total?", "Customer": "Acme", "Ignored": "zzz"}, nil)
	assert.Equal(t, "Customer: Acme\nQuestion: total?", got)

	got = b.User(map[string]string{"Customer": "Acme"}, nil)
	assert.Equal(t, "Customer: Acme\nQuestion: ", got)
}

func TestBuilder_UserWithAttachment(t *testing.T) {
	b := prompt.NewBuilder("", "", []string{"UserPrompt"}, "{}", false)
	att := &prompt.Attachment{
		Filename: "scan.pdf",
		Document: &domain.NormalizedDocument{Text: "[PDF image only: <see image1>]"},
	}

	assert.Equal(t, "Summarize.\n\nAttachment (scan.pdf):\n[PDF image only: <see image1>]",
		b.User(map[string]string{"UserPrompt": "Summarize."}, att))
	assert.Equal(t, "Attachment (scan.pdf):\n[PDF image only: <see image1>]", b.User(nil, att))
}

func TestBuilder_InputFieldsAreCopied(t *testing.T) {
	fields := []string{"a", "b"}
	b := prompt.NewBuilder("", "", fields, "{}", false)
	fields[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, b.InputFields())
}
