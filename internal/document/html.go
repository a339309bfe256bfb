package document

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"llmbroker/internal/domain"
)

func normalizeHTML(content []byte) (*domain.NormalizedDocument, error) {
	markdown, err := htmltomarkdown.ConvertString(decodeText(content))
	if err != nil {
		return nil, fmt.Errorf("%w: converting html: %v", domain.ErrDecode, err)
	}
	return &domain.NormalizedDocument{Text: markdown}, nil
}
