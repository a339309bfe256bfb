// Package document converts caller attachments into model-consumable text plus
// size-bounded PNG images.
package document

import (
	"encoding/base64"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"llmbroker/internal/domain"
)

// Options tunes optional normalization behavior.
type Options struct {
	// CSVAsMarkdown renders delimited text as a Markdown table instead of passing it through.
	CSVAsMarkdown bool
	// MaxBytes bounds the decoded attachment size; zero disables the check.
	MaxBytes int64
}

// Normalizer dispatches attachments to a format handler by file extension.
type Normalizer struct {
	opts Options

	pdfText  func([]byte) (string, error)
	pdfImage func([]byte) ([]byte, error)
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{
		opts:     opts,
		pdfText:  extractPDFText,
		pdfImage: firstPDFImage,
	}
}

// DecodeAttachment validates an attachment envelope and decodes its base64 content.
func (n *Normalizer) DecodeAttachment(filename, content string) (*domain.RawAttachment, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.ErrMissingFilename
	}
	if strings.ContainsAny(filename, "/\\\x00") {
		return nil, fmt.Errorf("%w: filename %q must not contain path separators", domain.ErrMalformedAttachment, filename)
	}
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", domain.ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyContent
	}
	if n.opts.MaxBytes > 0 && int64(len(data)) > n.opts.MaxBytes {
		return nil, domain.ErrAttachmentTooLarge
	}
	return &domain.RawAttachment{Filename: filename, Content: data}, nil
}

// Normalize converts one attachment into a NormalizedDocument.
func (n *Normalizer) Normalize(filename string, content []byte) (*domain.NormalizedDocument, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.ErrMissingFilename
	}
	if len(content) == 0 {
		return nil, domain.ErrEmptyContent
	}

	ext := strings.ToLower(filepath.Ext(filename))

	var (
		doc *domain.NormalizedDocument
		err error
	)
	switch ext {
	case ".txt":
		doc = &domain.NormalizedDocument{Text: decodeText(content)}
	case ".csv":
		doc = &domain.NormalizedDocument{Text: n.csvText(content)}
	case ".xlsx":
		doc, err = normalizeSpreadsheet(content)
	case ".docx":
		doc, err = normalizeWordDocument(content)
	case ".pdf":
		doc, err = n.normalizePDF(content)
	case ".html", ".htm":
		doc, err = normalizeHTML(content)
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
		doc, err = imageDocument(content, "[Image attached: %s]")
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", filename, err)
	}

	doc.EstimatedTokens = EstimateTokens(doc.Text, len(doc.Images))
	return doc, nil
}

// EstimateTokens approximates prompt cost: 0.9 tokens per whitespace-delimited
// word plus a flat 1000 per image.
func EstimateTokens(text string, images int) int {
	words := len(strings.Fields(text))
	return int(math.Round(0.9*float64(words))) + 1000*images
}

// Placeholder returns the marker for the n-th image (1-based) of a document.
func Placeholder(n int) string {
	return fmt.Sprintf("<see image%d>", n)
}

// imageDocument runs data through the image pipeline and wraps it in a one-image
// document whose text is markerFormat applied to the placeholder.
func imageDocument(data []byte, markerFormat string) (*domain.NormalizedDocument, error) {
	png, err := ProcessImage(data)
	if err != nil {
		return nil, err
	}
	placeholder := Placeholder(1)
	return &domain.NormalizedDocument{
		Text:   fmt.Sprintf(markerFormat, placeholder),
		Images: []domain.ImagePart{{Placeholder: placeholder, Data: png}},
	}, nil
}
