package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"llmbroker/internal/domain"
)

// MinPDFTextLength is the extracted-text length below which a PDF is treated as
// image-only.
const MinPDFTextLength = 50

func init() {
	// pdfcpu must not create a user config directory inside a server process.
	api.DisableConfigDir()
}

var errNoPDFImage = errors.New("pdf contains no embedded image")

// normalizePDF extracts page text, falling back to the first embedded raster
// image when the text is too short to be useful.
func (n *Normalizer) normalizePDF(content []byte) (*domain.NormalizedDocument, error) {
	text, err := n.pdfText(content)
	if err != nil {
		return nil, fmt.Errorf("%w: extracting pdf text: %v", domain.ErrDecode, err)
	}
	if len(strings.TrimSpace(text)) >= MinPDFTextLength {
		return &domain.NormalizedDocument{Text: text}, nil
	}

	img, err := n.pdfImage(content)
	if errors.Is(err, errNoPDFImage) {
		return nil, domain.ErrNoExtractableContent
	}
	if err != nil {
		return nil, fmt.Errorf("%w: extracting pdf image: %v", domain.ErrDecode, err)
	}
	return imageDocument(img, "[PDF image only: %s]")
}

// extractPDFText concatenates the plain text of every page.
func extractPDFText(content []byte) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// firstPDFImage returns the bytes of the first raster image found as a page
// resource, scanning pages in order and images by object number.
func firstPDFImage(content []byte) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf images: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.ExtractImagesRaw(bytes.NewReader(content), nil, conf)
	if err != nil {
		return nil, err
	}

	for _, images := range pages {
		objNrs := make([]int, 0, len(images))
		for objNr := range images {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			img := images[objNr]
			if img.Reader == nil {
				continue
			}
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("reading image object %d: %w", objNr, err)
			}
			if len(data) > 0 {
				return data, nil
			}
		}
	}
	return nil, errNoPDFImage
}
