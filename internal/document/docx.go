package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"llmbroker/internal/domain"
)

const wordBodyPart = "word/document.xml"

// normalizeWordDocument extracts the visible body text of a .docx package.
func normalizeWordDocument(content []byte) (*domain.NormalizedDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening docx: %v", domain.ErrDecode, err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == wordBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("%w: docx has no %s", domain.ErrDecode, wordBodyPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrDecode, wordBodyPart, err)
	}
	defer func() { _ = rc.Close() }()

	text, err := wordText(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrDecode, wordBodyPart, err)
	}
	return &domain.NormalizedDocument{Text: text}, nil
}

// wordText walks WordprocessingML and keeps run text, tabs and breaks.
// Paragraphs end with a newline.
func wordText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
