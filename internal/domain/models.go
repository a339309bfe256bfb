package domain

import (
	"encoding/base64"
	"time"
)

// RawAttachment is a caller-supplied file before normalization.
type RawAttachment struct {
	Filename string
	Content  []byte
}

// ImagePart is a PNG payload referenced from normalized text by its placeholder.
type ImagePart struct {
	Placeholder string
	Data        []byte
}

// Base64 returns the standard base64 encoding of the PNG payload.
func (p ImagePart) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// DataURI returns the payload as a data:image/png URI.
func (p ImagePart) DataURI() string {
	return "data:image/png;base64," + p.Base64()
}

// NormalizedDocument is an attachment converted to model-consumable text plus images.
// Every placeholder that appears in Text has exactly one entry in Images.
type NormalizedDocument struct {
	Text            string
	Images          []ImagePart
	EstimatedTokens int
}

// Image returns the image registered under placeholder.
func (d *NormalizedDocument) Image(placeholder string) ([]byte, bool) {
	for _, img := range d.Images {
		if img.Placeholder == placeholder {
			return img.Data, true
		}
	}
	return nil, false
}

// CacheEntry is a stored model answer with its expiry.
type CacheEntry struct {
	Key       string    `json:"key"`
	Response  string    `json:"response"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// ResponseRow is one output row returned to the caller.
type ResponseRow struct {
	FullResponse string            `json:"full_response"`
	Fields       map[string]string `json:"fields"`
}
