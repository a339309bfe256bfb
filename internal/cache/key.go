package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"

	"llmbroker/internal/domain"
)

// Key is the lowercase hex sha256 digest identifying a cached response.
type Key string

// KeyMaterial is everything that influences a model answer.
type KeyMaterial struct {
	Model  string
	System string
	Prompt string
	Images []domain.ImagePart
}

type keyPayload struct {
	Model  string   `json:"model"`
	System string   `json:"system"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
}

// CanonicalPrompt collapses every whitespace run to a single space and trims
// the ends, so formatting-only differences share a cache entry.
func CanonicalPrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}

// DeriveKey hashes the RFC 8785 canonical JSON form of m. Images contribute
// their own sha256 digests in order.
func DeriveKey(m KeyMaterial) (Key, error) {
	payload := keyPayload{
		Model:  m.Model,
		System: m.System,
		Prompt: CanonicalPrompt(m.Prompt),
		Images: make([]string, 0, len(m.Images)),
	}
	for _, img := range m.Images {
		sum := sha256.Sum256(img.Data)
		payload.Images = append(payload.Images, hex.EncodeToString(sum[:]))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling cache key payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalizing cache key payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return Key(hex.EncodeToString(sum[:])), nil
}

// Partition derives the storage partition for a broker instance identity.
// The result only contains [a-z0-9_-]; a blank identity maps to "default".
func Partition(instanceID string) string {
	id := strings.ToLower(strings.TrimSpace(instanceID))
	if id == "" {
		return "default"
	}
	var sb strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
