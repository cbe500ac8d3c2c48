// Package vision extracts structured drug lines from prescription images.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/q-pitt/Medilense-3bros/internal/model"
)

var (
	// ErrMissingAPIKey means the provider has no credential to call the model.
	ErrMissingAPIKey = errors.New("vision api key not configured")
	// ErrNoEntries means the model answered but listed no drugs.
	ErrNoEntries = errors.New("no drug entries in model response")
	// ErrUnsupportedImage means the upload is not a png, jpeg or webp image.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrMalformedResponse means the model reply held no decodable JSON list.
	ErrMalformedResponse = errors.New("malformed model response")
)

// Prompt is sent alongside the image to every provider.
const Prompt = `OCR 전문가로서 이미지의 약 정보를 추출하여 JSON 리스트로만 출력하세요. 설명 금지.
형식: [{"medicine_name": "..", "dosage": "..", "frequency": "..", "days": "..", "usage": ".."}]`

// Extractor turns an image into raw drug entries.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) ([]model.RawEntry, error)
}

var supportedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// DetectImage sniffs the content type of data and rejects anything that is
// not a supported image.
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty upload", ErrUnsupportedImage)
	}
	ct := http.DetectContentType(data)
	if !supportedTypes[ct] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
	}
	return ct, nil
}

// ParseEntries decodes the JSON list embedded in a model reply. Text before
// the first '[' and after the last ']' is ignored, so fenced or chatty replies
// still parse. Entries without a drug name are dropped.
func ParseEntries(text string) ([]model.RawEntry, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON list found", ErrMalformedResponse)
	}
	var raw []model.RawEntry
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	out := make([]model.RawEntry, 0, len(raw))
	for _, e := range raw {
		if strings.TrimSpace(e.MedicineName) == "" {
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, ErrNoEntries
	}
	return out, nil
}
