// Package gemini calls the Gemini generateContent REST API for prescription OCR.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/vision"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-3-flash-preview"

	generatePath = "/v1beta/models/{model}:generateContent"
	modelPath    = "/v1beta/models/{model}"
)

type Provider struct {
	client *resty.Client
	model  string
	apiKey string
	log    zerolog.Logger
}

// New builds a Provider. An empty apiKey is accepted here and reported as
// vision.ErrMissingAPIKey on first use.
func New(baseURL, apiKey, modelName string, timeout time.Duration, log zerolog.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", apiKey).
		SetTimeout(timeout)
	return &Provider{client: c, model: modelName, apiKey: apiKey, log: log}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type thinkingConfig struct {
	ThinkingLevel string `json:"thinkingLevel"`
}

type generationConfig struct {
	Temperature    float64         `json:"temperature"`
	ThinkingConfig *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Extract sends the image with the shared prompt and parses the reply.
func (p *Provider) Extract(ctx context.Context, image []byte, mimeType string) ([]model.RawEntry, error) {
	if p.apiKey == "" {
		return nil, vision.ErrMissingAPIKey
	}
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: vision.Prompt},
			{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
		}}},
		GenerationConfig: generationConfig{
			Temperature:    1.0,
			ThinkingConfig: &thinkingConfig{ThinkingLevel: "low"},
		},
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("model", p.model).
		SetBody(&req).
		Post(generatePath)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return nil, fmt.Errorf("gemini status %d: decode response: %w", resp.StatusCode(), err)
	}
	if resp.StatusCode() != http.StatusOK {
		if gr.Error != nil {
			return nil, fmt.Errorf("gemini status %d: %s", resp.StatusCode(), gr.Error.Message)
		}
		return nil, fmt.Errorf("gemini status %d", resp.StatusCode())
	}
	if len(gr.Candidates) == 0 {
		return nil, vision.ErrNoEntries
	}

	var sb strings.Builder
	for _, pt := range gr.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}
	entries, err := vision.ParseEntries(sb.String())
	if err != nil {
		p.log.Debug().Str("reply", sb.String()).Msg("unparseable gemini reply")
		return nil, err
	}
	return entries, nil
}

// HealthPing implements health.HealthPinger by fetching the model resource.
func (p *Provider) HealthPing(ctx context.Context) error {
	if p.apiKey == "" {
		return vision.ErrMissingAPIKey
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("model", p.model).
		Get(modelPath)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("gemini status %d", resp.StatusCode())
	}
	return nil
}
