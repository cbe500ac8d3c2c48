// Package ollama runs prescription OCR against a local multimodal Ollama model.
package ollama

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

const DefaultBaseURL = "http://localhost:11434"

// Provider calls the Ollama generate API with an attached image.
type Provider struct {
	client *resty.Client
	model  string
	log    zerolog.Logger
}

// New creates a Provider. baseURL without a scheme is treated as http.
func New(baseURL, modelName string, timeout time.Duration, log zerolog.Logger) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Provider{client: c, model: modelName, log: log}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (p *Provider) Extract(ctx context.Context, image []byte, _ string) ([]model.RawEntry, error) {
	req := generateRequest{
		Model:  p.model,
		Prompt: vision.Prompt,
		Images: []string{base64.StdEncoding.EncodeToString(image)},
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&req).
		Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("ollama status %d: %s", resp.StatusCode(), resp.String())
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if gr.Error != "" {
		return nil, fmt.Errorf("ollama generate error: %s", gr.Error)
	}
	entries, err := vision.ParseEntries(gr.Response)
	if err != nil {
		p.log.Debug().Str("reply", gr.Response).Msg("unparseable ollama reply")
		return nil, err
	}
	return entries, nil
}

// HealthPing implements health.HealthPinger. It checks /api/tags for the
// configured model's presence.
func (p *Provider) HealthPing(ctx context.Context) error {
	resp, err := p.client.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama status %d", resp.StatusCode())
	}
	var data struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return err
	}
	want := baseModelName(p.model)
	for _, m := range data.Models {
		if baseModelName(m.Name) == want {
			return nil
		}
	}
	return fmt.Errorf("model %s not found", want)
}

func baseModelName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, ":"); i >= 0 {
		return name[:i]
	}
	return name
}
