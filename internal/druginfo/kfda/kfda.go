// Package kfda queries the MFDS e-drug easy information service
// (DrbEasyService/getDrbEasyDrugList) on data.go.kr.
package kfda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/q-pitt/Medilense-3bros/internal/druginfo"
)

const (
	listPath       = "/1471000/DrbEasyService/getDrbEasyDrugList"
	resultCodeOK   = "00"
	DefaultTimeout = 15 * time.Second
)

// Client calls the registry over HTTP. A Client without a key answers every
// lookup with druginfo.ErrNotConfigured and never touches the network.
type Client struct {
	http    *resty.Client
	apiKey  string
	log     zerolog.Logger
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit caps outgoing requests at perSecond.
// perSecond <= 0 leaves requests unthrottled.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// New creates a registry client. timeout <= 0 selects DefaultTimeout.
func New(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	cl := &Client{http: c, apiKey: apiKey, log: log}
	for _, o := range opts {
		o(cl)
	}
	return cl
}

type listResponse struct {
	Header struct {
		ResultCode string `json:"resultCode"`
		ResultMsg  string `json:"resultMsg"`
	} `json:"header"`
	Body struct {
		TotalCount int             `json:"totalCount"`
		Items      json.RawMessage `json:"items"`
	} `json:"body"`
}

// Lookup returns the first registry item whose name matches name. Each call
// makes at most one request, bounded by the client timeout.
func (c *Client) Lookup(ctx context.Context, name string) (*druginfo.Item, error) {
	if c.apiKey == "" {
		return nil, druginfo.ErrNotConfigured
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("registry rate limit: %w", err)
		}
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"serviceKey": c.apiKey,
			"itemName":   name,
			"type":       "json",
		}).
		Get(listPath)
	if err != nil {
		return nil, fmt.Errorf("registry request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("registry status %d", resp.StatusCode())
	}

	var lr listResponse
	if err := json.Unmarshal(resp.Body(), &lr); err != nil {
		return nil, fmt.Errorf("decode registry response: %w", err)
	}
	if code := lr.Header.ResultCode; code != "" && code != resultCodeOK {
		return nil, fmt.Errorf("registry result %s: %s", code, lr.Header.ResultMsg)
	}

	// items is an array when populated; the service sends "" or omits it otherwise
	var items []druginfo.Item
	if len(lr.Body.Items) > 0 && lr.Body.Items[0] == '[' {
		if err := json.Unmarshal(lr.Body.Items, &items); err != nil {
			return nil, fmt.Errorf("decode registry items: %w", err)
		}
	}
	if len(items) == 0 {
		c.log.Debug().Str("drug", name).Msg("registry returned no items")
		return nil, druginfo.ErrNoData
	}
	return &items[0], nil
}
