package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// registration waits on the vision model, so the client timeout is generous.
const clientTimeout = 3 * time.Minute

func newClient(api string) *resty.Client {
	return resty.New().
		SetBaseURL(api).
		SetHeader("Accept", "application/json").
		SetTimeout(clientTimeout)
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// checkResponse turns a non-2xx response into an error carrying the server message.
func checkResponse(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		var e apiError
		if json.Unmarshal(resp.Body(), &e) == nil && e.Message != "" {
			return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), e.Message)
		}
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}
