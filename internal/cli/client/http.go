package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAPIURL = "DREAMCOURSE_API_URL"

	defaultAPIURL = "http://localhost:8080"

	// Generation calls the model up to twice per request.
	requestTimeout = 120 * time.Second
)

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClientWithCmd picks the first base URL set among the --api-url flag,
// DREAMCOURSE_API_URL (a .env file counts), the saved global config and the
// localhost default. cmd may be nil.
func NewAPIClientWithCmd(cmd *cobra.Command) (*APIClient, error) {
	_ = godotenv.Load()

	var flagURL string
	if cmd != nil {
		flagURL, _ = cmd.Flags().GetString("api-url")
	}

	var savedURL string
	if flagURL == "" && os.Getenv(envAPIURL) == "" {
		saved, err := LoadGlobalConfig()
		if err != nil {
			return nil, err
		}
		if saved != nil {
			savedURL = saved.APIURL
		}
	}

	return NewAPIClientWithConfig(firstNonEmpty(flagURL, os.Getenv(envAPIURL), savedURL, defaultAPIURL)), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NewAPIClientWithConfig creates an APIClient for an explicit base URL.
func NewAPIClientWithConfig(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// APIResponse represents the standard API response format.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// APIError represents an error from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Get performs a GET request.
func (c *APIClient) Get(path string) (*APIResponse, error) {
	return c.do(http.MethodGet, path, nil)
}

// Post performs a POST request with JSON body.
func (c *APIClient) Post(path string, body interface{}) (*APIResponse, error) {
	return c.do(http.MethodPost, path, body)
}

// Delete performs a DELETE request.
func (c *APIClient) Delete(path string) (*APIResponse, error) {
	return c.do(http.MethodDelete, path, nil)
}

func (c *APIClient) do(method, path string, body interface{}) (*APIResponse, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp)
}

// decodeResponse turns any status >= 400 into an *APIError, using the JSON
// envelope when the server sent one and the raw body otherwise.
func decodeResponse(resp *http.Response) (*APIResponse, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	failed := resp.StatusCode >= http.StatusBadRequest

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		if failed {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &APIResponse{}, nil
	}

	var out APIResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if failed {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: string(raw)}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if failed {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: out.Code, Message: out.Error}
	}
	return &out, nil
}
