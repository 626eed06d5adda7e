// Package client is the Go client for the QuickAR REST API. Every call
// returns the API envelope; transport and decode failures are folded into
// it so callers never handle exceptions, only {success:false}.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Envelope mirrors utils.Envelope with the payload left raw for the caller
// to decode into its own type.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	maxRetries int
}

// New builds a client. Base URL resolution: explicit argument, then the
// QUICKAR_API_URL env var, then localhost for development.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("QUICKAR_API_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
	}
}

// SetToken attaches a bearer token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func failure(message string, errs ...string) *Envelope {
	return &Envelope{Success: false, Message: message, Errors: errs}
}

// do issues the request with exponential backoff. Only transient failures
// retry: transport errors, timeouts and 5xx. 4xx responses return as-is;
// retrying a rejection changes nothing.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) *Envelope {
	backoff := 250 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return failure("request cancelled", ctx.Err().Error())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return failure("invalid request", err.Error())
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		res, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue // network error, retryable
		}

		payload, err := io.ReadAll(res.Body)
		res.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if res.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %s", res.Status)
			continue
		}

		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return failure("malformed response", err.Error())
		}
		if !env.Success && env.Message == "" {
			env.Message = res.Status
		}
		return &env
	}

	return failure("request failed after retries", lastErr.Error())
}

func (c *Client) get(ctx context.Context, path string) *Envelope {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

func (c *Client) postJSON(ctx context.Context, path string, v interface{}) *Envelope {
	body, err := json.Marshal(v)
	if err != nil {
		return failure("could not encode request", err.Error())
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json")
}

func (c *Client) putJSON(ctx context.Context, path string, v interface{}) *Envelope {
	body, err := json.Marshal(v)
	if err != nil {
		return failure("could not encode request", err.Error())
	}
	return c.do(ctx, http.MethodPut, path, body, "application/json")
}

func (c *Client) GetAllExperiences(ctx context.Context) *Envelope {
	return c.get(ctx, "/api/experiences")
}

func (c *Client) GetExperienceByID(ctx context.Context, id string) *Envelope {
	return c.get(ctx, "/api/experiences/"+id)
}

func (c *Client) GetExperienceBySlug(ctx context.Context, slug string) *Envelope {
	return c.get(ctx, "/api/experiences/slug/"+slug)
}

func (c *Client) CreateExperience(ctx context.Context, data interface{}) *Envelope {
	return c.postJSON(ctx, "/api/experiences", data)
}

func (c *Client) UpdateExperience(ctx context.Context, id string, data interface{}) *Envelope {
	return c.putJSON(ctx, "/api/experiences/"+id, data)
}

func (c *Client) DeleteExperience(ctx context.Context, id string) *Envelope {
	return c.do(ctx, http.MethodDelete, "/api/experiences/"+id, nil, "")
}

// UploadAssetFile sends a multipart upload for the given category
// (models, images or videos).
func (c *Client) UploadAssetFile(ctx context.Context, name string, content io.Reader, category string) *Envelope {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("category", category); err != nil {
		return failure("could not encode upload", err.Error())
	}
	part, err := w.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return failure("could not encode upload", err.Error())
	}
	if _, err := io.Copy(part, content); err != nil {
		return failure("could not read upload content", err.Error())
	}
	w.Close()
	return c.do(ctx, http.MethodPost, "/api/upload", buf.Bytes(), w.FormDataContentType())
}

// TrackEvent reports an analytics event. Failures are logged and swallowed:
// analytics must never interrupt the caller's flow, so this never returns
// an error and never retries.
func (c *Client) TrackEvent(ctx context.Context, eventType string, experienceID *uint, metadata map[string]interface{}) {
	body, err := json.Marshal(map[string]interface{}{
		"type":         eventType,
		"experienceID": experienceID,
		"metadata":     metadata,
	})
	if err != nil {
		log.Printf("analytics event %q dropped: %v", eventType, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analytics/events", bytes.NewReader(body))
	if err != nil {
		log.Printf("analytics event %q dropped: %v", eventType, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("analytics event %q dropped: %v", eventType, err)
		return
	}
	res.Body.Close()
}
