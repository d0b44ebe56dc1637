// Package client talks to the lookboard HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lookboard/internal/server/httpapi"
)

// ErrRejected is returned when the server answers with success=false.
var ErrRejected = errors.New("rejected by server")

type Client struct {
	base string
	http *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Ranking returns the current board in rank order.
func (c *Client) Ranking(ctx context.Context) ([]httpapi.Entry, error) {
	var out []httpapi.Entry
	if err := c.do(ctx, http.MethodGet, "/api/ranking", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Submit registers an entry. imageData may be empty, raw base64 or a data URL.
// The server's message is returned in both outcomes.
func (c *Client) Submit(ctx context.Context, name string, score float64, secret, imageData string) (string, error) {
	body := map[string]any{
		"name":        name,
		"score":       score,
		"delete_pass": secret,
	}
	if imageData != "" {
		body["image_data"] = imageData
	}
	return c.post(ctx, "/api/ranking", body)
}

// Delete removes the caller's entry.
func (c *Client) Delete(ctx context.Context, name, secret string) (string, error) {
	return c.post(ctx, "/api/ranking/delete", map[string]any{"name": name, "delete_pass": secret})
}

// Qualifies asks whether score would enter the board.
func (c *Client) Qualifies(ctx context.Context, score float64) (bool, error) {
	var out struct {
		RankIn bool `json:"rank_in"`
	}
	q := url.Values{"score": {strconv.FormatFloat(score, 'f', -1, 64)}}
	if err := c.do(ctx, http.MethodGet, "/api/ranking/qualifies?"+q.Encode(), nil, &out); err != nil {
		return false, err
	}
	return out.RankIn, nil
}

// Ping checks the server health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out map[string]string
	return c.do(ctx, http.MethodGet, "/healthz", nil, &out)
}

func (c *Client) post(ctx context.Context, path string, body any) (string, error) {
	var res result
	err := c.do(ctx, http.MethodPost, path, body, &res)
	if err != nil && res.Message == "" {
		return "", err
	}
	if !res.Success {
		return res.Message, fmt.Errorf("%s: %w", res.Message, ErrRejected)
	}
	return res.Message, nil
}

// do sends the request and decodes the JSON reply into out, also for error
// statuses so callers can read the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	decodeErr := json.NewDecoder(resp.Body).Decode(out)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s: %w", path, decodeErr)
	}
	return nil
}
