// Copyright (c) 2026 Bruno Grande <bruno.grande@sagebase.org>.
// SPDX-License-Identifier: Apache-2.0

package tower

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/term"

	"github.com/towerctl/towerctl/internal/config"
	"github.com/towerctl/towerctl/internal/log"
)

// pageSize is the max parameter sent on paged requests.
const pageSize = 100

// Client is a thin authenticated wrapper over the Nextflow Tower REST API.
// Responses are returned as raw JSON; callers pick out fields with gjson
// since the API is loosely shaped and most endpoints are only partially
// consumed.
type Client struct {
	// BaseURL is the API root, e.g. "https://tower.sagebionetworks.org/api".
	BaseURL string

	token string
	http  *retryablehttp.Client
}

// APIError is a non-2xx response from the Tower API. Message carries the
// "message" field from the response body when present.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tower API %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tower API %s returned %d", e.Endpoint, e.StatusCode)
}

// NewClient constructs a Tower client for the given host (bare hostname or
// https URL) and bearer token.
func NewClient(host, token string) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("tower host is not set: %w", ErrHostNotSet)
	}
	if token == "" {
		return nil, fmt.Errorf("tower token is not set: %w", ErrTokenNotSet)
	}

	base := host
	if !strings.HasPrefix(base, "https://") && !strings.HasPrefix(base, "http://") {
		base = "https://" + base
	}
	base = strings.TrimSuffix(base, "/")
	if !strings.HasSuffix(base, "/api") {
		base += "/api"
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.Logger = nil
	rc.RetryMax = 3

	return &Client{
		BaseURL: base,
		token:   token,
		http:    rc,
	}, nil
}

// Request performs an authenticated API call and returns the raw response
// body. Tower reports many recoverable conditions (already a member, active
// jobs, etc.) as 2xx responses with a "message" field, so callers inspect the
// body rather than relying on the status code alone. Non-2xx responses are
// returned as *APIError.
func (c *Client) Request(ctx context.Context, method, endpoint string, params url.Values, body any) ([]byte, error) {
	switch method {
	case http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete:
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}

	u := c.BaseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Tracef("tower request: method=%s, endpoint=%s", method, endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    gjson.GetBytes(raw, "message").String(),
		}
	}

	log.Tracef("tower response: endpoint=%s, bytes=%d", endpoint, len(raw))
	return raw, nil
}

// Paged drives offset/max pagination over a list endpoint and returns the
// elements found at itemsPath across all pages.
func (c *Client) Paged(ctx context.Context, endpoint string, params url.Values, itemsPath string) ([]gjson.Result, error) {
	if params == nil {
		params = url.Values{}
	}

	var results []gjson.Result
	offset := 0
	for {
		params.Set("max", strconv.Itoa(pageSize))
		params.Set("offset", strconv.Itoa(offset))

		raw, err := c.Request(ctx, http.MethodGet, endpoint, params, nil)
		if err != nil {
			return nil, err
		}

		items := gjson.GetBytes(raw, itemsPath).Array()
		results = append(results, items...)

		if len(items) < pageSize {
			break
		}
		offset += len(items)
	}

	log.Debugf("paged request complete: endpoint=%s, items=%d", endpoint, len(results))
	return results, nil
}

// ResolveToken returns the Tower API token following this precedence:
// 1. --token flag value
// 2. NXF_TOWER_TOKEN env variable
// 3. TOWER_ACCESS_TOKEN env variable
// 4. tower.token entry in the towerctl config file
// 5. interactive prompt, when stdin is a terminal
func ResolveToken(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if token := os.Getenv("NXF_TOWER_TOKEN"); token != "" {
		return token, nil
	}
	if token := os.Getenv("TOWER_ACCESS_TOKEN"); token != "" {
		return token, nil
	}
	if token, err := config.GetString("tower.token"); err == nil && token != "" {
		return token, nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Tower API token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		if token := strings.TrimSpace(string(raw)); token != "" {
			return token, nil
		}
	}

	return "", fmt.Errorf("no Tower API token found (set NXF_TOWER_TOKEN): %w", ErrTokenNotSet)
}
