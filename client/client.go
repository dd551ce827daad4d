// Package client is the instrumentation-side library: an HTTP client for the
// retrace API plus a buffering recorder that ships origin records as code is
// authored.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/retracehq/retrace"
)

const defaultTimeout = 15 * time.Second

// Terminal failure classes. Anything not matching one of these is treated as
// transient and subject to the recorder's retry policy.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
)

// IsTerminal reports whether an error must not be retried.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBadRequest)
}

type Client struct {
	client  *http.Client
	baseURL string
	token   string
	cache   *cache.Cache
}

// New builds a client for the given API base URL. token is either a
// workspace-scoped access token or the admin key, depending on which calls
// are made.
func New(baseURL, token string) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: baseURL,
		token:   token,
		cache:   cache.New(time.Minute, 5*time.Minute),
	}
}

// Record ships a batch of origin records to the recording endpoint.
func (c *Client) Record(ctx context.Context, workspaceID string, entries []retrace.OriginRecord) (retrace.RecordResponse, error) {
	var resp retrace.RecordResponse
	err := c.request(ctx, http.MethodPost,
		"/api/v1/workspaces/"+url.PathEscape(workspaceID)+"/records",
		retrace.RecordRequest{Entries: entries}, &resp)
	if err != nil {
		return retrace.RecordResponse{}, err
	}
	return resp, nil
}

// ListSignatures fetches every stored signature of a workspace. Results are
// cached briefly so repeated report invocations inside one process don't
// refetch.
func (c *Client) ListSignatures(ctx context.Context, workspaceID string) ([]retrace.SignatureEntry, error) {
	cacheKey := "signatures:" + workspaceID
	if x, found := c.cache.Get(cacheKey); found {
		return x.([]retrace.SignatureEntry), nil
	}

	var entries []retrace.SignatureEntry
	err := c.request(ctx, http.MethodGet,
		"/api/v1/workspaces/"+url.PathEscape(workspaceID)+"/signatures", nil, &entries)
	if err != nil {
		return nil, err
	}

	c.cache.Set(cacheKey, entries, cache.DefaultExpiration)
	return entries, nil
}

func (c *Client) CreateWorkspace(ctx context.Context, name string) (retrace.Workspace, error) {
	var ws retrace.Workspace
	err := c.request(ctx, http.MethodPost, "/api/v1/workspaces",
		map[string]string{"name": name}, &ws)
	return ws, err
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]retrace.Workspace, error) {
	var list []retrace.Workspace
	err := c.request(ctx, http.MethodGet, "/api/v1/workspaces", nil, &list)
	return list, err
}

// FindWorkspace resolves a workspace by name.
func (c *Client) FindWorkspace(ctx context.Context, name string) (retrace.Workspace, error) {
	var list []retrace.Workspace
	err := c.request(ctx, http.MethodGet, "/api/v1/workspaces?name="+url.QueryEscape(name), nil, &list)
	if err != nil {
		return retrace.Workspace{}, err
	}
	if len(list) == 0 {
		return retrace.Workspace{}, fmt.Errorf("workspace %s: %w", name, ErrNotFound)
	}
	return list[0], nil
}

func (c *Client) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	return c.request(ctx, http.MethodDelete, "/api/v1/workspaces/"+url.PathEscape(workspaceID), nil, nil)
}

func (c *Client) CreateToken(ctx context.Context, workspaceID, description string, expiresAt *int64) (retrace.AccessToken, error) {
	var token retrace.AccessToken
	body := map[string]any{"description": description}
	if expiresAt != nil {
		body["expiresAt"] = *expiresAt
	}
	err := c.request(ctx, http.MethodPost,
		"/api/v1/workspaces/"+url.PathEscape(workspaceID)+"/tokens", body, &token)
	return token, err
}

func (c *Client) RevokeToken(ctx context.Context, workspaceID, tokenID string) error {
	return c.request(ctx, http.MethodDelete,
		"/api/v1/workspaces/"+url.PathEscape(workspaceID)+"/tokens/"+url.PathEscape(tokenID), nil, nil)
}

func (c *Client) request(ctx context.Context, method, path string, body any, response any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if response != nil {
		if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	msg := payload.Error
	if msg == "" {
		msg = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, ErrForbidden)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	case http.StatusBadRequest, http.StatusConflict:
		return fmt.Errorf("%s: %w", msg, ErrBadRequest)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
}
