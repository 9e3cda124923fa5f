// Package hubclient is a typed client for a running hubsync server.
package hubclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/scrapers/hub"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoSnapshot is returned by Cached when the server has not synced yet.
var ErrNoSnapshot = errors.New("server has no cached snapshot")

// APIError is a non 2xx response from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hubsync server: %d %s", e.Status, e.Detail)
}

// Unauthorized reports whether the server could not log into the portal.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Client struct {
	http *resty.Client
}

type Options struct {
	BaseURL string
	// Timeout bounds a single call, a full sync drives a browser through
	// several pages so the default is generous.
	Timeout time.Duration
}

func New(opts Options, tel telemetry.API) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("accept", "application/json")
	telemetry.InstrumentResty(client, telemetry.NewScopedAPI("hubclient", tel))
	return &Client{http: client}
}

func call[T any](ctx context.Context, req *resty.Request, method, path string) (T, error) {
	var out T
	res, err := req.
		SetContext(ctx).
		SetError(&errorBody{}).
		Execute(method, path)
	if err != nil {
		return out, err
	}
	if res.IsError() {
		detail := res.Status()
		if body, ok := res.Error().(*errorBody); ok && body.Detail != "" {
			detail = body.Detail
		}
		return out, &APIError{Status: res.StatusCode(), Detail: detail}
	}
	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		return out, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context) (LoginResult, error) {
	return call[LoginResult](ctx, c.http.R(), http.MethodPost, "/api/hub/login")
}

// Sync runs a full sync on the server, which also persists it.
func (c *Client) Sync(ctx context.Context) (hub.SyncSnapshot, error) {
	return call[hub.SyncSnapshot](ctx, c.http.R(), http.MethodGet, "/api/hub/sync")
}

// Cached reads the last persisted sync without touching the portal.
func (c *Client) Cached(ctx context.Context) (hub.SyncSnapshot, error) {
	raw, err := call[json.RawMessage](ctx, c.http.R(), http.MethodGet, "/api/hub/cached")
	if err != nil {
		return hub.SyncSnapshot{}, err
	}
	var errBody errorBody
	if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
		return hub.SyncSnapshot{}, ErrNoSnapshot
	}
	var snap hub.SyncSnapshot
	err = json.Unmarshal(raw, &snap)
	if err != nil {
		return hub.SyncSnapshot{}, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return snap, nil
}

func (c *Client) Registrations(ctx context.Context) (hub.Registrations, error) {
	return call[hub.Registrations](ctx, c.http.R(), http.MethodGet, "/api/hub/registrations")
}

func (c *Client) UpcomingEvents(ctx context.Context) (hub.EventListing, error) {
	return call[hub.EventListing](ctx, c.http.R(), http.MethodGet, "/api/hub/events")
}

func (c *Client) PersonalSnapshot(ctx context.Context) (hub.PersonalSnapshot, error) {
	return call[hub.PersonalSnapshot](ctx, c.http.R(), http.MethodGet, "/api/hub/snapshot")
}

func (c *Client) SearchEvents(ctx context.Context, term string) (hub.EventListing, error) {
	req := c.http.R().SetQueryParam("q", term)
	return call[hub.EventListing](ctx, req, http.MethodGet, "/api/hub/search-events")
}

func (c *Client) MyGroups(ctx context.Context) (hub.GroupListing, error) {
	return call[hub.GroupListing](ctx, c.http.R(), http.MethodGet, "/api/hub/my-groups")
}

func (c *Client) Register(ctx context.Context, eventURL string) (hub.RegisterResult, error) {
	req := c.http.R().
		SetHeader("content-type", "application/json").
		SetBody(map[string]string{"event_url": eventURL})
	return call[hub.RegisterResult](ctx, req, http.MethodPost, "/api/hub/register")
}

func (c *Client) SearchMembers(ctx context.Context, query, region string) ([]hub.MemberRecord, error) {
	req := c.http.R().SetQueryParams(map[string]string{
		"q":      query,
		"region": region,
	})
	return call[[]hub.MemberRecord](ctx, req, http.MethodGet, "/api/hub/search-members")
}
