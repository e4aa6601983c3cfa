package ozone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"modbridge/internal/domain/bridge"
	"modbridge/internal/ports"
)

const (
	requestTimeout = 10 * time.Second
	healthTimeout  = 5 * time.Second

	nsidQueryEvents   = "tools.ozone.moderation.queryEvents"
	nsidEmitEvent     = "tools.ozone.moderation.emitEvent"
	nsidQueryStatuses = "tools.ozone.moderation.queryStatuses"

	// Error bodies are kept short in wrapped errors. Only this truncated text
	// is carried on HTTPError, so the audit row records it, not the full payload.
	maxErrorBodyBytes = 2048
)

// Client is a stateless XRPC client bound to one tenant credential. Every
// authenticated call mints a fresh service token.
type Client struct {
	cred         ports.TenantCredential
	baseURL      string
	httpClient   *http.Client
	healthClient *http.Client
	now          func() time.Time
}

// NewClient validates the credential's service URL and builds a client.
func NewClient(cred ports.TenantCredential) (*Client, error) {
	u, err := url.Parse(cred.ServiceURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: service url %q is not absolute", bridge.ErrInvalidCredential, cred.ServiceURL)
	}

	return &Client{
		cred:         cred,
		baseURL:      strings.TrimRight(cred.ServiceURL, "/"),
		httpClient:   &http.Client{Timeout: requestTimeout},
		healthClient: &http.Client{Timeout: healthTimeout},
		now:          time.Now,
	}, nil
}

// QueryEvents pages over the labeler moderation event stream.
func (c *Client) QueryEvents(ctx context.Context, params QueryEventsParams) (*QueryEventsResponse, error) {
	query := url.Values{}
	if params.Cursor != "" {
		query.Set("cursor", params.Cursor)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	for _, t := range params.Types {
		query.Add("types", t)
	}
	if params.Subject != "" {
		query.Set("subject", params.Subject)
	}
	if params.SortDirection != "" {
		query.Set("sortDirection", params.SortDirection)
	}
	if params.CreatedAfter != "" {
		query.Set("createdAfter", params.CreatedAfter)
	}
	if params.CreatedBefore != "" {
		query.Set("createdBefore", params.CreatedBefore)
	}

	var out QueryEventsResponse
	if _, err := c.doJSON(ctx, http.MethodGet, nsidQueryEvents, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmitEvent submits one moderation event. The verbatim response body is
// returned on EmitResponse.Raw for auditing.
func (c *Client) EmitEvent(ctx context.Context, req EmitRequest) (*EmitResponse, error) {
	if req.CreatedBy == "" {
		req.CreatedBy = c.cred.DID
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal emit request: %w", err)
	}

	var out EmitResponse
	raw, err := c.doJSON(ctx, http.MethodPost, nsidEmitEvent, nil, body, &out)
	if err != nil {
		return nil, err
	}
	out.Raw = raw
	return &out, nil
}

// QueryStatuses pages over subject review statuses.
func (c *Client) QueryStatuses(ctx context.Context, params QueryStatusesParams) (*QueryStatusesResponse, error) {
	query := url.Values{}
	if params.Cursor != "" {
		query.Set("cursor", params.Cursor)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Subject != "" {
		query.Set("subject", params.Subject)
	}
	if params.ReviewState != "" {
		query.Set("reviewState", params.ReviewState)
	}

	var out QueryStatusesResponse
	if _, err := c.doJSON(ctx, http.MethodGet, nsidQueryStatuses, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the labeler. Unauthenticated, tighter timeout.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/xrpc/_health", nil)
	if err != nil {
		return nil, fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.healthClient.Do(req)
	if err != nil {
		return nil, &bridge.TransportError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &bridge.TransportError{Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &bridge.HTTPError{Status: resp.StatusCode, Body: truncate(body)}
	}

	var out HealthResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", bridge.ErrMalformedResponse, err)
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method string, nsid string, query url.Values, body []byte, out any) (json.RawMessage, error) {
	endpoint := c.baseURL + "/xrpc/" + nsid
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", nsid, err)
	}

	token, err := MintToken(c.cred, c.now())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &bridge.TransportError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &bridge.TransportError{Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &bridge.HTTPError{Status: resp.StatusCode, Body: truncate(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("%w: decode %s response: %v", bridge.ErrMalformedResponse, nsid, err)
		}
	}
	return respBody, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return string(body)
}
