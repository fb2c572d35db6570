// Package github implements the remote tracker on the GitHub REST API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/git-epic/internal/domain"
)

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client // Optional; defaults to a client with Timeout
	Logger     domain.Logger
	BaseURL    string
	Owner      string
	Repo       string
	Token      string
	Timeout    time.Duration
}

// Client creates and updates issues of one repository.
type Client struct {
	http    *http.Client
	logger  domain.Logger
	baseURL string
	owner   string
	repo    string
	token   string
}

// NewClient creates a new Client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = domain.DefaultAPIURL
	}
	return &Client{
		http:    httpClient,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		owner:   opts.Owner,
		repo:    opts.Repo,
		token:   opts.Token,
	}
}

type issueRequest struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	State  string   `json:"state,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

type issueResponse struct {
	Number int `json:"number"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// CreateIssue creates an issue and returns its number.
func (c *Client) CreateIssue(ctx context.Context, draft domain.IssueDraft) (int, error) {
	var out issueResponse
	err := c.do(ctx, "create", http.MethodPost, c.issuesPath(), issueRequest{
		Title:  draft.Title,
		Body:   draft.Body,
		Labels: draft.Labels,
	}, &out)
	if err != nil {
		return 0, err
	}
	if out.Number <= 0 {
		return 0, domain.NewRemoteError(domain.RemotePermanent, "create", errors.New("response has no issue number"))
	}
	c.logger.Debug(out.Number, "github", "created issue")
	return out.Number, nil
}

// UpdateIssue overwrites title, body and state of an issue.
func (c *Client) UpdateIssue(ctx context.Context, number int, update domain.IssueUpdate) error {
	path := c.issuesPath() + "/" + strconv.Itoa(number)
	err := c.do(ctx, "update", http.MethodPatch, path, issueRequest{
		Title: update.Title,
		Body:  update.Body,
		State: string(update.State),
	}, nil)
	if err != nil {
		return err
	}
	c.logger.Debug(number, "github", "updated issue")
	return nil
}

func (c *Client) issuesPath() string {
	return fmt.Sprintf("/repos/%s/%s/issues", c.owner, c.repo)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.NewRemoteError(domain.RemotePermanent, op, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domain.NewRemoteError(domain.RemotePermanent, op, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "git-epic")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failures and timeouts
		return domain.NewRemoteError(domain.RemoteTransient, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewRemoteError(domain.RemoteTransient, op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 300 {
		return classify(op, resp, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return domain.NewRemoteError(domain.RemotePermanent, op, fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

// classify maps a non-2xx response onto a RemoteError kind.
func classify(op string, resp *http.Response, data []byte) error {
	msg := strings.TrimSpace(string(data))
	var er errorResponse
	if json.Unmarshal(data, &er) == nil && er.Message != "" {
		msg = er.Message
	}

	kind := domain.RemotePermanent
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = domain.RemoteRateLimited
	case resp.StatusCode == http.StatusForbidden &&
		(resp.Header.Get("X-RateLimit-Remaining") == "0" || strings.Contains(strings.ToLower(msg), "rate limit")):
		kind = domain.RemoteRateLimited
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode >= 500:
		kind = domain.RemoteTransient
	}

	return &domain.RemoteError{
		Kind:       kind,
		Op:         op,
		StatusCode: resp.StatusCode,
		Err:        errors.New(msg),
	}
}

// Ensure Client implements domain.RemoteTracker.
var _ domain.RemoteTracker = (*Client)(nil)
