package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/luxstudio/cuegen/lighting"
)

// maxBodySize limits backend response bodies.
const maxBodySize = 32 * 1024 * 1024 // 32MB; projects nest scenes and cue lists

// Client is an HTTP JSON adapter for the backend persistence service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithAPIKey sets a bearer token sent on every request.
func WithAPIKey(key string) ClientOption {
	return func(client *Client) {
		client.apiKey = key
	}
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ Service = (*Client)(nil)

// do executes one request and decodes the JSON response into out (when out
// is non-nil). A 404 becomes a NotFoundError carrying entity and id so
// callers can errors.Is against ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out any, entity, id string) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NewNotFound(entity, id)
	case resp.StatusCode >= 400:
		msg := string(data)
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		return fmt.Errorf("backend error (status %d): %s", resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode backend response: %w", err)
		}
	}
	return nil
}

// GetProject fetches a project with its nested fixtures, scenes and cue lists.
func (c *Client) GetProject(ctx context.Context, id string) (*lighting.Project, error) {
	var p lighting.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &p, "project", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetCueList(ctx context.Context, id string) (*lighting.CueList, error) {
	var cl lighting.CueList
	if err := c.do(ctx, http.MethodGet, "/api/cue-lists/"+url.PathEscape(id), nil, &cl, "cue list", id); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *Client) CreateCueList(ctx context.Context, name, description, projectID string) (*lighting.CueList, error) {
	body := map[string]string{"name": name, "description": description, "projectId": projectID}
	var cl lighting.CueList
	if err := c.do(ctx, http.MethodPost, "/api/cue-lists", body, &cl, "project", projectID); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *Client) UpdateCueList(ctx context.Context, id string, req UpdateCueListRequest) (*lighting.CueList, error) {
	var cl lighting.CueList
	if err := c.do(ctx, http.MethodPatch, "/api/cue-lists/"+url.PathEscape(id), req, &cl, "cue list", id); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (c *Client) DeleteCueList(ctx context.Context, id string) (bool, error) {
	if err := c.do(ctx, http.MethodDelete, "/api/cue-lists/"+url.PathEscape(id), nil, nil, "cue list", id); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) CreateCue(ctx context.Context, req CreateCueRequest) (*lighting.Cue, error) {
	var cue lighting.Cue
	if err := c.do(ctx, http.MethodPost, "/api/cues", req, &cue, "cue list", req.CueListID); err != nil {
		return nil, err
	}
	return &cue, nil
}

func (c *Client) UpdateCue(ctx context.Context, id string, req UpdateCueRequest) (*lighting.Cue, error) {
	var cue lighting.Cue
	if err := c.do(ctx, http.MethodPatch, "/api/cues/"+url.PathEscape(id), req, &cue, "cue", id); err != nil {
		return nil, err
	}
	return &cue, nil
}

func (c *Client) DeleteCue(ctx context.Context, id string) (bool, error) {
	if err := c.do(ctx, http.MethodDelete, "/api/cues/"+url.PathEscape(id), nil, nil, "cue", id); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) BulkUpdateCues(ctx context.Context, req BulkCueUpdate) ([]lighting.Cue, error) {
	var cues []lighting.Cue
	if err := c.do(ctx, http.MethodPost, "/api/cues/bulk-update", req, &cues, "cue", ""); err != nil {
		return nil, err
	}
	return cues, nil
}

func (c *Client) GetFixtureInstances(ctx context.Context, filter FixtureFilter, page, perPage int) (*FixturePage, error) {
	page, perPage = lighting.NormalizePage(page, perPage)

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))
	if filter.ProjectID != "" {
		q.Set("projectId", filter.ProjectID)
	}
	if filter.NamePattern != "" {
		q.Set("name", filter.NamePattern)
	}
	if filter.Type != "" {
		q.Set("type", filter.Type)
	}
	if filter.Tag != "" {
		q.Set("tag", filter.Tag)
	}

	var fp FixturePage
	if err := c.do(ctx, http.MethodGet, "/api/fixtures?"+q.Encode(), nil, &fp, "fixture", ""); err != nil {
		return nil, err
	}
	return &fp, nil
}

func (c *Client) GetFixtureInstance(ctx context.Context, id string) (*lighting.FixtureInstance, error) {
	var f lighting.FixtureInstance
	if err := c.do(ctx, http.MethodGet, "/api/fixtures/"+url.PathEscape(id), nil, &f, "fixture", id); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) CreateFixtureInstance(ctx context.Context, req CreateFixtureRequest) (*lighting.FixtureInstance, error) {
	var f lighting.FixtureInstance
	if err := c.do(ctx, http.MethodPost, "/api/fixtures", req, &f, "project", req.ProjectID); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) UpdateFixtureInstance(ctx context.Context, id string, req UpdateFixtureRequest) (*lighting.FixtureInstance, error) {
	var f lighting.FixtureInstance
	if err := c.do(ctx, http.MethodPatch, "/api/fixtures/"+url.PathEscape(id), req, &f, "fixture", id); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) DeleteFixtureInstance(ctx context.Context, id string) (bool, error) {
	if err := c.do(ctx, http.MethodDelete, "/api/fixtures/"+url.PathEscape(id), nil, nil, "fixture", id); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) BulkUpdateFixtures(ctx context.Context, req BulkFixtureUpdate) ([]lighting.FixtureInstance, error) {
	var fixtures []lighting.FixtureInstance
	if err := c.do(ctx, http.MethodPost, "/api/fixtures/bulk-update", req, &fixtures, "fixture", ""); err != nil {
		return nil, err
	}
	return fixtures, nil
}

func (c *Client) GetFixtureDefinitions(ctx context.Context) ([]lighting.FixtureDefinition, error) {
	var defs []lighting.FixtureDefinition
	if err := c.do(ctx, http.MethodGet, "/api/fixture-definitions", nil, &defs, "fixture definition", ""); err != nil {
		return nil, err
	}
	return defs, nil
}

func (c *Client) CreateFixtureDefinition(ctx context.Context, def lighting.FixtureDefinition) (*lighting.FixtureDefinition, error) {
	var created lighting.FixtureDefinition
	if err := c.do(ctx, http.MethodPost, "/api/fixture-definitions", def, &created, "fixture definition", def.ID); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) StartCueList(ctx context.Context, cueListID string, startIndex int) (*Session, error) {
	body := map[string]any{"cueListId": cueListID, "startIndex": startIndex}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/api/playback/start", body, &s, "cue list", cueListID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) NextCue(ctx context.Context, session Session) (*PlaybackStatus, error) {
	return c.playbackStep(ctx, session, "next", nil)
}

func (c *Client) PreviousCue(ctx context.Context, session Session) (*PlaybackStatus, error) {
	return c.playbackStep(ctx, session, "previous", nil)
}

func (c *Client) GoToCue(ctx context.Context, session Session, cueIndex int) (*PlaybackStatus, error) {
	return c.playbackStep(ctx, session, "go-to", map[string]any{"cueIndex": cueIndex})
}

func (c *Client) StopCueList(ctx context.Context, session Session) error {
	return c.do(ctx, http.MethodPost,
		"/api/playback/"+url.PathEscape(session.ID)+"/stop", nil, nil, "playback session", session.ID)
}

func (c *Client) GetPlaybackStatus(ctx context.Context, session Session) (*PlaybackStatus, error) {
	var st PlaybackStatus
	if err := c.do(ctx, http.MethodGet,
		"/api/playback/"+url.PathEscape(session.ID), nil, &st, "playback session", session.ID); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) GetCurrentActiveScene(ctx context.Context, session Session) (*lighting.Scene, error) {
	var s lighting.Scene
	if err := c.do(ctx, http.MethodGet,
		"/api/playback/"+url.PathEscape(session.ID)+"/active-scene", nil, &s, "playback session", session.ID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) playbackStep(ctx context.Context, session Session, action string, body map[string]any) (*PlaybackStatus, error) {
	var st PlaybackStatus
	path := "/api/playback/" + url.PathEscape(session.ID) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, body, &st, "playback session", session.ID); err != nil {
		return nil, err
	}
	return &st, nil
}
