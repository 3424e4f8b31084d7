// Package client talks to a running storymap server over its form-encoded
// API. It keeps the session cookie between calls and implements
// board.Persister.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/javaniecampbell/storymap/internal/errs"
	"github.com/javaniecampbell/storymap/internal/model"
	"github.com/javaniecampbell/storymap/internal/service"
)

// ErrNotAuthenticated is returned when the server redirects to its login
// page.
var ErrNotAuthenticated = errors.New("client: not authenticated")

type Client struct {
	base *url.URL
	http *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its jar and redirect policy
// are overwritten.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid server url")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cookie jar")
	}

	c := &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.Jar = jar
	// redirects carry meaning (login success, auth required), so they are
	// returned as they are
	c.http.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c, nil
}

func (c *Client) url(path string) string {
	return c.base.String() + path
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusFound:
		return ErrNotAuthenticated
	case resp.StatusCode == http.StatusSeeOther:
		return nil
	case resp.StatusCode >= 400:
		return decodeError(resp)
	}

	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", req.URL.Path)
	}
	return nil
}

// decodeError returns the server's error body as *errs.HTTPError.
func decodeError(resp *http.Response) error {
	httpErr := &errs.HTTPError{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(httpErr); err != nil || httpErr.Message == "" {
		httpErr.Message = http.StatusText(resp.StatusCode)
	}
	return httpErr
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

// Login starts a session for the remaining calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.post(ctx, "/login", url.Values{"email": {email}, "password": {password}}, nil)
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.post(ctx, "/register", url.Values{"email": {email}, "password": {password}}, nil)
}

func (c *Client) Project(ctx context.Context, projectID string) (*service.ProjectDetail, error) {
	var detail service.ProjectDetail
	if err := c.get(ctx, "/projects/"+url.PathEscape(projectID), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

type storyResponse struct {
	Story *model.UserStory `json:"story"`
}

func (c *Client) projectAction(ctx context.Context, projectID, action string, form url.Values) (*model.UserStory, error) {
	form.Set("_action", action)

	var res storyResponse
	if err := c.post(ctx, "/projects/"+url.PathEscape(projectID), form, &res); err != nil {
		return nil, err
	}
	if res.Story == nil {
		return nil, fmt.Errorf("%s: response has no story", action)
	}
	return res.Story, nil
}

func (c *Client) UpdateStoryType(ctx context.Context, projectID, storyID string, t model.StoryType) (*model.UserStory, error) {
	return c.projectAction(ctx, projectID, "updateStoryType", url.Values{"storyId": {storyID}, "newType": {string(t)}})
}

func (c *Client) AttachPersona(ctx context.Context, projectID, storyID, personaID string) (*model.UserStory, error) {
	return c.projectAction(ctx, projectID, "mapPersonaToStory", url.Values{"storyId": {storyID}, "personaId": {personaID}})
}

func (c *Client) DetachPersona(ctx context.Context, projectID, storyID, personaID string) (*model.UserStory, error) {
	return c.projectAction(ctx, projectID, "removePersonaFromStory", url.Values{"storyId": {storyID}, "personaId": {personaID}})
}

type projectResponse struct {
	Project *model.Project `json:"project"`
}

func (c *Client) CreateProject(ctx context.Context, name, description string) (*model.Project, error) {
	var res projectResponse
	form := url.Values{"_action": {"createProject"}, "name": {name}, "description": {description}}
	if err := c.post(ctx, "/projects", form, &res); err != nil {
		return nil, err
	}
	return res.Project, nil
}

func (c *Client) CreateStory(ctx context.Context, projectID, title string, t model.StoryType) (*model.UserStory, error) {
	return c.projectAction(ctx, projectID, "createStory", url.Values{"title": {title}, "type": {string(t)}})
}

type personaResponse struct {
	Persona *model.Persona `json:"persona"`
}

func (c *Client) CreatePersona(ctx context.Context, projectID, name string) (*model.Persona, error) {
	var res personaResponse
	form := url.Values{"_action": {"createPersona"}, "name": {name}}
	if err := c.post(ctx, "/projects/"+url.PathEscape(projectID), form, &res); err != nil {
		return nil, err
	}
	return res.Persona, nil
}
