package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/raaf17/assesment-test-imp/internal/apperr"
	"github.com/raaf17/assesment-test-imp/internal/models"
	"github.com/raaf17/assesment-test-imp/internal/services"
)

// Client calls the posts API. Every request goes through the gateway
// transport: the current token is attached before transmission, and a
// 401 on any endpoint except login tears the session down exactly once
// and fires OnUnauthorized before the caller sees the response.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *SessionStore

	// OnUnauthorized runs after an automatic session teardown,
	// typically to navigate to the login screen.
	OnUnauthorized func()

	mu       sync.Mutex
	tornDown bool
}

// New creates a Client for the API at baseURL, persisting its session
// through store.
func New(baseURL string, store *SessionStore) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: store,
	}
	c.httpc = &http.Client{Transport: &gatewayTransport{client: c}}
	return c
}

// gatewayTransport is the per-request interceptor.
type gatewayTransport struct {
	client *Client
	base   http.RoundTripper
}

func (t *gatewayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.client.session.Token(); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// A 401 from the login endpoint is a failed login, not a dead
	// session; it must not tear anything down.
	if resp.StatusCode == http.StatusUnauthorized && !strings.HasSuffix(req.URL.Path, "/auth/login") {
		t.client.teardown()
	}
	return resp, nil
}

// teardown clears the session and fires OnUnauthorized once per
// session generation; concurrent 401s collapse into a single run.
func (c *Client) teardown() {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return
	}
	c.tornDown = true
	c.mu.Unlock()

	_ = c.session.Clear()
	if c.OnUnauthorized != nil {
		c.OnUnauthorized()
	}
}

func (c *Client) resetTeardown() {
	c.mu.Lock()
	c.tornDown = false
	c.mu.Unlock()
}

// apiEnvelope mirrors the server's uniform response shape.
type apiEnvelope struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    json.RawMessage      `json:"data"`
	Errors  map[string]string    `json:"errors"`
	Meta    *services.Pagination `json:"meta"`
}

// authData is the payload of register and login responses.
type authData struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*apiEnvelope, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	env := &apiEnvelope{}
	if err := json.NewDecoder(resp.Body).Decode(env); err != nil && err != io.EOF {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return env, resp.StatusCode, nil
}

// errFrom converts a failure envelope into the closed error set.
func errFrom(status int, env *apiEnvelope) error {
	message := env.Message
	if message == "" {
		message = http.StatusText(status)
	}
	switch status {
	case http.StatusUnauthorized:
		return apperr.Auth(message)
	case http.StatusForbidden:
		return apperr.Forbidden(message)
	case http.StatusNotFound:
		return apperr.NotFound(message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.Validation(message, env.Errors)
	default:
		return apperr.Internal(message, nil)
	}
}

// Register creates an account, stores the returned session and returns
// the new user.
func (c *Client) Register(ctx context.Context, name, email, password, passwordConfirmation string) (models.User, error) {
	env, status, err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": passwordConfirmation,
	})
	if err != nil {
		return models.User{}, err
	}
	if status != http.StatusCreated {
		return models.User{}, errFrom(status, env)
	}

	var data authData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return models.User{}, fmt.Errorf("decode auth data: %w", err)
	}
	if err := c.session.Save(data.Token, &data.User); err != nil {
		return models.User{}, err
	}
	c.resetTeardown()
	return data.User, nil
}

// Login authenticates and stores the returned session. Bad credentials
// come back as an auth error without touching any existing session.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	env, status, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return models.User{}, err
	}
	if status != http.StatusOK {
		return models.User{}, errFrom(status, env)
	}

	var data authData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return models.User{}, fmt.Errorf("decode auth data: %w", err)
	}
	if err := c.session.Save(data.Token, &data.User); err != nil {
		return models.User{}, err
	}
	c.resetTeardown()
	return data.User, nil
}

// Logout tells the server to revoke the token and clears the local
// session either way. Logging out without a session is a no-op.
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Token() != "" {
		if _, _, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil); err != nil {
			return err
		}
	}
	if err := c.session.Clear(); err != nil {
		return err
	}
	c.resetTeardown()
	return nil
}

// Me fetches the authenticated user from the server.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	env, status, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return models.User{}, err
	}
	if status != http.StatusOK {
		return models.User{}, errFrom(status, env)
	}

	var user models.User
	if err := json.Unmarshal(env.Data, &user); err != nil {
		return models.User{}, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}

// Refresh obtains a token with a later expiry and stores it alongside
// the existing profile.
func (c *Client) Refresh(ctx context.Context) error {
	env, status, err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errFrom(status, env)
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}

	_, profile, err := c.session.Load()
	if err != nil {
		return err
	}
	if err := c.session.Save(data.Token, profile); err != nil {
		return err
	}
	c.resetTeardown()
	return nil
}

// IsAuthenticatedLocally is the advisory fast-path check; the server
// re-derives authorization from the token on every request regardless.
func (c *Client) IsAuthenticatedLocally() bool {
	return c.session.IsAuthenticatedLocally()
}

// CanMutate reports whether mutation controls should be shown for
// post. It is the same predicate the server evaluates, but this
// evaluation carries no authority; the server decides again on the
// actual request.
func (c *Client) CanMutate(post models.Post) bool {
	_, profile, err := c.session.Load()
	if err != nil || profile == nil {
		return false
	}
	return services.UserOwnsPost(post, profile.ID)
}

// ListPosts fetches one page of posts.
func (c *Client) ListPosts(ctx context.Context, page, perPage int) ([]models.Post, services.Pagination, error) {
	path := fmt.Sprintf("/api/posts?page=%d&per_page=%d", page, perPage)
	env, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, services.Pagination{}, err
	}
	if status != http.StatusOK {
		return nil, services.Pagination{}, errFrom(status, env)
	}

	var posts []models.Post
	if err := json.Unmarshal(env.Data, &posts); err != nil {
		return nil, services.Pagination{}, fmt.Errorf("decode posts: %w", err)
	}
	meta := services.Pagination{}
	if env.Meta != nil {
		meta = *env.Meta
	}
	return posts, meta, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id string) (models.Post, error) {
	env, status, err := c.do(ctx, http.MethodGet, "/api/posts/"+id, nil)
	if err != nil {
		return models.Post{}, err
	}
	if status != http.StatusOK {
		return models.Post{}, errFrom(status, env)
	}

	var post models.Post
	if err := json.Unmarshal(env.Data, &post); err != nil {
		return models.Post{}, fmt.Errorf("decode post: %w", err)
	}
	return post, nil
}

// CreatePost creates a post owned by the authenticated user.
func (c *Client) CreatePost(ctx context.Context, title, content string) (models.Post, error) {
	env, status, err := c.do(ctx, http.MethodPost, "/api/posts", map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return models.Post{}, err
	}
	if status != http.StatusCreated {
		return models.Post{}, errFrom(status, env)
	}

	var post models.Post
	if err := json.Unmarshal(env.Data, &post); err != nil {
		return models.Post{}, fmt.Errorf("decode post: %w", err)
	}
	return post, nil
}

// UpdatePost replaces the title and content of an owned post.
func (c *Client) UpdatePost(ctx context.Context, id, title, content string) (models.Post, error) {
	env, status, err := c.do(ctx, http.MethodPut, "/api/posts/"+id, map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return models.Post{}, err
	}
	if status != http.StatusOK {
		return models.Post{}, errFrom(status, env)
	}

	var post models.Post
	if err := json.Unmarshal(env.Data, &post); err != nil {
		return models.Post{}, fmt.Errorf("decode post: %w", err)
	}
	return post, nil
}

// DeletePost removes an owned post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	env, status, err := c.do(ctx, http.MethodDelete, "/api/posts/"+id, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errFrom(status, env)
	}
	return nil
}
