// Package catalog provides a client for the AI Navigator catalog API:
// taxonomy reads, entity existence checks, and entity creation, with bearer
// authentication refreshed proactively before expiry.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/internal/resilience"
)

// tokenExpiryBuffer is how long before nominal expiry a token is considered
// stale and refreshed.
const tokenExpiryBuffer = 5 * time.Minute

// Term is one taxonomy entry (category, tag, or feature).
type Term struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Entity is the catalog's persisted representation of a product.
type Entity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	WebsiteURL string `json:"website_url"`
}

// Client is the catalog API surface the pipeline consumes.
type Client interface {
	GetCategories(ctx context.Context) ([]Term, error)
	GetTags(ctx context.Context) ([]Term, error)
	GetFeatures(ctx context.Context) ([]Term, error)
	// FindEntityByWebsiteURL returns the existing entity for a canonical
	// URL, or nil when none exists.
	FindEntityByWebsiteURL(ctx context.Context, websiteURL string) (*Entity, error)
	CreateEntity(ctx context.Context, payload map[string]any) (*Entity, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithAuthBaseURL overrides the login endpoint base, which by convention
// lives one level above the API base.
func WithAuthBaseURL(u string) Option {
	return func(c *httpClient) {
		c.authBaseURL = u
	}
}

type httpClient struct {
	baseURL     string
	authBaseURL string
	email       string
	password    string
	http        *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a catalog API client. baseURL points at the API root
// (e.g. https://catalog.example.com/api).
func NewClient(baseURL, email, password string, opts ...Option) Client {
	base := strings.TrimSuffix(baseURL, "/")
	c := &httpClient{
		baseURL:     base,
		authBaseURL: strings.TrimSuffix(base, "/api"),
		email:       email,
		password:    password,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// token returns a valid bearer token, logging in again when the cached one
// is missing or within the expiry buffer.
func (c *httpClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpiryBuffer)) {
		return c.accessToken, nil
	}

	body, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", eris.Wrap(err, "catalog: marshal login")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "catalog: create login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "catalog: login")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "catalog: read login response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("catalog: login status %d: %s", resp.StatusCode, string(respBody))
	}

	var login struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody, &login); err != nil {
		return "", eris.Wrap(err, "catalog: unmarshal login response")
	}
	if login.AccessToken == "" {
		return "", eris.New("catalog: login returned empty token")
	}
	if login.ExpiresIn <= 0 {
		login.ExpiresIn = 3600
	}

	c.accessToken = login.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(login.ExpiresIn) * time.Second)
	zap.L().Debug("catalog: refreshed access token",
		zap.Time("expires_at", c.tokenExpiry),
	)

	return c.accessToken, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, int, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, 0, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, eris.Wrap(err, "catalog: marshal body")
		}
		reader = bytes.NewReader(data)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, 0, eris.Wrap(err, "catalog: create request")
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "catalog: %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, eris.Wrap(err, "catalog: read response")
	}
	return respBody, resp.StatusCode, nil
}

func (c *httpClient) getTerms(ctx context.Context, path string) ([]Term, error) {
	body, status, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("catalog: GET %s status %d: %s", path, status, string(body))
	}

	var terms []Term
	if err := json.Unmarshal(body, &terms); err != nil {
		// Tolerate an envelope with a data array.
		var envelope struct {
			Data []Term `json:"data"`
		}
		if envErr := json.Unmarshal(body, &envelope); envErr != nil {
			return nil, eris.Wrapf(err, "catalog: unmarshal %s", path)
		}
		terms = envelope.Data
	}
	return terms, nil
}

func (c *httpClient) GetCategories(ctx context.Context) ([]Term, error) {
	return c.getTerms(ctx, "/categories")
}

func (c *httpClient) GetTags(ctx context.Context) ([]Term, error) {
	return c.getTerms(ctx, "/tags")
}

func (c *httpClient) GetFeatures(ctx context.Context) ([]Term, error) {
	return c.getTerms(ctx, "/features")
}

func (c *httpClient) FindEntityByWebsiteURL(ctx context.Context, websiteURL string) (*Entity, error) {
	q := url.Values{"website_url": []string{websiteURL}}
	body, status, err := c.do(ctx, http.MethodGet, "/entities", q, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("catalog: entity lookup status %d: %s", status, string(body))
	}

	// The endpoint returns either a bare list or an envelope with a data
	// array.
	var entities []Entity
	if err := json.Unmarshal(body, &entities); err != nil {
		var envelope struct {
			Data []Entity `json:"data"`
		}
		if envErr := json.Unmarshal(body, &envelope); envErr != nil {
			return nil, eris.Wrap(err, "catalog: unmarshal entity lookup")
		}
		entities = envelope.Data
	}

	if len(entities) == 0 {
		return nil, nil
	}
	return &entities[0], nil
}

func (c *httpClient) CreateEntity(ctx context.Context, payload map[string]any) (*Entity, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/entities", nil, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		statusErr := eris.Errorf("catalog: create entity status %d: %s", status, string(body))
		if resilience.IsTransientHTTPStatus(status) {
			return nil, resilience.NewTransientError(statusErr, status)
		}
		return nil, statusErr
	}

	var entity Entity
	if err := json.Unmarshal(body, &entity); err != nil {
		return nil, eris.Wrap(err, "catalog: unmarshal created entity")
	}
	if entity.ID == "" {
		return nil, eris.New("catalog: create entity returned no id")
	}
	return &entity, nil
}

var _ Client = (*httpClient)(nil)
