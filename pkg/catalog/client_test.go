package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-navigator/ingest-cli/internal/resilience"
)

// newTestServer serves a login endpoint plus the given API handler, counting
// logins so tests can assert token reuse.
func newTestServer(t *testing.T, logins *atomic.Int32, api http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "ops@example.com", creds["email"])

		logins.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/api/", api)
	return httptest.NewServer(mux)
}

func TestGetCategoriesBareList(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/categories", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]Term{{ID: "cat-1", Name: "NLP"}})
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	terms, err := c.GetCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "cat-1", terms[0].ID)
	assert.Equal(t, int32(1), logins.Load())
}

func TestGetTagsDataEnvelope(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []Term{{ID: "tag-1", Name: "Free"}, {ID: "tag-2", Name: "API"}},
		})
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	terms, err := c.GetTags(context.Background())
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "Free", terms[0].Name)
}

func TestTokenReusedAcrossCalls(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Term{})
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	ctx := context.Background()
	_, err := c.GetCategories(ctx)
	require.NoError(t, err)
	_, err = c.GetFeatures(ctx)
	require.NoError(t, err)
	_, err = c.GetTags(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(1), logins.Load())
}

func TestTokenRefreshedWhenNearExpiry(t *testing.T) {
	var logins atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		// Expires inside the refresh buffer, so every call logs in again.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-short",
			"expires_in":   60,
		})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Term{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	ctx := context.Background()
	_, err := c.GetCategories(ctx)
	require.NoError(t, err)
	_, err = c.GetTags(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), logins.Load())
}

func TestLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "wrong")
	_, err := c.GetCategories(context.Background())
	assert.ErrorContains(t, err, "login status 401")
}

func TestLoginEmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": ""})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	_, err := c.GetCategories(context.Background())
	assert.ErrorContains(t, err, "empty token")
}

func TestFindEntityByWebsiteURL(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://magictool.ai", r.URL.Query().Get("website_url"))
		_ = json.NewEncoder(w).Encode([]Entity{
			{ID: "ent-1", Name: "MagicTool", WebsiteURL: "https://magictool.ai"},
		})
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	entity, err := c.FindEntityByWebsiteURL(context.Background(), "https://magictool.ai")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "ent-1", entity.ID)
}

func TestFindEntityNoMatchReturnsNil(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Entity{})
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	entity, err := c.FindEntityByWebsiteURL(context.Background(), "https://unknown.ai")
	require.NoError(t, err)
	assert.Nil(t, entity)
}

func TestFindEntityDataEnvelope(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []Entity{{ID: "ent-2", Name: "OtherTool"}},
		})
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	entity, err := c.FindEntityByWebsiteURL(context.Background(), "https://othertool.ai")
	require.NoError(t, err)
	require.NotNil(t, entity)
	assert.Equal(t, "ent-2", entity.ID)
}

func TestCreateEntity(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "MagicTool", payload["name"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Entity{ID: "ent-9", Name: "MagicTool"})
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	entity, err := c.CreateEntity(context.Background(), map[string]any{"name": "MagicTool"})
	require.NoError(t, err)
	assert.Equal(t, "ent-9", entity.ID)
}

func TestCreateEntityMissingID(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "MagicTool"})
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	_, err := c.CreateEntity(context.Background(), map[string]any{"name": "MagicTool"})
	assert.ErrorContains(t, err, "no id")
}

func TestCreateEntityServerErrorIsTransient(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	_, err := c.CreateEntity(context.Background(), map[string]any{"name": "MagicTool"})
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestCreateEntityClientErrorIsPermanent(t *testing.T) {
	var logins atomic.Int32
	srv := newTestServer(t, &logins, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	defer srv.Close()

	c := NewClient(srv.URL+"/api", "ops@example.com", "secret")
	_, err := c.CreateEntity(context.Background(), map[string]any{"name": "MagicTool"})
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
	assert.ErrorContains(t, err, "status 422")
}

func TestAuthBaseURLDerivedFromAPIBase(t *testing.T) {
	c := NewClient("https://catalog.example.com/api", "ops@example.com", "secret").(*httpClient)
	assert.Equal(t, "https://catalog.example.com", c.authBaseURL)

	c = NewClient("https://catalog.example.com/api/", "ops@example.com", "secret").(*httpClient)
	assert.Equal(t, "https://catalog.example.com", c.authBaseURL)

	override := NewClient("https://catalog.example.com/api", "ops@example.com", "secret",
		WithAuthBaseURL("https://auth.example.com")).(*httpClient)
	assert.Equal(t, "https://auth.example.com", override.authBaseURL)
}
