package api

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/stockroom-be/internal/auth"
	"github.com/isdelr/stockroom-be/internal/config"
	"github.com/isdelr/stockroom-be/internal/database"
	"github.com/isdelr/stockroom-be/internal/models"
	"github.com/isdelr/stockroom-be/internal/services"
)

type testEnv struct {
	client *resty.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		TokenSecret:        "test-secret",
		TokenAlgorithm:     "HS256",
		TokenExpireMinutes: 30,
	}

	userService := services.NewUserService(db)
	itemService := services.NewItemService(db)
	authn := auth.New(cfg, userService)

	srv := httptest.NewServer(NewRouter(authn, userService, itemService))
	t.Cleanup(srv.Close)

	return &testEnv{client: resty.New().SetBaseURL(srv.URL)}
}

func (e *testEnv) register(t *testing.T, email, password string) models.User {
	t.Helper()

	var user models.User
	resp, err := e.client.R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&user).
		Post("/v1/auth/register")
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode(), resp.String())
	return user
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	resp, err := e.client.R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&token).
		Post("/v1/auth/login")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode(), resp.String())
	require.Equal(t, "bearer", token.TokenType)
	return token.AccessToken
}

func (e *testEnv) createItem(t *testing.T, token, title string, price float64, quantity int) models.Item {
	t.Helper()

	var item models.Item
	resp, err := e.client.R().
		SetAuthToken(token).
		SetBody(map[string]any{"title": title, "price": price, "quantity": quantity}).
		SetResult(&item).
		Post("/v1/items/")
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode(), resp.String())
	return item
}

func TestServiceEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for path, want := range map[string]string{
		"/":       "Welcome to the Inventory Management API",
		"/v1":     "Welcome to the Inventory Management API v1",
		"/health": "healthy",
	} {
		resp, err := env.client.R().Get(path)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode())
		assert.Contains(t, resp.String(), want)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user := env.register(t, "alice@example.com", "s3cret")
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)

	// Duplicate registration conflicts.
	resp, err := env.client.R().
		SetBody(map[string]string{"email": "alice@example.com", "password": "other"}).
		Post("/v1/auth/register")
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode())

	token := env.login(t, "alice@example.com", "s3cret")
	assert.NotEmpty(t, token)

	resp, err = env.client.R().
		SetBody(map[string]string{"email": "alice@example.com", "password": "wrong"}).
		Post("/v1/auth/login")
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode())
}

func TestUsersMe(t *testing.T) {
	env := newTestEnv(t)

	created := env.register(t, "alice@example.com", "s3cret")
	token := env.login(t, "alice@example.com", "s3cret")
	env.createItem(t, token, "Widget", 9.99, 5)

	var me models.User
	resp, err := env.client.R().SetAuthToken(token).SetResult(&me).Get("/v1/users/me/")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode(), resp.String())
	assert.Equal(t, created.ID, me.ID)
	require.Len(t, me.Items, 1)
	assert.Equal(t, "Widget", me.Items[0].Title)

	// Without a token the endpoint challenges for credentials.
	resp, err = env.client.R().Get("/v1/users/me/")
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode())
	assert.Equal(t, "Bearer", resp.Header().Get("WWW-Authenticate"))

	// The by-ID read is public.
	var public models.User
	resp, err = env.client.R().SetResult(&public).Get(fmt.Sprintf("/v1/users/%d", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, created.Email, public.Email)

	resp, err = env.client.R().Get("/v1/users/999999")
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode())
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "alice@example.com", "s3cret")
	token := env.login(t, "alice@example.com", "s3cret")

	// An empty partial update changes nothing.
	var unchanged models.User
	resp, err := env.client.R().
		SetAuthToken(token).
		SetBody(map[string]any{}).
		SetResult(&unchanged).
		Put("/v1/users/me/")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode(), resp.String())
	assert.Equal(t, "alice@example.com", unchanged.Email)
	assert.True(t, unchanged.IsActive)

	// Self-deactivation takes effect on the very next request.
	resp, err = env.client.R().
		SetAuthToken(token).
		SetBody(map[string]any{"is_active": false}).
		Put("/v1/users/me/")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode(), resp.String())

	resp, err = env.client.R().SetAuthToken(token).Get("/v1/users/me/")
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode())
}

func TestItemCRUD(t *testing.T) {
	env := newTestEnv(t)

	owner := env.register(t, "alice@example.com", "s3cret")
	token := env.login(t, "alice@example.com", "s3cret")

	created := env.createItem(t, token, "Widget", 9.99, 5)
	assert.Equal(t, owner.ID, created.OwnerID)

	var got models.Item
	resp, err := env.client.R().SetResult(&got).Get(fmt.Sprintf("/v1/items/%d", created.ID))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, created, got)

	var updated models.Item
	resp, err = env.client.R().
		SetAuthToken(token).
		SetBody(map[string]any{"price": 12.50}).
		SetResult(&updated).
		Put(fmt.Sprintf("/v1/items/%d", created.ID))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode(), resp.String())
	assert.Equal(t, 12.50, updated.Price)
	assert.Equal(t, "Widget", updated.Title)
	assert.Equal(t, 5, updated.Quantity)

	var deleted models.Item
	resp, err = env.client.R().
		SetAuthToken(token).
		SetResult(&deleted).
		Delete(fmt.Sprintf("/v1/items/%d", created.ID))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode(), resp.String())
	assert.Equal(t, created.ID, deleted.ID)

	resp, err = env.client.R().Get(fmt.Sprintf("/v1/items/%d", created.ID))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode())
}

func TestItemOwnership(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "alice@example.com", "s3cret")
	env.register(t, "bob@example.com", "s3cret")
	aliceToken := env.login(t, "alice@example.com", "s3cret")
	bobToken := env.login(t, "bob@example.com", "s3cret")

	item := env.createItem(t, aliceToken, "Alice's Widget", 9.99, 1)

	// A non-owner cannot mutate, however valid their token.
	resp, err := env.client.R().
		SetAuthToken(bobToken).
		SetBody(map[string]any{"title": "Stolen"}).
		Put(fmt.Sprintf("/v1/items/%d", item.ID))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode())

	resp, err = env.client.R().
		SetAuthToken(bobToken).
		Delete(fmt.Sprintf("/v1/items/%d", item.ID))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode())

	// Absence wins over ownership: a missing item is 404 for everyone.
	resp, err = env.client.R().
		SetAuthToken(bobToken).
		SetBody(map[string]any{"title": "Ghost"}).
		Put("/v1/items/999999")
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode())

	// The item is untouched.
	var got models.Item
	resp, err = env.client.R().SetResult(&got).Get(fmt.Sprintf("/v1/items/%d", item.ID))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, "Alice's Widget", got.Title)
}

func TestItemsPagination(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "alice@example.com", "s3cret")
	token := env.login(t, "alice@example.com", "s3cret")
	for i := 1; i <= 5; i++ {
		env.createItem(t, token, fmt.Sprintf("Item %d", i), float64(i), i)
	}

	var page []models.Item
	resp, err := env.client.R().SetResult(&page).Get("/v1/items/?skip=0&limit=2")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	require.Len(t, page, 2)
	assert.Equal(t, "Item 1", page[0].Title)
	assert.Equal(t, "Item 2", page[1].Title)

	resp, err = env.client.R().SetResult(&page).Get("/v1/items/?skip=4&limit=2")
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode())
	require.Len(t, page, 1)
	assert.Equal(t, "Item 5", page[0].Title)
}

func TestItemValidation(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "alice@example.com", "s3cret")
	token := env.login(t, "alice@example.com", "s3cret")

	// Title and price are required; price must be non-negative.
	for _, body := range []map[string]any{
		{"price": 9.99},
		{"title": "Widget"},
		{"title": "Widget", "price": -1},
		{"title": "", "price": 9.99},
	} {
		resp, err := env.client.R().SetAuthToken(token).SetBody(body).Post("/v1/items/")
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode(), "body %v", body)
	}

	// A zero price is legitimate.
	resp, err := env.client.R().
		SetAuthToken(token).
		SetBody(map[string]any{"title": "Freebie", "price": 0}).
		Post("/v1/items/")
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode(), resp.String())
}

func TestPasswordNeverSerialized(t *testing.T) {
	env := newTestEnv(t)

	user := env.register(t, "alice@example.com", "s3cret")
	token := env.login(t, "alice@example.com", "s3cret")
	item := env.createItem(t, token, "Widget", 9.99, 5)

	paths := []string{
		fmt.Sprintf("/v1/users/%d", user.ID),
		"/v1/users/me/",
		"/v1/items/",
		fmt.Sprintf("/v1/items/%d", item.ID),
	}
	for _, path := range paths {
		resp, err := env.client.R().SetAuthToken(token).Get(path)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode(), path)

		var payload any
		require.NoError(t, json.Unmarshal(resp.Body(), &payload))
		assert.NotContains(t, resp.String(), "password", path)
		assert.NotContains(t, resp.String(), "s3cret", path)
	}
}
