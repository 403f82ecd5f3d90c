package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vibetweet/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	_, app := newTestApp(t, Options{})

	email := "ada@example.com"
	status, body := doJSON(t, app, http.MethodPost, "/api/users", models.UserCreate{Username: "  ada ", Email: &email})
	require.Equal(t, http.StatusCreated, status, string(body))

	got := decode[models.UserWithPreferences](t, body)
	assert.Equal(t, "ada", got.Username)
	require.NotNil(t, got.Email)
	assert.Equal(t, email, *got.Email)
	require.NotNil(t, got.Preferences)
	assert.Equal(t, models.ToneCasual, got.Preferences.Tone)
	assert.Equal(t, models.ProviderClaude, got.Preferences.LLMProvider)
	assert.Empty(t, got.Preferences.Interests)

	t.Run("duplicate username conflicts", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/users", models.UserCreate{Username: "ada"})
		assert.Equal(t, http.StatusConflict, status, string(body))
	})

	t.Run("blank username is rejected", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/users", models.UserCreate{Username: "   "})
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetUser(t *testing.T) {
	_, app := newTestApp(t, Options{})
	user := createUser(t, app, "grace")

	tests := []struct {
		name           string
		userIDParam    string
		expectedStatus int
	}{
		{"Success", user.ID.String(), http.StatusOK},
		{"Invalid ID", "abc", http.StatusBadRequest},
		{"Not Found", uuid.NewString(), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, app, http.MethodGet, "/api/users/"+tt.userIDParam, nil)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestListUsers(t *testing.T) {
	_, app := newTestApp(t, Options{})
	for _, name := range []string{"u1", "u2", "u3"} {
		createUser(t, app, name)
	}

	status, body := doJSON(t, app, http.MethodGet, "/api/users?limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.UserResponse](t, body), 2)

	status, body = doJSON(t, app, http.MethodGet, "/api/users?limit=2&offset=2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.UserResponse](t, body), 1)
}

func TestUpdateUser(t *testing.T) {
	_, app := newTestApp(t, Options{})
	user := createUser(t, app, "linus")
	createUser(t, app, "taken")

	name := "torvalds"
	status, body := doJSON(t, app, http.MethodPatch, "/api/users/"+user.ID.String(), models.UserUpdate{Username: &name})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "torvalds", decode[models.UserResponse](t, body).Username)

	taken := "taken"
	status, _ = doJSON(t, app, http.MethodPatch, "/api/users/"+user.ID.String(), models.UserUpdate{Username: &taken})
	assert.Equal(t, http.StatusConflict, status)

	badEmail := "not-an-email"
	status, _ = doJSON(t, app, http.MethodPatch, "/api/users/"+user.ID.String(), models.UserUpdate{Email: &badEmail})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = doJSON(t, app, http.MethodPatch, "/api/users/"+uuid.NewString(), models.UserUpdate{Username: &name})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteUser_CascadesToDependents(t *testing.T) {
	s, app := newTestApp(t, Options{})
	user := createUser(t, app, "ephemeral")
	base := "/api/users/" + user.ID.String()

	status, body := doJSON(t, app, http.MethodPost, base+"/tweets/import", models.TweetBulkImport{Tweets: []models.TweetCreate{
		{Content: "first tweet", TweetID: ptr("d-1")},
		{Content: "second tweet!"},
	}})
	require.Equal(t, http.StatusOK, status, string(body))
	status, body = doJSON(t, app, http.MethodPost, base+"/style-profile/refresh", nil)
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = doJSON(t, app, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, app, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodGet, base+"/tweets", nil)
	assert.Equal(t, http.StatusNotFound, status)

	for _, table := range []string{"preferences", "tweet_history", "style_profiles"} {
		var n int64
		require.NoError(t, s.db.Table(table).Where("user_id = ?", user.ID).Count(&n).Error)
		assert.Zero(t, n, table)
	}

	status, _ = doJSON(t, app, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPreferences(t *testing.T) {
	_, app := newTestApp(t, Options{})
	user := createUser(t, app, "prefs")
	path := "/api/users/" + user.ID.String() + "/preferences"

	status, body := doJSON(t, app, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.ToneCasual, decode[models.PreferencesResponse](t, body).Tone)

	interests := []string{"Go", " go ", "distributed   systems"}
	tone := "Sarcastic"
	status, body = doJSON(t, app, http.MethodPatch, path, models.PreferencesUpdate{Interests: &interests, Tone: &tone})
	require.Equal(t, http.StatusOK, status, string(body))
	got := decode[models.PreferencesResponse](t, body)
	assert.Equal(t, []string{"Go", "distributed systems"}, got.Interests)
	assert.Equal(t, models.ToneSarcastic, got.Tone)
	assert.Equal(t, models.ProviderClaude, got.LLMProvider)

	bad := "angry"
	status, _ = doJSON(t, app, http.MethodPatch, path, models.PreferencesUpdate{Tone: &bad})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	provider := "gemini"
	status, _ = doJSON(t, app, http.MethodPatch, path, models.PreferencesUpdate{LLMProvider: &provider})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/users/"+uuid.NewString()+"/preferences", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
