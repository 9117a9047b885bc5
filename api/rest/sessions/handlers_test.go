package sessions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pairpad/server/internal/store"
)

func setupRouter(t *testing.T, sessions *store.Store, rateFormat string) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	api := router.Group("/api")
	require.NoError(t, RegisterRoutes(api, sessions, time.Hour, rateFormat))

	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateSession(t *testing.T) {
	sessions := store.New()
	router := setupRouter(t, sessions, "100-M")

	w := doRequest(router, http.MethodPost, "/api/sessions", `{"language":"python"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, int64(3600000), resp.ExpiresIn)

	created, exists := sessions.Get(resp.SessionID)
	require.True(t, exists)
	assert.Equal(t, store.LanguagePython, created.Language)
	assert.Empty(t, created.Code)
}

func TestCreateSessionRejectsInvalidLanguage(t *testing.T) {
	sessions := store.New()
	router := setupRouter(t, sessions, "100-M")

	for _, body := range []string{`{"language":"brainfuck"}`, `{}`, ``} {
		w := doRequest(router, http.MethodPost, "/api/sessions", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		assert.Contains(t, w.Body.String(), "Invalid or missing language")
	}

	assert.Equal(t, 0, sessions.Count())
}

func TestCreateSessionRateLimited(t *testing.T) {
	sessions := store.New()
	router := setupRouter(t, sessions, "2-M")

	for range 2 {
		w := doRequest(router, http.MethodPost, "/api/sessions", `{"language":"go"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(router, http.MethodPost, "/api/sessions", `{"language":"go"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 2, sessions.Count())
}

func TestGetSessionMetadata(t *testing.T) {
	sessions := store.New()
	router := setupRouter(t, sessions, "100-M")

	session, err := sessions.Create(store.LanguageGo)
	require.NoError(t, err)
	sessions.AddParticipant(session.ID, store.Participant{ID: "p1", Username: "Ada", ClientID: "c1"})

	w := doRequest(router, http.MethodGet, "/api/sessions/"+session.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	var meta store.Metadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, session.ID, meta.SessionID)
	assert.Equal(t, store.LanguageGo, meta.Language)
	assert.Equal(t, 1, meta.UserCount)
	assert.True(t, meta.Exists)
}

func TestGetSessionMetadataUnknownID(t *testing.T) {
	sessions := store.New()
	router := setupRouter(t, sessions, "100-M")

	// unknown sessions still answer 200, with exists false
	w := doRequest(router, http.MethodGet, "/api/sessions/does-not-exist", "")
	require.Equal(t, http.StatusOK, w.Code)

	var meta store.Metadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "does-not-exist", meta.SessionID)
	assert.Equal(t, store.DefaultLanguage, meta.Language)
	assert.Equal(t, 0, meta.UserCount)
	assert.False(t, meta.Exists)
}

func TestGetSessionCode(t *testing.T) {
	sessions := store.New()
	router := setupRouter(t, sessions, "100-M")

	session, err := sessions.Create(store.LanguagePython)
	require.NoError(t, err)
	sessions.UpdateCode(session.ID, "print('hi')")

	w := doRequest(router, http.MethodGet, "/api/sessions/"+session.ID+"/code", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp CodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "print('hi')", resp.Code)
	assert.Equal(t, store.LanguagePython, resp.Language)
}

func TestGetSessionCodeUnknownID(t *testing.T) {
	sessions := store.New()
	router := setupRouter(t, sessions, "100-M")

	w := doRequest(router, http.MethodGet, "/api/sessions/nope/code", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "session_not_found")
}
