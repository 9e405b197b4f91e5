package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	"github.com/dmitrijs2005/dailyreflect/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router      http.Handler
	users       *fakeUsers
	reflections *fakeReflections
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	u, r := newFakeUsers(), newFakeReflections()
	return &testServer{
		router:      NewRouter([]string{"*"}, logging.NewDiscardLogger(), u, r),
		users:       u,
		reflections: r,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) signIn(t *testing.T, email string) tokenResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/v1/signup", "", credentials{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/auth/v1/token?grant_type=password", "", credentials{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[tokenResponse](t, rec)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSignUp(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/v1/signup", "", credentials{Email: "a@example.com", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	u := decode[models.User](t, rec)
	assert.Equal(t, "a@example.com", u.Email)
	assert.NotEmpty(t, u.ID)

	rec = s.do(t, http.MethodPost, "/auth/v1/signup", "", credentials{Email: "a@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/v1/signup", "", credentials{Email: "b@example.com", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/v1/signup", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid json body"}`, rec.Body.String())
}

func TestToken(t *testing.T) {
	s := newTestServer(t)
	tok := s.signIn(t, "a@example.com")

	assert.Equal(t, int64(3600), tok.ExpiresIn)
	assert.Equal(t, "a@example.com", tok.User.Email)
	uid, err := auth.GetUserIDFromToken(tok.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, tok.User.ID, uid)

	rec := s.do(t, http.MethodPost, "/auth/v1/token?grant_type=password", "", credentials{Email: "a@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", refreshRequest{RefreshToken: tok.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decode[tokenResponse](t, rec)
	assert.NotEqual(t, tok.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, tok.User, rotated.User)

	rec = s.do(t, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", refreshRequest{RefreshToken: tok.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens are single use")

	rec = s.do(t, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", refreshRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/auth/v1/token?grant_type=magic", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReflections_RequireAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/rest/v1/reflections", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/rest/v1/reflections", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, rec.Body.String())

	expired, err := auth.GenerateToken("u1", testSecret, -1)
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/rest/v1/reflections", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token expired"}`, rec.Body.String())
}

func TestReflections_CRUD(t *testing.T) {
	s := newTestServer(t)
	tok := s.signIn(t, "a@example.com").AccessToken

	rec := s.do(t, http.MethodGet, "/rest/v1/reflections", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rows := []models.Reflection{
		{ID: "a", Date: "2024-03-01", Gratitude: "sun", Achievement: "ran 5k", Improvement: "sleep earlier", Mood: "happy"},
		{ID: "b", Date: "2024-03-02", Gratitude: "g", Achievement: "a", Improvement: "i", Synced: true},
	}
	rec = s.do(t, http.MethodPost, "/rest/v1/reflections/upsert", tok, rows)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"upserted":2}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/rest/v1/reflections", tok, nil)
	got := decode[[]models.Reflection](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.False(t, got[0].Synced)
	assert.NotEmpty(t, got[0].UserID)

	rec = s.do(t, http.MethodPatch, "/rest/v1/reflections/a", tok, map[string]string{"mood": "great"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.MoodGreat, decode[models.Reflection](t, rec).Mood)

	rec = s.do(t, http.MethodPatch, "/rest/v1/reflections/a", tok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPatch, "/rest/v1/reflections/missing", tok, map[string]string{"mood": "good"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/rest/v1/reflections/a", tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/rest/v1/reflections/a", tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "delete is idempotent")
}

func TestReflections_IsolatedPerUser(t *testing.T) {
	s := newTestServer(t)
	alice := s.signIn(t, "alice@example.com").AccessToken
	bob := s.signIn(t, "bob@example.com").AccessToken

	row := []models.Reflection{{ID: "shared", Date: "2024-03-01", Gratitude: "g", Achievement: "a", Improvement: "i"}}
	rec := s.do(t, http.MethodPost, "/rest/v1/reflections/upsert", alice, row)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/rest/v1/reflections", bob, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/rest/v1/reflections/upsert", bob, row)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReflections_Errors(t *testing.T) {
	s := newTestServer(t)
	tok := s.signIn(t, "a@example.com").AccessToken

	rec := s.do(t, http.MethodPost, "/rest/v1/reflections/upsert", tok, []models.Reflection{{Date: "2024-03-01"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/rest/v1/reflections/upsert", tok, map[string]string{"not": "a list"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/rest/v1/reflections/explode", tok, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

	s.reflections.listErr = errors.New("db down")
	rec = s.do(t, http.MethodGet, "/rest/v1/reflections", tok, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/rest/v1/reflections", nil)
	req.Header.Set("Origin", "https://journal.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
