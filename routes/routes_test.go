package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chirp/auth"
	"chirp/config"
	"chirp/logging"
	"chirp/services"
	"chirp/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	tokens := auth.NewTokens(cfg.JWTSecret, time.Hour)
	svc := services.New(services.Deps{
		Store:  store.NewMemory().Store(),
		Hasher: auth.Hasher{Cost: bcrypt.MinCost},
		Tokens: tokens,
	})

	return &testServer{t: t, router: SetupRouter(Deps{
		Config:   cfg,
		Services: svc,
		Tokens:   tokens,
		Log:      logging.Nop(),
	})}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func (s *testServer) register(username string) (token, id string) {
	s.t.Helper()
	rec, body := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "password1",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func TestRegisterAndDuplicate(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")

	rec, body = s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username already taken", body["message"])
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	_, id := s.register("alice")

	rec, body := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "password1"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := body["token"].(string)

	rec, body = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, body["id"])
	assert.NotContains(t, body, "password")

	rec, body = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "nope-nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(http.MethodGet, "/api/tweets/timeline/home", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No authorization token provided", body["message"])

	rec, body = s.do(http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token is not valid", body["message"])
}

func TestTweetFlow(t *testing.T) {
	s := newTestServer(t)
	aliceTok, _ := s.register("alice")
	bobTok, bobID := s.register("bob")

	rec, _ := s.do(http.MethodPost, "/api/users/"+bobID+"/follow", aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, tweet := s.do(http.MethodPost, "/api/tweets", bobTok, gin.H{"content": "hello #world"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tweetID := tweet["id"].(string)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tweets/timeline/home", nil)
	req.Header.Set("Authorization", "Bearer "+aliceTok)
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var timeline []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &timeline))
	require.Len(t, timeline, 1)
	assert.Equal(t, tweetID, timeline[0]["id"])

	rec, body := s.do(http.MethodPost, "/api/tweets/"+tweetID+"/like", aliceTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "liked", body["action"])
	assert.Equal(t, "Tweet liked", body["message"])

	rec, body = s.do(http.MethodPost, "/api/tweets/"+tweetID+"/comment", aliceTok, gin.H{"content": "nice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nice", body["content"])

	rec, body = s.do(http.MethodDelete, "/api/tweets/"+tweetID, aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not authorized to delete this tweet", body["message"])

	rec, _ = s.do(http.MethodDelete, "/api/tweets/"+tweetID, bobTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = s.do(http.MethodGet, "/api/tweets/"+tweetID, aliceTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Tweet not found", body["message"])
}

func TestPollFlow(t *testing.T) {
	s := newTestServer(t)
	tok, _ := s.register("alice")

	rec, poll := s.do(http.MethodPost, "/api/polls/create", tok, gin.H{
		"question": "Lunch?",
		"options":  []gin.H{{"text": "pizza"}, {"text": "sushi"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	pollID := poll["id"].(string)

	rec, poll = s.do(http.MethodPost, "/api/polls/vote", tok, gin.H{"pollId": pollID, "optionIndex": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	opts := poll["options"].([]any)
	assert.EqualValues(t, 1, opts[0].(map[string]any)["votes"])

	rec, body := s.do(http.MethodPost, "/api/polls/vote", tok, gin.H{"pollId": pollID, "optionIndex": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid option index", body["message"])
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, body = s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", body["message"])
}

func TestTweetReadsArePublic(t *testing.T) {
	s := newTestServer(t)
	tok, _ := s.register("alice")

	rec, tweet := s.do(http.MethodPost, "/api/tweets", tok, gin.H{"content": "public hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := tweet["id"].(string)

	for _, path := range []string{
		"/api/tweets/" + id,
		"/api/tweets/" + id + "/replies",
		"/api/tweets/user/alice",
		"/api/tweets/user/alice/replies",
		"/api/tweets/search/tweets?q=hello",
	} {
		rec, _ := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec, _ = s.do(http.MethodDelete, "/api/tweets/"+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = s.do(http.MethodPost, "/api/tweets/"+id+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t)
	tok, _ := s.register("alice")

	for _, path := range []string{"/api/tweets", "/api/auth/login", "/api/polls/create"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"content":`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Invalid request body", body["message"], path)
	}
}
