package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitecraft.dev/forumservice/internal/config"
	"sitecraft.dev/forumservice/internal/middleware"
	"sitecraft.dev/forumservice/internal/testutil"
	"sitecraft.dev/forumservice/pkg/response"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		AppEnv:         "test",
		AllowedOrigins: "http://localhost:3000",
		AuthSecret:     testSecret,
		StatsCacheTTL:  time.Second,
	}
	db := testutil.NewTestDB(t)

	return NewServer(cfg, db, nil).Engine()
}

func signToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()

	claims := middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
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
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (response.Envelope, map[string]any) {
	t.Helper()

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	data, _ := envelope.Data.(map[string]any)
	return envelope, data
}

func TestAuthRequired(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodGet, "/api/forum/categories", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		envelope, _ := decodeEnvelope(t, rec)
		assert.False(t, envelope.Success)
		assert.NotEmpty(t, envelope.Error)
	})

	t.Run("forged token", func(t *testing.T) {
		claims := middleware.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
		require.NoError(t, err)

		rec := doRequest(t, engine, http.MethodGet, "/api/forum/categories", forged, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("admin routes reject regular users", func(t *testing.T) {
		userToken := signToken(t, uuid.New(), "user")
		rec := doRequest(t, engine, http.MethodPost, "/api/forum/categories", userToken, gin.H{
			"name":        "Nope",
			"description": "not allowed",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestForumFlow(t *testing.T) {
	engine := newTestEngine(t)

	adminToken := signToken(t, uuid.New(), "admin")
	authorID := uuid.New()
	authorToken := signToken(t, authorID, "user")
	visitorToken := signToken(t, uuid.New(), "user")

	// Admin sets up a category.
	rec := doRequest(t, engine, http.MethodPost, "/api/forum/categories", adminToken, gin.H{
		"name":        "General",
		"description": "General discussion",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	envelope, data := decodeEnvelope(t, rec)
	require.True(t, envelope.Success)
	categoryID := data["id"].(string)

	// Author opens a thread in it.
	rec = doRequest(t, engine, http.MethodPost, "/api/forum/threads", authorToken, gin.H{
		"category_id": categoryID,
		"title":       "Hello world",
		"content":     "First thread here",
		"tags":        []string{"intro"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, data = decodeEnvelope(t, rec)
	threadID := data["id"].(string)
	assert.Equal(t, "General", data["category_name"])

	t.Run("get with view increment", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodGet, "/api/forum/threads/"+threadID+"?incrementView=true", visitorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeEnvelope(t, rec)
		assert.EqualValues(t, 1, data["views"])
	})

	t.Run("listing includes the thread", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodGet, "/api/forum/threads?categoryId="+categoryID, visitorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeEnvelope(t, rec)
		assert.EqualValues(t, 1, data["total"])
	})

	t.Run("visitor likes the thread", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodPost, "/api/forum/threads/"+threadID+"/like", visitorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeEnvelope(t, rec)
		assert.Equal(t, true, data["liked"])
		assert.EqualValues(t, 1, data["like_count"])
	})

	t.Run("author cannot like their own thread", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodPost, "/api/forum/threads/"+threadID+"/like", authorToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	var replyID string
	t.Run("visitor replies", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodPost, "/api/forum/threads/"+threadID+"/replies", visitorToken, gin.H{
			"content": "Welcome!",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		_, data := decodeEnvelope(t, rec)
		replyID = data["id"].(string)

		rec = doRequest(t, engine, http.MethodGet, "/api/forum/threads/"+threadID+"/replies", authorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		_, data = decodeEnvelope(t, rec)
		assert.EqualValues(t, 1, data["total"])
	})

	t.Run("search finds the thread", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodGet, "/api/forum/search?q=hello", visitorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Success bool             `json:"success"`
			Data    []map[string]any `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		require.Len(t, envelope.Data, 1)
		assert.Equal(t, threadID, envelope.Data[0]["id"])
	})

	t.Run("stats reflect the forum", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodGet, "/api/forum/stats", visitorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeEnvelope(t, rec)
		assert.EqualValues(t, 1, data["total_categories"])
		assert.EqualValues(t, 1, data["total_threads"])
		assert.EqualValues(t, 1, data["total_replies"])
		assert.EqualValues(t, 1, data["total_views"])
	})

	t.Run("admin locks the thread", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodPost, "/api/forum/threads/"+threadID+"/moderate", adminToken, gin.H{
			"action": "lock",
			"reason": "cooling off",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		_, data := decodeEnvelope(t, rec)
		assert.Equal(t, true, data["is_locked"])
	})

	t.Run("locked thread returns 423 on writes", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodPut, "/api/forum/threads/"+threadID, authorToken, gin.H{
			"title": "Renamed",
		})
		assert.Equal(t, http.StatusLocked, rec.Code)

		rec = doRequest(t, engine, http.MethodPost, "/api/forum/threads/"+threadID+"/replies", visitorToken, gin.H{
			"content": "too late",
		})
		assert.Equal(t, http.StatusLocked, rec.Code)

		rec = doRequest(t, engine, http.MethodPut, "/api/forum/replies/"+replyID, visitorToken, gin.H{
			"content": "also too late",
		})
		assert.Equal(t, http.StatusLocked, rec.Code)
	})

	t.Run("lock does not block deletion", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodDelete, "/api/forum/threads/"+threadID, authorToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, engine, http.MethodGet, "/api/forum/threads/"+threadID, authorToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestValidationErrors(t *testing.T) {
	engine := newTestEngine(t)
	token := signToken(t, uuid.New(), "user")

	t.Run("malformed thread payload", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodPost, "/api/forum/threads", token, gin.H{
			"category_id": "not-a-uuid",
			"title":       "x",
			"content":     "y",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		envelope, _ := decodeEnvelope(t, rec)
		assert.False(t, envelope.Success)
		assert.NotEmpty(t, envelope.Error)
	})

	t.Run("unknown thread id", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodGet, "/api/forum/threads/"+uuid.NewString(), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("blank search query", func(t *testing.T) {
		rec := doRequest(t, engine, http.MethodGet, "/api/forum/search?q=", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteReplyPermissions(t *testing.T) {
	engine := newTestEngine(t)

	adminToken := signToken(t, uuid.New(), "admin")
	threadAuthorToken := signToken(t, uuid.New(), "user")
	replyAuthorToken := signToken(t, uuid.New(), "user")
	strangerToken := signToken(t, uuid.New(), "user")

	rec := doRequest(t, engine, http.MethodPost, "/api/forum/categories", adminToken, gin.H{
		"name":        "Support",
		"description": "Help desk",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, data := decodeEnvelope(t, rec)
	categoryID := data["id"].(string)

	rec = doRequest(t, engine, http.MethodPost, "/api/forum/threads", threadAuthorToken, gin.H{
		"category_id": categoryID,
		"title":       "Need help",
		"content":     "Something broke",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, data = decodeEnvelope(t, rec)
	threadID := data["id"].(string)

	createReply := func(t *testing.T) string {
		t.Helper()
		rec := doRequest(t, engine, http.MethodPost, fmt.Sprintf("/api/forum/threads/%s/replies", threadID), replyAuthorToken, gin.H{
			"content": "Try turning it off and on",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		_, data := decodeEnvelope(t, rec)
		return data["id"].(string)
	}

	t.Run("stranger cannot delete", func(t *testing.T) {
		replyID := createReply(t)
		rec := doRequest(t, engine, http.MethodDelete, "/api/forum/replies/"+replyID, strangerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("thread author can delete replies in their thread", func(t *testing.T) {
		replyID := createReply(t)
		rec := doRequest(t, engine, http.MethodDelete, "/api/forum/replies/"+replyID, threadAuthorToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("reply author can delete their own", func(t *testing.T) {
		replyID := createReply(t)
		rec := doRequest(t, engine, http.MethodDelete, "/api/forum/replies/"+replyID, replyAuthorToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
