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
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsmait/docsmait/internal/app/config"
	appservices "github.com/docsmait/docsmait/internal/app/services"
	"github.com/docsmait/docsmait/internal/infrastructure/repositories/postgresql/testutil"
	"github.com/docsmait/docsmait/pkg/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           "0",
			AllowedOrigins: []string{"http://localhost:8501"},
		},
		JWT: config.JWTConfig{
			Secret: "test-secret",
			Expiry: time.Hour,
		},
		Review: config.ReviewConfig{
			ReminderAfter:  72 * time.Hour,
			PollInterval:   time.Minute,
			StatusCacheTTL: time.Minute,
		},
		Training: config.TrainingConfig{PassThreshold: 80},
		Limits: config.LimitsConfig{
			MaxContentBytes: 1 << 20,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}

	sm, err := appservices.NewServiceManager(cfg, db)
	require.NoError(t, err)

	return New(cfg, logger.NewForTesting(), sm)
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func registerAndLogin(t *testing.T, srv *Server, email string) (uuid.UUID, string) {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      email,
		"password":   "correct-horse",
		"first_name": "Test",
		"last_name":  "User",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
	}
	decodeJSON(t, rec, &login)
	require.NotEmpty(t, login.Token)

	return login.User.ID, login.Token
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/projects", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterLoginAndMe(t *testing.T) {
	srv := newTestServer(t)

	_, token := registerAndLogin(t, srv, "alice@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		Email string `json:"email"`
	}
	decodeJSON(t, rec, &me)
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)

	registerAndLogin(t, srv, "bob@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      "bob@example.com",
		"password":   "another-pass",
		"first_name": "Bob",
		"last_name":  "Again",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminEndpointsForbiddenForRegularUsers(t *testing.T) {
	srv := newTestServer(t)

	_, token := registerAndLogin(t, srv, "carol@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDocumentReviewFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	_, authorToken := registerAndLogin(t, srv, "author@example.com")
	reviewerID, reviewerToken := registerAndLogin(t, srv, "reviewer@example.com")

	// Author creates a project and invites the reviewer.
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/projects", authorToken, gin.H{
		"name": "Quality Manual",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var project struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, rec, &project)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/members", project.ID), authorToken, gin.H{
		"user_id": reviewerID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/documents", authorToken, gin.H{
		"project_id": project.ID,
		"title":      "SOP-001",
		"content":    "Initial procedure text.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var document struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	decodeJSON(t, rec, &document)
	assert.Equal(t, "draft", document.Status)

	docPath := fmt.Sprintf("/api/v1/documents/%s", document.ID)

	// The reviewer cannot request a review on someone else's document.
	rec = doJSON(t, srv, http.MethodPost, docPath+"/review/request", reviewerToken, gin.H{
		"reviewers": []uuid.UUID{reviewerID},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, docPath+"/review/request", authorToken, gin.H{
		"reviewers": []uuid.UUID{reviewerID},
		"message":   "please take a look",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Editing is locked while the document sits in review.
	rec = doJSON(t, srv, http.MethodPut, docPath+"/content", authorToken, gin.H{
		"content":           "sneaky edit",
		"expected_revision": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The author is not an assigned reviewer.
	rec = doJSON(t, srv, http.MethodPost, docPath+"/review/decision", authorToken, gin.H{
		"approved": true,
		"comment":  "self-approval",
		"revision": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/reviews/assigned", reviewerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), document.ID.String())

	rec = doJSON(t, srv, http.MethodPost, docPath+"/review/decision", reviewerToken, gin.H{
		"approved": true,
		"comment":  "looks good",
		"revision": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var decision struct {
		Status string `json:"status"`
	}
	decodeJSON(t, rec, &decision)
	assert.Equal(t, "approved", decision.Status)

	rec = doJSON(t, srv, http.MethodGet, docPath+"/review/status", authorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "approved")

	// The trail captured the request and the decision.
	rec = doJSON(t, srv, http.MethodGet, docPath+"/review/trail", authorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "review_request")
	assert.Contains(t, rec.Body.String(), "decision")
}

func TestRejectionRequiresCommentOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	_, authorToken := registerAndLogin(t, srv, "author2@example.com")
	reviewerID, reviewerToken := registerAndLogin(t, srv, "reviewer2@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/projects", authorToken, gin.H{"name": "P"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, rec, &project)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/projects/%s/members", project.ID), authorToken, gin.H{"user_id": reviewerID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/documents", authorToken, gin.H{
		"project_id": project.ID,
		"title":      "SOP-002",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var document struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, rec, &document)

	docPath := fmt.Sprintf("/api/v1/documents/%s", document.ID)
	rec = doJSON(t, srv, http.MethodPost, docPath+"/review/request", authorToken, gin.H{
		"reviewers": []uuid.UUID{reviewerID},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, docPath+"/review/decision", reviewerToken, gin.H{
		"approved": false,
		"revision": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, docPath+"/review/decision", reviewerToken, gin.H{
		"approved": false,
		"comment":  "section 3 is wrong",
		"revision": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "needs_update")

	// A rework edit pulls the document back to draft.
	rec = doJSON(t, srv, http.MethodPut, docPath+"/content", authorToken, gin.H{
		"content":           "fixed section 3",
		"change_note":       "address review feedback",
		"expected_revision": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "draft")
}

func TestStaleEditConflictOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	_, token := registerAndLogin(t, srv, "editor@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/projects", token, gin.H{"name": "P"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, rec, &project)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/documents", token, gin.H{
		"project_id": project.ID,
		"title":      "Doc",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var document struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, rec, &document)

	docPath := fmt.Sprintf("/api/v1/documents/%s", document.ID)
	rec = doJSON(t, srv, http.MethodPut, docPath+"/content", token, gin.H{
		"content":           "v2",
		"expected_revision": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// A second save against revision 1 lost the race.
	rec = doJSON(t, srv, http.MethodPut, docPath+"/content", token, gin.H{
		"content":           "also v2",
		"expected_revision": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOutsiderCannotTouchDocumentOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	_, authorToken := registerAndLogin(t, srv, "owner@example.com")
	_, outsiderToken := registerAndLogin(t, srv, "outsider@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/projects", authorToken, gin.H{"name": "Private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, rec, &project)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/documents", authorToken, gin.H{
		"project_id": project.ID,
		"title":      "Confidential SOP",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var document struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, rec, &document)

	docPath := fmt.Sprintf("/api/v1/documents/%s", document.ID)

	// Not a member: no reads.
	rec = doJSON(t, srv, http.MethodGet, docPath, outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Not the author: no writes.
	rec = doJSON(t, srv, http.MethodPut, docPath+"/content", outsiderToken, gin.H{
		"content":           "tampered",
		"expected_revision": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, docPath, outsiderToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The author still sees the original content.
	rec = doJSON(t, srv, http.MethodGet, docPath, authorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current struct {
		Content         string `json:"content"`
		CurrentRevision int    `json:"current_revision"`
	}
	decodeJSON(t, rec, &current)
	assert.Equal(t, 1, current.CurrentRevision)
}

func TestLegacyStatusFilterAccepted(t *testing.T) {
	srv := newTestServer(t)

	_, token := registerAndLogin(t, srv, "filter@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/projects", token, gin.H{"name": "P"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var project struct {
		ID uuid.UUID `json:"id"`
	}
	decodeJSON(t, rec, &project)

	// The deprecated vocabulary still works in query filters.
	path := fmt.Sprintf("/api/v1/projects/%s/documents?status=pending", project.ID)
	rec = doJSON(t, srv, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	path = fmt.Sprintf("/api/v1/projects/%s/documents?status=bogus", project.ID)
	rec = doJSON(t, srv, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
