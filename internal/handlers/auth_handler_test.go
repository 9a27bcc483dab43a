package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oopsmv/backend/internal/config"
	"github.com/oopsmv/backend/internal/middleware"
	"github.com/oopsmv/backend/internal/models"
	"github.com/oopsmv/backend/internal/services"
	"github.com/oopsmv/backend/internal/session"
	"github.com/oopsmv/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memCredentialStore struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*models.User
	byUsr map[string]*models.User
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{
		byID:  make(map[uuid.UUID]*models.User),
		byUsr: make(map[string]*models.User),
	}
}

func (f *memCredentialStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byUsr[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *memCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *memCredentialStore) Insert(ctx context.Context, username, passwordHash, nickname string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byUsr[username]; exists {
		return nil, store.ErrDuplicateUsername
	}
	user := &models.User{ID: uuid.New(), Username: &username, PasswordHash: passwordHash, Nickname: nickname}
	f.byID[user.ID] = user
	f.byUsr[username] = user
	copied := *user
	return &copied, nil
}

func (f *memCredentialStore) CreateGuest(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.User{ID: uuid.New(), IsGuest: true}
	f.byID[user.ID] = user
	copied := *user
	return &copied, nil
}

func (f *memCredentialStore) LinkCredentials(ctx context.Context, userID uuid.UUID, username, passwordHash, nickname string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byID[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if _, exists := f.byUsr[username]; exists {
		return nil, store.ErrDuplicateUsername
	}
	user.Username = &username
	user.PasswordHash = passwordHash
	user.Nickname = nickname
	user.IsGuest = false
	f.byUsr[username] = user
	copied := *user
	return &copied, nil
}

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		BcryptCost:        bcrypt.MinCost,
		SessionTTL:        time.Hour,
		SessionCookieName: "oopsmv_session",
	}
	sessions := session.NewManager(session.NewMemoryStore(), "test-secret", cfg.SessionTTL)
	authService := services.NewAuthService(newMemCredentialStore(), sessions, cfg)
	handler := NewAuthHandler(authService, cfg)

	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/login", handler.Login)
	router.POST("/auth/logout", middleware.Auth(authService, cfg), handler.Logout)
	router.GET("/auth/session", handler.Session)
	return router
}

func doJSON(router *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	router := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", `{"username":"alice","password":"secret1","nickname":"Al"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "oopsmv_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// The cookie resolves to the registered identity.
	w = doJSON(router, http.MethodGet, "/auth/session", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp["username"])
}

func TestSessionWithoutCookie(t *testing.T) {
	router := setupAuthRouter(t)

	w := doJSON(router, http.MethodGet, "/auth/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["username"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", `{"username":"alice","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	wrongPassword := doJSON(router, http.MethodPost, "/auth/login", `{"username":"alice","password":"nope"}`, nil)
	unknownUser := doJSON(router, http.MethodPost, "/auth/login", `{"username":"mallory","password":"nope"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String(),
		"login errors must not reveal whether the username exists")
	assert.Empty(t, wrongPassword.Result().Cookies(), "a failed login must not set a session cookie")
}

func TestDuplicateRegistration(t *testing.T) {
	router := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", `{"username":"alice","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/auth/register", `{"username":"alice","password":"other"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Original credentials still valid.
	w = doJSON(router, http.MethodPost, "/auth/login", `{"username":"alice","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutFlow(t *testing.T) {
	router := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/auth/register", `{"username":"alice","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	cookies := w.Result().Cookies()

	w = doJSON(router, http.MethodPost, "/auth/logout", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	// The old token no longer resolves.
	w = doJSON(router, http.MethodGet, "/auth/session", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp["username"])

	// Guarded routes reject it too.
	w = doJSON(router, http.MethodPost, "/auth/logout", "", cookies)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
