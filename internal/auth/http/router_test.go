package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/task-manager/backend/internal/auth/gate"
	"github.com/AlibekovAA/task-manager/backend/internal/auth/service"
	"github.com/AlibekovAA/task-manager/backend/internal/auth/token"
	"github.com/AlibekovAA/task-manager/backend/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/task-manager/backend/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/task-manager/backend/internal/common/http"
	"github.com/AlibekovAA/task-manager/backend/internal/common/logger"
	userrepo "github.com/AlibekovAA/task-manager/backend/internal/user/repository"
)

type testServer struct {
	router *mux.Router
	users  *userrepo.MemoryRepository
}

func newTestServer(t *testing.T, opts RouteOptions) *testServer {
	t.Helper()

	log := logger.NewWithWriter(io.Discard, "test", "error")
	clk := clock.NewRealClock()
	tokens, err := token.NewService(strings.Repeat("h", 32), time.Hour, clk)
	require.NoError(t, err)

	users := userrepo.NewMemoryRepository()
	auth := service.NewAuthService(users, commoncrypto.NewBcryptHasher(bcrypt.MinCost), commoncrypto.NewUUIDGenerator(), tokens, clk, log)

	opts.Gate = gate.New(tokens, users, log)
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	RegisterRoutes(api, NewHandler(auth, log), opts)

	return &testServer{router: router, users: users}
}

func (s *testServer) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t, RouteOptions{})

	rec := s.do(t, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decode[authResponse](t, rec)
	assert.Equal(t, "User registered successfully", reg.Message)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice", reg.User.Username)
	assert.NotEmpty(t, reg.User.ID)

	rec = s.do(t, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"secret1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[authResponse](t, rec)
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, reg.User.ID, login.User.ID)

	rec = s.do(t, http.MethodGet, "/api/auth/me", "", login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegister_ResponseNeverLeaksHash(t *testing.T) {
	s := newTestServer(t, RouteOptions{})

	rec := s.do(t, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1","email":"A@B.io"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "secret1")
	assert.NotContains(t, body, "$2a$")
	assert.Contains(t, body, `"email":"a@b.io"`)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t, RouteOptions{})

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"missing username", `{"password":"secret1"}`, "Username is required"},
		{"short username", `{"username":"ab","password":"secret1"}`, "Username must be at least 3 characters"},
		{"long username", `{"username":"` + strings.Repeat("a", 31) + `","password":"secret1"}`, "Username cannot exceed 30 characters"},
		{"username chars", `{"username":"al ice","password":"secret1"}`, "Username can only contain letters, numbers and underscores"},
		{"short password", `{"username":"alice","password":"123"}`, "Password must be at least 6 characters"},
		{"bad email", `{"username":"alice","password":"secret1","email":"nope"}`, "Email must be a valid email address"},
		{"invalid json", `{"username":`, "Invalid JSON body"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/auth/register", tc.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decode[commonhttp.ErrorEnvelope](t, rec)
			assert.Equal(t, tc.message, env.Message)
		})
	}
}

func TestRegister_TrimsUsername(t *testing.T) {
	s := newTestServer(t, RouteOptions{})

	rec := s.do(t, http.MethodPost, "/api/auth/register", `{"username":"  bob  ","password":"secret1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "bob", decode[authResponse](t, rec).User.Username)
}

func TestRegister_Duplicate(t *testing.T) {
	s := newTestServer(t, RouteOptions{})

	body := `{"username":"alice","password":"secret1"}`
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/auth/register", body, "").Code)

	rec := s.do(t, http.MethodPost, "/api/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username already exists", decode[commonhttp.ErrorEnvelope](t, rec).Message)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`, "").Code)

	for _, body := range []string{
		`{"username":"alice","password":"wrong-pass"}`,
		`{"username":"nobody","password":"secret1"}`,
	} {
		rec := s.do(t, http.MethodPost, "/api/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decode[commonhttp.ErrorEnvelope](t, rec).Message)
	}

	rec := s.do(t, http.MethodPost, "/api/auth/login", `{"username":"alice"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password is required", decode[commonhttp.ErrorEnvelope](t, rec).Message)
}

func TestLogout_RequiresTokenAndKeepsItValid(t *testing.T) {
	s := newTestServer(t, RouteOptions{})

	rec := s.do(t, http.MethodPost, "/api/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	reg := decode[authResponse](t, s.do(t, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`, ""))

	rec = s.do(t, http.MethodPost, "/api/auth/logout", "", reg.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decode[commonhttp.MessageResponse](t, rec).Message)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/auth/me", "", reg.Token).Code)
}

func TestMe_DeletedUser(t *testing.T) {
	s := newTestServer(t, RouteOptions{})
	reg := decode[authResponse](t, s.do(t, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`, ""))

	s.users.Delete(reg.User.ID)

	rec := s.do(t, http.MethodGet, "/api/auth/me", "", reg.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decode[commonhttp.ErrorEnvelope](t, rec).Message)
}

func TestLogin_RateLimited(t *testing.T) {
	s := newTestServer(t, RouteOptions{LoginLimiter: commonhttp.NewLocalRateLimiter(0.001, 2)})

	body := `{"username":"nobody","password":"secret1"}`
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/auth/login", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/auth/login", body, "").Code)

	rec := s.do(t, http.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// registration has its own budget
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/auth/register", `{"username":"alice","password":"secret1"}`, "").Code)
}
