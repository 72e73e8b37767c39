package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/studhue/apiserver/internal/services"
	"github.com/studhue/apiserver/internal/store"
	"github.com/studhue/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type mockUserRepo struct {
	getByIDFn              func(ctx context.Context, id string) (types.User, error)
	getByUsernameFn        func(ctx context.Context, username string) (types.User, error)
	getByUsernameOrEmailFn func(ctx context.Context, username, email string) (types.User, error)
	createFn               func(ctx context.Context, user types.User) (types.User, error)
	setProfilePictureFn    func(ctx context.Context, userID, objectKey string) error
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return types.User{}, store.ErrNotFound
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return types.User{}, store.ErrNotFound
}

func (m *mockUserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (types.User, error) {
	if m.getByUsernameOrEmailFn != nil {
		return m.getByUsernameOrEmailFn(ctx, username, email)
	}
	return types.User{}, store.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return user, nil
}

func (m *mockUserRepo) SetProfilePicture(ctx context.Context, userID, objectKey string) error {
	if m.setProfilePictureFn != nil {
		return m.setProfilePictureFn(ctx, userID, objectKey)
	}
	return nil
}

func newUserRouter(repo services.UserRepository) *chi.Mux {
	router := chi.NewRouter()
	router.Route("/api/users", func(r chi.Router) {
		UserRouter(r, services.NewUserService(repo), testSecret)
	})
	return router
}

func validSignupBody() map[string]any {
	return map[string]any{
		"email":       "a@x.com",
		"username":    "alice",
		"password":    "pw1",
		"fullName":    "Alice A",
		"phoneNumber": "0123456789",
		"age":         30,
		"address":     "1 Main St",
		"category":    "digital-artist",
	}
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := issueToken("user-1", "alice", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	identity, err := parseToken(token, []byte(testSecret))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if identity.UserID != "user-1" || identity.Username != "alice" {
		t.Fatalf("identity = %+v", identity)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := issueToken("user-1", "alice", []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := parseToken(token, []byte(testSecret)); err == nil {
		t.Fatal("expired token must be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := issueToken("user-1", "alice", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := parseToken(token, []byte("other-secret")); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		wantErr bool
	}{
		{"", true},
		{"Bearer", true},
		{"Bearer ", true},
		{"Basic abc", true},
		{"Bearer abc", false},
		{"bearer abc", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		_, err := bearerToken(req)
		if (err != nil) != tc.wantErr {
			t.Fatalf("header %q: err = %v, wantErr %v", tc.header, err, tc.wantErr)
		}
	}
}

func TestRequireAuthDistinguishesMissingFromInvalid(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := identityFromContext(r.Context())
		if err != nil {
			t.Fatalf("identity missing downstream: %v", err)
		}
		writeJSON(w, http.StatusOK, identity.Username)
	})
	gate := requireAuth([]byte(testSecret))(next)

	// No token at all: unauthenticated.
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}

	// Present but garbage: forbidden.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("invalid token status = %d, want 403", rec.Code)
	}

	// Valid token: passes through with identity attached.
	token, err := issueToken("user-1", "alice", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", rec.Code)
	}
}

func TestSignupMissingFields(t *testing.T) {
	router := newUserRouter(&mockUserRepo{})

	body := validSignupBody()
	delete(body, "address")
	rec := doJSON(t, router, http.MethodPost, "/api/users/signup", body, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSignupSuccess(t *testing.T) {
	var created types.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user types.User) (types.User, error) {
			created = user
			return user, nil
		},
	}
	router := newUserRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/users/signup", validSignupBody(), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if created.ID == "" {
		t.Fatal("expected a generated identity")
	}
	if created.PasswordHash == "pw1" {
		t.Fatal("password must never be stored in plain form")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte(created.PasswordHash)) {
		t.Fatal("response must not echo the digest")
	}
}

func TestSignupDuplicateConflict(t *testing.T) {
	repo := &mockUserRepo{
		getByUsernameOrEmailFn: func(ctx context.Context, username, email string) (types.User, error) {
			return types.User{ID: "existing"}, nil
		},
	}
	router := newUserRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/users/signup", validSignupBody(), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestSignupRaceConflictAtInsert(t *testing.T) {
	// The existence check passes but the insert loses the race at the
	// store's uniqueness constraint.
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user types.User) (types.User, error) {
			return types.User{}, store.ErrConflict
		},
	}
	router := newUserRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/users/signup", validSignupBody(), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestLoginUnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (types.User, error) {
			if username == "alice" {
				return types.User{ID: "user-1", Username: "alice", PasswordHash: string(hash)}, nil
			}
			return types.User{}, store.ErrNotFound
		},
	}
	router := newUserRouter(repo)

	unknown := doJSON(t, router, http.MethodPost, "/api/users/login",
		map[string]string{"username": "nobody", "password": "x"}, "")
	wrongPw := doJSON(t, router, http.MethodPost, "/api/users/login",
		map[string]string{"username": "alice", "password": "wrong"}, "")

	if unknown.Code != http.StatusUnauthorized || wrongPw.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", unknown.Code, wrongPw.Code)
	}
	if unknown.Body.String() != wrongPw.Body.String() {
		t.Fatal("rejections must be indistinguishable to avoid leaking account existence")
	}
}

func TestLoginSuccessIssuesToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &mockUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (types.User, error) {
			return types.User{ID: "user-1", Username: "alice", PasswordHash: string(hash)}, nil
		},
	}
	router := newUserRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/api/users/login",
		map[string]string{"username": "alice", "password": "pw1"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserID != "user-1" || resp.Username != "alice" {
		t.Fatalf("response = %+v", resp)
	}

	identity, err := parseToken(resp.Token, []byte(testSecret))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if identity.UserID != "user-1" || identity.Username != "alice" {
		t.Fatalf("token identity = %+v", identity)
	}
}

func TestAvatarUnavailableWithoutMediaBackend(t *testing.T) {
	router := newUserRouter(&mockUserRepo{})
	token, err := issueToken("user-1", "alice", []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/users/avatar", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
