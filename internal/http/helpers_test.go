package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/postpilot-backend/internal/domain"
	api "github.com/tazhibayda/postpilot-backend/internal/http"
	"github.com/tazhibayda/postpilot-backend/internal/oauth"
	"github.com/tazhibayda/postpilot-backend/internal/queue"
	"github.com/tazhibayda/postpilot-backend/internal/repo"
)

const testSecret = "test-secret"

// memStore is an in-memory UserStore with the same contract as *repo.Store:
// unique email, nil on not-found, monotonic last_login.
type memStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMemStore() *memStore {
	return &memStore{users: map[primitive.ObjectID]*domain.User{}}
}

func (m *memStore) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return repo.ErrEmailTaken
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) FindUserByGoogleID(_ context.Context, sub string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Auth.GoogleID != "" && u.Auth.GoogleID == sub {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) TouchLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	if u.LastLogin == nil || at.After(*u.LastLogin) {
		t := at.UTC()
		u.LastLogin = &t
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memStore) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

type fakeGoogle struct {
	profile *oauth.Profile
	err     error
}

func (f *fakeGoogle) MakeState(raw string) string { return raw + ".ok" }
func (f *fakeGoogle) VerifyState(got string) bool { return strings.HasSuffix(got, ".ok") }
func (f *fakeGoogle) AuthURL(state string) string {
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}
func (f *fakeGoogle) ExchangeAndVerify(_ context.Context, code string) (*oauth.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeCheckout struct {
	url string
	err error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type testEnv struct {
	Store  *memStore
	Google *fakeGoogle
	Pay    *fakeCheckout
	Router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := newMemStore()
	g := &fakeGoogle{}
	pay := &fakeCheckout{url: "https://checkout.stripe.test/cs_test_123"}

	h := api.NewHandler(st, g, pay, queue.NewNoop(),
		testSecret, 7, "http://localhost:3000", "auth.events", false)
	r := api.NewRouter(h, nil, 0)

	return &testEnv{Store: st, Google: g, Pay: pay, Router: r}
}

func (e *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

func sessionCookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "token" {
			return ck
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}
