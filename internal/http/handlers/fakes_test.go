package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/familyauth/internal/actorctx"
	"github.com/geocoder89/familyauth/internal/domain/family"
	"github.com/geocoder89/familyauth/internal/domain/profile"
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/gin-gonic/gin"
)

var errStoreDown = errors.New("store down")

type fakeUsers struct {
	mu        sync.Mutex
	byEmail   map[string]user.User
	nextID    int64
	getErr    error
	createErr error
	updateErr error
	created   []user.NewAccount
}

func newFakeUsers(existing ...user.User) *fakeUsers {
	f := &fakeUsers{byEmail: make(map[string]user.User), nextID: 100}
	for _, u := range existing {
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return user.User{}, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}
	for email, u := range f.byEmail {
		if u.ID == userID {
			u.PasswordHash = hash
			f.byEmail[email] = u
			return nil
		}
	}
	return user.ErrNotFound
}

func (f *fakeUsers) CreateAccount(_ context.Context, acc user.NewAccount) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return user.User{}, f.createErr
	}
	f.nextID++
	u := user.User{ID: f.nextID, Email: acc.Email, PasswordHash: acc.PasswordHash, Role: acc.Role, CreatedAt: time.Now()}
	f.byEmail[u.Email] = u
	f.created = append(f.created, acc)
	return u, nil
}

func (f *fakeUsers) ListWithProfiles(_ context.Context) ([]user.WithProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]user.WithProfile, 0, len(f.byEmail))
	for _, u := range f.byEmail {
		// a store that leaks the digest must still be blanked by the handler
		out = append(out, user.WithProfile{ID: u.ID, Email: u.Email, Password: u.PasswordHash, Role: u.Role})
	}
	return out, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (fakeHasher) Verify(plain, digest string) bool { return digest == "hashed:"+plain }

type fakeTokens struct{}

func (fakeTokens) Issue(id user.Identity) (string, error) {
	return "token-for-" + id.Email, nil
}

type fakeProfiles struct {
	mu        sync.Mutex
	items     map[int64]profile.Profile
	getErr    error
	createErr error
	updateErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{items: make(map[int64]profile.Profile)}
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID int64) (profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return profile.Profile{}, f.getErr
	}
	p, ok := f.items[userID]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Create(_ context.Context, p profile.Profile) (profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return profile.Profile{}, f.createErr
	}
	if _, ok := f.items[p.UserID]; ok {
		return profile.Profile{}, profile.ErrAlreadyExists
	}
	f.items[p.UserID] = p
	return p, nil
}

func (f *fakeProfiles) Update(_ context.Context, p profile.Profile) (profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return profile.Profile{}, f.updateErr
	}
	if _, ok := f.items[p.UserID]; !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	f.items[p.UserID] = p
	return p, nil
}

func (f *fakeProfiles) List(_ context.Context) ([]profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]profile.Profile, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

type fakeFamily struct {
	mu        sync.Mutex
	items     map[int64]family.Member
	nextID    int64
	updateErr error
	deleteErr error
}

func newFakeFamily(existing ...family.Member) *fakeFamily {
	f := &fakeFamily{items: make(map[int64]family.Member)}
	for _, m := range existing {
		f.items[m.ID] = m
		if m.ID > f.nextID {
			f.nextID = m.ID
		}
	}
	return f
}

func (f *fakeFamily) ListByUser(_ context.Context, userID int64) ([]family.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]family.Member, 0)
	for _, m := range f.items {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeFamily) GetByID(_ context.Context, id int64) (family.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.items[id]
	if !ok {
		return family.Member{}, family.ErrNotFound
	}
	return m, nil
}

func (f *fakeFamily) Create(_ context.Context, m family.Member) (family.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	m.ID = f.nextID
	f.items[m.ID] = m
	return m, nil
}

func (f *fakeFamily) Update(_ context.Context, m family.Member) (family.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return family.Member{}, f.updateErr
	}
	f.items[m.ID] = m
	return m, nil
}

func (f *fakeFamily) Delete(_ context.Context, id, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.items, id)
	return nil
}

// withIdentity stands in for RequireAuth.
func withIdentity(id *user.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != nil {
			c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), *id))
		}
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	decode(t, w, &body)
	if body.Message == "" {
		t.Fatalf("error response without message: %s", w.Body.String())
	}
	return body.Message
}

func doJSONWithHeader(r http.Handler, method, path, key, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(key, value)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
