package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcal/internal/config"
	"mcal/internal/credstore"
)

func writeClientSecret(t *testing.T, path, tokenURL string) {
	t.Helper()
	data := fmt.Appendf(nil, `{
  "installed": {
    "client_id": "test-client",
    "client_secret": "test-secret",
    "auth_uri": "https://accounts.example.com/o/oauth2/auth",
    "token_uri": %q,
    "redirect_uris": ["http://localhost"]
  }
}`, tokenURL)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func newTestManager(t *testing.T, tokenURL string) (*Manager, *credstore.Store) {
	t.Helper()
	dir := config.Dir{Root: t.TempDir()}
	writeClientSecret(t, dir.ClientSecretPath(), tokenURL)
	store := credstore.New(dir, nil)
	return NewManager(store, nil), store
}

func TestObtainSessionNotAuthenticated(t *testing.T) {
	m, _ := newTestManager(t, "https://oauth2.example.com/token")

	_, err := m.ObtainSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestObtainSessionFreshTokenNoRefresh(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		t.Error("token endpoint should not be called for a fresh token")
	}))
	defer srv.Close()

	m, store := newTestManager(t, srv.URL)
	require.NoError(t, store.SaveToken("work", &credstore.Token{
		AccessToken:  "fresh",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}))

	sess, err := m.ObtainSession(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, "work", sess.Account())
	assert.NotNil(t, sess.HTTPClient())
	assert.Equal(t, int64(0), calls.Load())
}

func TestObtainSessionRefreshesAndPersists(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"new-access","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	m, store := newTestManager(t, srv.URL)
	require.NoError(t, store.SaveToken("work", &credstore.Token{
		AccessToken:  "stale",
		RefreshToken: "old-refresh",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	_, err := m.ObtainSession(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())

	// The refreshed token is already durable, and the refresh token the
	// server omitted is carried over from the stored bundle.
	stored, err := store.LoadToken("work")
	require.NoError(t, err)
	assert.Equal(t, "new-access", stored.AccessToken)
	assert.Equal(t, "old-refresh", stored.RefreshToken)
	assert.True(t, stored.Expiry.After(time.Now()))

	// A second session reuses the persisted token without another exchange.
	_, err = m.ObtainSession(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())
}

func TestObtainSessionRefreshesInsideMargin(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"new-access","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	m, store := newTestManager(t, srv.URL)
	// Not yet expired, but inside the refresh-ahead margin.
	require.NoError(t, store.SaveToken("work", &credstore.Token{
		AccessToken:  "almost-stale",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(30 * time.Second),
	}))

	_, err := m.ObtainSession(context.Background(), "work")
	require.NoError(t, err)
	assert.Equal(t, int64(1), calls.Load())

	stored, err := store.LoadToken("work")
	require.NoError(t, err)
	assert.Equal(t, "new-access", stored.AccessToken)
	assert.Equal(t, "refresh", stored.RefreshToken)
}

func TestObtainSessionRevokedRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Token has been revoked."}`)
	}))
	defer srv.Close()

	m, store := newTestManager(t, srv.URL)
	require.NoError(t, store.SaveToken("work", &credstore.Token{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	_, err := m.ObtainSession(context.Background(), "work")
	assert.ErrorIs(t, err, ErrReauthenticationRequired)
}

func TestObtainSessionExpiredWithoutRefreshToken(t *testing.T) {
	m, store := newTestManager(t, "https://oauth2.example.com/token")
	require.NoError(t, store.SaveToken("work", &credstore.Token{
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Hour),
	}))

	_, err := m.ObtainSession(context.Background(), "work")
	assert.ErrorIs(t, err, ErrReauthenticationRequired)
}

func TestObtainSessionZeroExpiryNeverRefreshes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("token endpoint should not be called when expiry is unknown")
	}))
	defer srv.Close()

	m, store := newTestManager(t, srv.URL)
	require.NoError(t, store.SaveToken("work", &credstore.Token{
		AccessToken:  "opaque",
		RefreshToken: "refresh",
	}))

	_, err := m.ObtainSession(context.Background(), "work")
	assert.NoError(t, err)
}

func TestRegisterAccountDuplicate(t *testing.T) {
	m, store := newTestManager(t, "https://oauth2.example.com/token")
	require.NoError(t, store.SaveToken("work", &credstore.Token{AccessToken: "a"}))

	err := m.RegisterAccount(context.Background(), "work", false)
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestRemoveAccount(t *testing.T) {
	m, store := newTestManager(t, "https://oauth2.example.com/token")

	assert.ErrorIs(t, m.RemoveAccount("ghost"), ErrAccountNotFound)

	require.NoError(t, store.SaveToken("work", &credstore.Token{AccessToken: "a"}))
	require.NoError(t, m.RemoveAccount("work"))
	assert.False(t, store.HasToken("work"))
}
