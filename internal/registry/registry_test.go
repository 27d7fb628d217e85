package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcal/internal/config"
)

func seedAccounts(t *testing.T, dir config.Dir, names ...string) {
	t.Helper()
	for _, name := range names {
		tokenPath, err := dir.TokenPath(name)
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Dir(tokenPath), 0o700))
		require.NoError(t, os.WriteFile(tokenPath, []byte("{}"), 0o600))
	}
}

func newTestRegistry(t *testing.T, settings *config.Settings, names ...string) *Registry {
	t.Helper()
	dir := config.Dir{Root: t.TempDir()}
	seedAccounts(t, dir, names...)
	return New(dir, settings)
}

func TestListAccountsSorted(t *testing.T) {
	r := newTestRegistry(t, &config.Settings{DefaultAccount: "personal"}, "work", "personal", "side")

	accounts, err := r.ListAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "personal", accounts[0].Name)
	assert.Equal(t, "side", accounts[1].Name)
	assert.Equal(t, "work", accounts[2].Name)
	assert.True(t, accounts[0].Default)
	assert.False(t, accounts[2].Default)
}

func TestListAccountsEmptyWhenDirMissing(t *testing.T) {
	r := New(config.Dir{Root: filepath.Join(t.TempDir(), "nope")}, nil)

	accounts, err := r.ListAccounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestListAccountsIgnoresDirsWithoutToken(t *testing.T) {
	dir := config.Dir{Root: t.TempDir()}
	seedAccounts(t, dir, "work")
	require.NoError(t, os.MkdirAll(filepath.Join(dir.AccountsDir(), "half-added"), 0o700))

	r := New(dir, nil)
	accounts, err := r.ListAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "work", accounts[0].Name)
}

func TestResolveFilter(t *testing.T) {
	r := newTestRegistry(t, nil, "work", "personal")

	t.Run("empty means all", func(t *testing.T) {
		accounts, err := r.ResolveFilter(nil)
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})

	t.Run("subset", func(t *testing.T) {
		accounts, err := r.ResolveFilter([]string{"work"})
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "work", accounts[0].Name)
	})

	t.Run("unknown name fails fast", func(t *testing.T) {
		_, err := r.ResolveFilter([]string{"work", "ghost", "personal"})
		assert.ErrorIs(t, err, ErrUnknownAccount)
		assert.Contains(t, err.Error(), `"ghost"`)
	})
}

func TestRequireSingleAccount(t *testing.T) {
	t.Run("explicit account", func(t *testing.T) {
		r := newTestRegistry(t, nil, "work", "personal")
		acct, err := r.RequireSingleAccount([]string{"work"})
		require.NoError(t, err)
		assert.Equal(t, "work", acct.Name)
	})

	t.Run("falls back to default", func(t *testing.T) {
		r := newTestRegistry(t, &config.Settings{DefaultAccount: "personal"}, "work", "personal")
		acct, err := r.RequireSingleAccount(nil)
		require.NoError(t, err)
		assert.Equal(t, "personal", acct.Name)
	})

	t.Run("no accounts and no default", func(t *testing.T) {
		r := newTestRegistry(t, &config.Settings{}, "work")
		_, err := r.RequireSingleAccount(nil)
		assert.ErrorIs(t, err, ErrAccountRequired)
	})

	t.Run("more than one", func(t *testing.T) {
		r := newTestRegistry(t, nil, "work", "personal")
		_, err := r.RequireSingleAccount([]string{"work", "personal"})
		assert.ErrorIs(t, err, ErrAccountRequired)
	})

	t.Run("unknown account", func(t *testing.T) {
		r := newTestRegistry(t, nil, "work")
		_, err := r.RequireSingleAccount([]string{"ghost"})
		assert.ErrorIs(t, err, ErrUnknownAccount)
	})
}
