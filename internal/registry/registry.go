// Package registry enumerates registered accounts and resolves account
// filters for read and write operations.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"mcal/internal/config"
)

var (
	// ErrUnknownAccount means a requested account name matched no
	// registered account. Resolution fails fast on the first unmatched
	// name rather than silently skipping it.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrAccountRequired means a write operation could not be pinned to
	// exactly one account.
	ErrAccountRequired = errors.New("exactly one account required")
)

// Account is one registered identity on the remote calendar service.
type Account struct {
	Name    string
	Default bool
}

// Registry resolves account filters against the accounts directory.
type Registry struct {
	dir      config.Dir
	settings *config.Settings
}

// New creates a registry over the given configuration directory.
func New(dir config.Dir, settings *config.Settings) *Registry {
	return &Registry{dir: dir, settings: settings}
}

// ListAccounts enumerates registered accounts: subdirectories of the
// accounts directory that hold a token file, sorted by name.
func (r *Registry) ListAccounts() ([]Account, error) {
	entries, err := os.ReadDir(r.dir.AccountsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to enumerate accounts: %w", err)
	}

	var accounts []Account
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if config.ValidateAccountName(name) != nil {
			continue
		}
		tokenPath, err := r.dir.TokenPath(name)
		if err != nil {
			continue
		}
		if _, err := os.Stat(tokenPath); err != nil {
			continue
		}
		accounts = append(accounts, Account{
			Name:    name,
			Default: r.settings != nil && r.settings.DefaultAccount == name,
		})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// ResolveFilter resolves a requested account filter. With no names given it
// returns all registered accounts; read operations default to "all". With
// names given it returns exactly the matching accounts and fails with
// ErrUnknownAccount naming the first unmatched name.
func (r *Registry) ResolveFilter(requested []string) ([]Account, error) {
	all, err := r.ListAccounts()
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return all, nil
	}

	byName := make(map[string]Account, len(all))
	for _, a := range all {
		byName[a.Name] = a
	}

	resolved := make([]Account, 0, len(requested))
	for _, name := range requested {
		a, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, name)
		}
		resolved = append(resolved, a)
	}
	return resolved, nil
}

// RequireSingleAccount resolves the filter for a write operation, which
// must target exactly one account. With no names given it falls back to
// the configured default account; with zero or more than one implied
// account it fails with ErrAccountRequired.
func (r *Registry) RequireSingleAccount(requested []string) (Account, error) {
	if len(requested) == 0 {
		if r.settings != nil && r.settings.DefaultAccount != "" {
			requested = []string{r.settings.DefaultAccount}
		} else {
			return Account{}, fmt.Errorf("%w: pass --account or set a default account", ErrAccountRequired)
		}
	}
	if len(requested) > 1 {
		return Account{}, fmt.Errorf("%w: got %d accounts", ErrAccountRequired, len(requested))
	}

	resolved, err := r.ResolveFilter(requested)
	if err != nil {
		return Account{}, err
	}
	return resolved[0], nil
}

// AccountDir exposes the on-disk directory of an account, used by display
// layers to point users at their credential files.
func (r *Registry) AccountDir(name string) (string, error) {
	dir, err := r.dir.AccountDir(name)
	if err != nil {
		return "", err
	}
	return filepath.Clean(dir), nil
}
