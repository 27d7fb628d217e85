// Package credstore resolves per-account OAuth client identities and
// persists per-account tokens on disk. It performs no network I/O.
package credstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"mcal/internal/config"
)

var (
	// ErrNoClientIdentity means neither an account-scoped nor a default
	// client identity file exists. The user must fix their setup.
	ErrNoClientIdentity = errors.New("no OAuth client identity configured")

	// ErrTokenNotFound means the account has no stored token.
	ErrTokenNotFound = errors.New("token not found")
)

// Tier identifies which configuration tier a client identity came from.
type Tier string

const (
	// TierAccount is an identity read from the account's own directory.
	TierAccount Tier = "account"
	// TierDefault is the process-wide default identity.
	TierDefault Tier = "default"
)

// ClientIdentity is a resolved OAuth client configuration tagged with the
// tier it came from. Resolution never merges fields across tiers.
type ClientIdentity struct {
	Config *oauth2.Config
	Tier   Tier
	Path   string
}

// Store performs the storage-boundary operations for credential bundles.
// Token files are partitioned per account, so concurrent calls for
// different accounts never interfere.
type Store struct {
	dir    config.Dir
	logger *slog.Logger
}

// New creates a store rooted at the given configuration directory.
func New(dir config.Dir, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// ResolveClientIdentity returns the account-scoped client identity if the
// account has one, else the process-wide default. It fails with
// ErrNoClientIdentity when neither file exists.
func (s *Store) ResolveClientIdentity(account string, scopes ...string) (*ClientIdentity, error) {
	accountPath, err := s.dir.AccountClientSecretPath(account)
	if err != nil {
		return nil, err
	}

	for _, candidate := range []struct {
		path string
		tier Tier
	}{
		{accountPath, TierAccount},
		{s.dir.ClientSecretPath(), TierDefault},
	} {
		data, err := os.ReadFile(candidate.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read client identity %s: %w", candidate.path, err)
		}
		conf, err := google.ConfigFromJSON(data, scopes...)
		if err != nil {
			return nil, fmt.Errorf("invalid client identity %s: %w", candidate.path, err)
		}
		return &ClientIdentity{Config: conf, Tier: candidate.tier, Path: candidate.path}, nil
	}

	return nil, fmt.Errorf("%w: place client_secret.json in %s or %s",
		ErrNoClientIdentity, accountPath, s.dir.ClientSecretPath())
}

// HasToken reports whether a token file exists for the account.
func (s *Store) HasToken(account string) bool {
	path, err := s.dir.TokenPath(account)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// LoadToken reads an account's stored token. It fails with ErrTokenNotFound
// when the account has never been registered.
func (s *Store) LoadToken(account string) (*Token, error) {
	path, err := s.dir.TokenPath(account)
	if err != nil {
		return nil, err
	}
	tok, err := readTokenFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("account %q: %w", account, ErrTokenNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token for account %q: %w", account, err)
	}
	return tok, nil
}

// SaveToken overwrites an account's token file atomically. This is the only
// mutator of on-disk token state.
func (s *Store) SaveToken(account string, tok *Token) error {
	if tok == nil {
		return errors.New("token is nil")
	}
	path, err := s.dir.TokenPath(account)
	if err != nil {
		return err
	}
	data, err := tok.marshal()
	if err != nil {
		return err
	}
	if err := config.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to save token for account %q: %w", account, err)
	}
	s.logger.Debug("saved token", "account", account, "expiry", tok.Expiry)
	return nil
}

// DeleteAccount removes an account's credential bundle directory.
func (s *Store) DeleteAccount(account string) error {
	dir, err := s.dir.AccountDir(account)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove account %q: %w", account, err)
	}
	return nil
}
