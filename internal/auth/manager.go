package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"mcal/internal/credstore"
	"mcal/internal/logging"
)

var (
	// ErrNotAuthenticated means the account has never been registered.
	// This is not retriable; the account must be added first.
	ErrNotAuthenticated = errors.New("account not authenticated")

	// ErrReauthenticationRequired means the refresh token was revoked or
	// rejected. The account must be registered again interactively.
	ErrReauthenticationRequired = errors.New("reauthentication required")

	// ErrDuplicateAccount means an account with that name already exists.
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrAccountNotFound means no stored bundle exists for the account.
	ErrAccountNotFound = errors.New("account not found")
)

// DefaultRefreshAhead is the margin before expiry at which a token is
// refreshed rather than used as-is.
const DefaultRefreshAhead = time.Minute

// Session is an ephemeral handle bound to one account's current valid
// credentials. It is owned by the call that obtained it and must not be
// cached beyond one aggregation pass.
type Session struct {
	account string
	client  *http.Client
}

// NewSession constructs a session directly from an HTTP client, for
// callers that manage their own token source.
func NewSession(account string, client *http.Client) *Session {
	return &Session{account: account, client: client}
}

// Account returns the account this session authorizes.
func (s *Session) Account() string { return s.account }

// HTTPClient returns an HTTP client that attaches the session's token.
func (s *Session) HTTPClient() *http.Client { return s.client }

// Manager wraps the credential store and produces valid sessions,
// refreshing and persisting tokens as needed.
type Manager struct {
	store        *credstore.Store
	logger       *slog.Logger
	refreshAhead time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a lifecycle manager on top of the given store.
func NewManager(store *credstore.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:        store,
		logger:       logger,
		refreshAhead: DefaultRefreshAhead,
		locks:        make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-account guard. Concurrent sessions for the same
// account serialize their load-refresh-save sequence; different accounts
// never contend.
func (m *Manager) lockFor(account string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[account]
	if !ok {
		l = &sync.Mutex{}
		m.locks[account] = l
	}
	return l
}

// ObtainSession loads the account's token, refreshes it if it is expired
// or within the refresh-ahead margin, persists the refreshed token, and
// returns an authorized session.
func (m *Manager) ObtainSession(ctx context.Context, account string) (*Session, error) {
	l := m.lockFor(account)
	l.Lock()
	defer l.Unlock()

	stored, err := m.store.LoadToken(account)
	if err != nil {
		if errors.Is(err, credstore.ErrTokenNotFound) {
			return nil, fmt.Errorf("account %q: %w (run: mcal account add %s)", account, ErrNotAuthenticated, account)
		}
		return nil, err
	}

	tok := stored.OAuth2()
	if m.needsRefresh(tok) {
		tok, err = m.refresh(ctx, account, stored)
		if err != nil {
			return nil, err
		}
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	return &Session{account: account, client: client}, nil
}

func (m *Manager) needsRefresh(tok *oauth2.Token) bool {
	if tok.Expiry.IsZero() {
		return false
	}
	return time.Until(tok.Expiry) < m.refreshAhead
}

// refresh exchanges the refresh token and persists the result before the
// new token is used, so the refreshed credential is durable even if the
// subsequent fetch fails.
func (m *Manager) refresh(ctx context.Context, account string, stored *credstore.Token) (*oauth2.Token, error) {
	if stored.RefreshToken == "" {
		return nil, fmt.Errorf("account %q: token expired and no refresh token stored: %w", account, ErrReauthenticationRequired)
	}

	identity, err := m.store.ResolveClientIdentity(account, Scopes...)
	if err != nil {
		return nil, err
	}

	// The token source only exchanges once the token it was seeded with
	// is expired by its own, narrower margin. Seed it with an already
	// expired copy so the exchange happens for the whole refreshAhead
	// window.
	stale := stored.OAuth2()
	stale.Expiry = time.Now().Add(-time.Minute)
	refreshed, err := identity.Config.TokenSource(ctx, stale).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
			return nil, fmt.Errorf("account %q: refresh token rejected: %w (run: mcal account add %s --overwrite)",
				account, ErrReauthenticationRequired, account)
		}
		return nil, fmt.Errorf("account %q: token refresh failed: %w", account, err)
	}

	// Google omits the refresh token from refresh responses; keep the old one.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = stored.RefreshToken
	}

	if err := m.store.SaveToken(account, credstore.NewToken(refreshed, identity.Config, stored.Scopes)); err != nil {
		return nil, err
	}

	m.logger.Info("refreshed token",
		logging.Account(account),
		slog.Time("expiry", refreshed.Expiry))
	return refreshed, nil
}

// RegisterAccount drives the interactive authorization flow and persists
// the resulting token. It fails with ErrDuplicateAccount when the account
// already has a token, unless overwrite is set.
func (m *Manager) RegisterAccount(ctx context.Context, account string, overwrite bool) error {
	l := m.lockFor(account)
	l.Lock()
	defer l.Unlock()

	if m.store.HasToken(account) && !overwrite {
		return fmt.Errorf("account %q: %w (remove it first or pass --overwrite)", account, ErrDuplicateAccount)
	}

	identity, err := m.store.ResolveClientIdentity(account, Scopes...)
	if err != nil {
		return err
	}
	m.logger.Debug("resolved client identity",
		logging.Account(account),
		slog.String("tier", string(identity.Tier)))

	tok, err := runLocalFlow(ctx, identity.Config, m.logger)
	if err != nil {
		return fmt.Errorf("authorization flow for account %q failed: %w", account, err)
	}

	if err := m.store.SaveToken(account, credstore.NewToken(tok, identity.Config, Scopes)); err != nil {
		return err
	}
	m.logger.Info("registered account", logging.Account(account))
	return nil
}

// RemoveAccount deletes the account's stored credential bundle.
func (m *Manager) RemoveAccount(account string) error {
	l := m.lockFor(account)
	l.Lock()
	defer l.Unlock()

	if !m.store.HasToken(account) {
		return fmt.Errorf("account %q: %w", account, ErrAccountNotFound)
	}
	if err := m.store.DeleteAccount(account); err != nil {
		return err
	}
	m.logger.Info("removed account", logging.Account(account))
	return nil
}
