package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// EnvConfigDir overrides the root configuration directory.
const EnvConfigDir = "MCAL_CONFIG_DIR"

const (
	settingsFileName     = "settings.json"
	clientSecretFileName = "client_secret.json"
	tokenFileName        = "token.json"
	accountsDirName      = "accounts"
)

var accountNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Dir describes the on-disk configuration layout:
//
//	<root>/settings.json                        process-wide settings
//	<root>/client_secret.json                   default OAuth client identity
//	<root>/accounts/<name>/token.json           per-account token
//	<root>/accounts/<name>/client_secret.json   optional account-scoped identity
type Dir struct {
	Root string
}

// DefaultDir resolves the configuration root from the environment,
// falling back to ~/.config/mcal.
func DefaultDir() (Dir, error) {
	if root := os.Getenv(EnvConfigDir); root != "" {
		return Dir{Root: root}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Dir{}, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return Dir{Root: filepath.Join(home, ".config", "mcal")}, nil
}

// ValidateAccountName rejects names that could escape the accounts directory.
func ValidateAccountName(name string) error {
	if !accountNameRe.MatchString(name) {
		return fmt.Errorf("invalid account name %q: use only letters, numbers, hyphens, and underscores", name)
	}
	return nil
}

// EnsureDirs creates the root and accounts directories with owner-only permissions.
func (d Dir) EnsureDirs() error {
	for _, dir := range []string{d.Root, d.AccountsDir()} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
	}
	return nil
}

// AccountsDir returns the directory holding one subdirectory per account.
func (d Dir) AccountsDir() string {
	return filepath.Join(d.Root, accountsDirName)
}

// AccountDir returns the directory for one account's credential bundle.
func (d Dir) AccountDir(name string) (string, error) {
	if err := ValidateAccountName(name); err != nil {
		return "", err
	}
	// The resolved path must stay inside the accounts directory.
	dir := filepath.Join(d.AccountsDir(), name)
	if !strings.HasPrefix(dir, d.AccountsDir()+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid account name %q", name)
	}
	return dir, nil
}

// TokenPath returns the path of an account's token file.
func (d Dir) TokenPath(name string) (string, error) {
	dir, err := d.AccountDir(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenFileName), nil
}

// AccountClientSecretPath returns the path of an account-scoped client
// identity file. The file is optional; callers must check existence.
func (d Dir) AccountClientSecretPath(name string) (string, error) {
	dir, err := d.AccountDir(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, clientSecretFileName), nil
}

// ClientSecretPath returns the path of the process-wide default client
// identity file.
func (d Dir) ClientSecretPath() string {
	return filepath.Join(d.Root, clientSecretFileName)
}

// SettingsPath returns the path of the process-wide settings file.
func (d Dir) SettingsPath() string {
	return filepath.Join(d.Root, settingsFileName)
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so a crash mid-write never leaves a truncated file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mcal-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
