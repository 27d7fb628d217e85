package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// Token is the plain JSON serialization of an account's OAuth token,
// kept host-portable and inspectable.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// NewToken builds the on-disk representation from a live OAuth token and
// the client configuration it was issued against.
func NewToken(tok *oauth2.Token, conf *oauth2.Config, scopes []string) *Token {
	t := &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scopes:       scopes,
		Expiry:       tok.Expiry,
	}
	if conf != nil {
		t.TokenURI = conf.Endpoint.TokenURL
		t.ClientID = conf.ClientID
		t.ClientSecret = conf.ClientSecret
	}
	return t
}

// OAuth2 converts the stored form back into an oauth2 token.
func (t *Token) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}

func (t *Token) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}
	return append(data, '\n'), nil
}

func readTokenFile(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	return &t, nil
}
