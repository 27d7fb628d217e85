package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// runLocalFlow performs the browser-based authorization grant. It listens
// on an ephemeral loopback port for the redirect, prints the authorization
// URL for the user to open, and exchanges the returned code for a token.
func runLocalFlow(ctx context.Context, conf *oauth2.Config, logger *slog.Logger) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth redirect: %w", err)
	}
	defer ln.Close()

	flowConf := *conf
	flowConf.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := uuid.NewString()

	type outcome struct {
		code string
		err  error
	}
	ch := make(chan outcome, 1)

	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				ch <- outcome{err: fmt.Errorf("authorization redirect state mismatch")}
				return
			}
			if e := q.Get("error"); e != "" {
				http.Error(w, "authorization denied", http.StatusBadRequest)
				ch <- outcome{err: fmt.Errorf("authorization denied: %s", e)}
				return
			}
			fmt.Fprintln(w, "Authorization complete. You can close this tab.")
			ch <- outcome{code: q.Get("code")}
		}),
	}
	go srv.Serve(ln)
	defer srv.Close()

	url := flowConf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open the following URL in your browser:\n\n  %s\n\nWaiting for authorization...\n", url)
	logger.Debug("waiting for OAuth redirect", slog.String("redirect_url", flowConf.RedirectURL))

	var out outcome
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out = <-ch:
	}
	if out.err != nil {
		return nil, out.err
	}
	if out.code == "" {
		return nil, fmt.Errorf("authorization redirect carried no code")
	}

	tok, err := flowConf.Exchange(ctx, out.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}
