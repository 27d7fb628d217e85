// Package auth manages the lifecycle of per-account OAuth credentials.
//
// It turns a stored credential bundle into a short-lived authorized
// session, refreshing expired tokens on demand and persisting the
// refreshed token before the session is handed out. It also drives the
// interactive browser-based flow that registers a new account.
package auth
