package auth

// Scopes are the OAuth scopes requested for every account. Calendar access
// is the only capability this tool needs.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar",
}
