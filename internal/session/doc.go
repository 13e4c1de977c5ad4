// Package session owns the in-memory session token and gates machine runs
// on it.
//
// The token is fetched from the local token endpoint the first time a run
// is requested. When the fetch fails the user is asked for a token through
// the popup and the request that triggered the fetch is dropped; the user
// repeats the gesture once a token has been entered. A token, once set, is
// reused for the rest of the session and is never cleared, not even when a
// machine run fails.
package session
