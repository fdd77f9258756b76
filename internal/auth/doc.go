// Package auth holds the credential and session boundary of the publisher:
// environment credentials, the persisted cookie session and the polling loop
// that waits for an interactive login to produce a session cookie. Browser
// automation lives outside this package; a probe function supplies cookies.
package auth
