// Package api defines the request and response messages of the billdesk
// Connect services. Messages travel as JSON; decimal values are encoded as
// strings and accepted as strings or numbers.
package api
