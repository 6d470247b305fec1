// Package transport performs the HTTP requests of the Toodledo v3 API.
//
// A Session wraps an authenticated *http.Client (normally the one returned by
// golang.org/x/oauth2) and exposes the two request shapes the API uses: GET with
// query parameters and POST with a form encoded body. Both decode the JSON
// response and fail with a *StatusError on a non-2xx status.
//
// Error bodies returned with HTTP 200 are not interpreted here; see apierror.
package transport
