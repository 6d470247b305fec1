// Package apierror maps the numeric error codes returned in Toodledo response
// bodies to typed errors.
//
// The API reports most failures with HTTP 200 and a body such as
//
//	{"errorCode": 602, "errorDesc": "Only 50 tasks can be added/edited/deleted at a time."}
//
// Check detects such bodies, and New turns any code, known or not, into an *Error.
package apierror
