package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UnknownMessage is the message of every code missing from the table.
const UnknownMessage = "Unknown error"

// Authorization failure codes.
const (
	CodeNoAccessToken      = 1
	CodeInvalidAccessToken = 2
	CodeTooManyRequests    = 3
	CodeOffline            = 4
)

var messages = map[int]string{
	1:   "No access token was given",
	2:   "The access token was invalid",
	3:   "Too many API requests",
	4:   "The API is offline for maintenance",
	101: "SSL connection is required",
	102: "There was an error requesting a token",
	103: "Too many token requests",
	201: "Your folder must have a name.",
	202: "A folder with that name already exists.",
	203: "Max folders reached (1000).",
	204: "Empty id.",
	205: "Invalid folder.",
	206: "Nothing was edited.",
	301: "Your context must have a name.",
	302: "A context with that name already exists.",
	303: "Max contexts reached (1000).",
	304: "Empty id.",
	305: "Invalid context.",
	306: "Nothing was edited.",
	601: "Your task must have a title.",
	602: "Only 50 tasks can be added/edited/deleted at a time.",
	603: "The maximum number of tasks allowed per account (20000) has been reached",
	604: "Empty id",
	605: "Invalid task",
	606: "Nothing was added/edited.",
	607: "Invalid folder id",
	608: "Invalid context id",
	609: "Invalid goal id",
	610: "Invalid location id",
	611: "Malformed request",
	612: "Invalid parent id",
	613: "Incorrect field parameters",
	614: "Parent was deleted",
	615: "Invalid collaborator",
	616: "Unable to reassign or share task",
}

// Message returns the fixed message for code and whether the code is known.
func Message(code int) (string, bool) {
	msg, ok := messages[code]
	return msg, ok
}

// Error is a failure reported by the Toodledo API in the response body.
type Error struct {
	Code        int
	Message     string
	Description string // errorDesc as sent by the server, may be empty
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Description != "" && e.Description != e.Message {
		return fmt.Sprintf("toodledo error %d: %s (%s)", e.Code, e.Message, e.Description)
	}
	return fmt.Sprintf("toodledo error %d: %s", e.Code, e.Message)
}

// Known reports whether the code is in the message table.
func (e *Error) Known() bool {
	_, ok := messages[e.Code]
	return ok
}

// New maps code to an *Error. Unknown codes get UnknownMessage and keep the code.
func New(code int) *Error {
	msg, ok := messages[code]
	if !ok {
		msg = UnknownMessage
	}
	return &Error{Code: code, Message: msg}
}

type errorBody struct {
	ErrorCode json.RawMessage `json:"errorCode"`
	ErrorDesc string          `json:"errorDesc"`
}

// Check inspects a decoded response body for an embedded error. A top level
// object with an errorCode key fails, as does a top level array containing such
// an object (per item failures on add and edit). Check returns nil otherwise,
// including for bodies that are neither objects nor arrays.
func Check(body json.RawMessage) error {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil
	}

	switch trimmed[0] {
	case '{':
		return checkObject(json.RawMessage(trimmed))
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil
		}
		for _, item := range items {
			if err := checkObject(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkObject(raw json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	codeRaw, ok := fields["errorCode"]
	if !ok {
		return nil
	}

	var body errorBody
	_ = json.Unmarshal(raw, &body)

	apiErr := New(parseCode(codeRaw))
	apiErr.Description = body.ErrorDesc
	return apiErr
}

func parseCode(raw json.RawMessage) int {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return int(v)
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v
		}
	}
	return 0
}

// Code returns the API error code carried by err, or 0 if err is not an *Error.
func Code(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// IsAuthorization reports whether err is an API error that a fresh access
// token can fix.
func IsAuthorization(err error) bool {
	switch Code(err) {
	case CodeNoAccessToken, CodeInvalidAccessToken:
		return true
	}
	return false
}
