package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrEmptyChannelName = errors.New("empty channel name")
	ErrMissingArgument  = errors.New("missing argument")
)

// Error is a failure reported by the backend, either as an HTTP status or as
// a server side exception.
type Error struct {
	StatusCode int
	ExcType    string
	Message    string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.ExcType != "" {
		return fmt.Sprintf("backend: %d %s: %s", e.StatusCode, e.ExcType, msg)
	}
	return fmt.Sprintf("backend: %d: %s", e.StatusCode, msg)
}

func (e *Error) IsPermission() bool {
	return e.StatusCode == http.StatusForbidden || e.ExcType == "PermissionError"
}

func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.ExcType == "DoesNotExistError"
}

// IsPermission reports whether err is a backend permission failure.
func IsPermission(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.IsPermission()
}

type errorBody struct {
	ExcType        string `json:"exc_type"`
	Exception      string `json:"exception"`
	ServerMessages string `json:"_server_messages"`
	Message        string `json:"message"`
}

type serverMessage struct {
	Message string `json:"message"`
}

func parseError(status int, body []byte) *Error {
	e := &Error{StatusCode: status}

	var b errorBody
	if err := json.Unmarshal(body, &b); err != nil {
		e.Message = strings.TrimSpace(string(body))
		return e
	}
	e.ExcType = b.ExcType
	e.Message = firstServerMessage(b.ServerMessages)
	if e.Message == "" {
		e.Message = b.Message
	}
	if e.Message == "" {
		e.Message = b.Exception
	}
	return e
}

// _server_messages is a JSON encoded list of JSON encoded objects
func firstServerMessage(raw string) string {
	if raw == "" {
		return ""
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return ""
	}
	for _, item := range list {
		var m serverMessage
		if err := json.Unmarshal([]byte(item), &m); err == nil && m.Message != "" {
			return m.Message
		}
	}
	return ""
}
