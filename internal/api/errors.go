package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is a rejection reported by the server, either a non-2xx status or a
// 2xx body carrying an error field.
type Error struct {
	Status  int
	Title   string
	Message string
}

func (e *Error) Error() string {
	if e.Title != "" {
		return e.Title + ": " + e.Message
	}
	return e.Message
}

type envelope struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Title   string `json:"title,omitempty"`
}

func parseError(status int, body []byte) *Error {
	var env envelope
	decoded := json.Unmarshal(body, &env) == nil

	if status < 200 || status > 299 {
		e := &Error{Status: status, Title: http.StatusText(status)}
		if decoded {
			if env.Title != "" {
				e.Title = env.Title
			}
			e.Message = firstNonEmpty(env.Error, env.Message)
		}
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	if !decoded {
		return nil
	}
	if env.Error != "" || (env.Success != nil && !*env.Success) {
		return &Error{
			Status:  status,
			Title:   firstNonEmpty(env.Title, "Error"),
			Message: firstNonEmpty(env.Error, env.Message, "request rejected"),
		}
	}
	return nil
}

// AsError reports whether err is a server-side rejection.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsUnauthorized(err error) bool {
	e, ok := AsError(err)
	return ok && (e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
