package errors

import "net/http"

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func statusCodeIs(err error, code int) bool {
	e, ok := err.(*ErrorWithStatusCode)
	return ok && e.StatusCode == code
}

func IsNotFound(err error) bool {
	return statusCodeIs(err, http.StatusNotFound)
}

func IsConflict(err error) bool {
	return statusCodeIs(err, http.StatusBadRequest)
}
