package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// HTTPError is an error that carries the status code it should be served with.
type HTTPError struct {
	Status  int
	Message string
}

// NewHTTPError returns an HTTPError; an empty message defaults to the status text.
func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// handlerFunc is an http.HandlerFunc that may fail. Failures are rendered
// as the JSON error body with the status preserved.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (fn handlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		writeHandlerError(w, r, err)
	}
}

type errorResponse struct {
	Message string       `json:"message"`
	Request errorRequest `json:"request"`
}

type errorRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
	Status int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := errorResponse{
		Message: message,
		Request: errorRequest{
			Method: r.Method,
			URL:    requestURL(r),
			Status: status,
		},
	}
	writeJSON(w, status, resp)
}

func writeHandlerError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		writeError(w, r, httpErr.Status, httpErr.Message)
		return
	}
	writeError(w, r, http.StatusInternalServerError, err.Error())
}

// requestURL rebuilds the absolute URL the client asked for.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
