package api

import "net/http"

// HandlerFunc is an http.HandlerFunc that reports failure by returning an
// error instead of writing its own failure response. Returning nil means the
// handler already wrote a success response.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// Wrap adapts a HandlerFunc for the router. Any returned error is forwarded
// to the error boundary exactly once; the success path is untouched.
func (ew *ErrorWriter) Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			ew.WriteError(w, r, err)
		}
	}
}
