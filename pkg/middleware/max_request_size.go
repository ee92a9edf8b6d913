package middleware

import (
	"net/http"

	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
)

// MaxRequestSize caps request bodies at limit bytes. A declared
// Content-Length over the limit is rejected up front; otherwise the body
// reader fails once the limit is crossed.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.TooLarge(limit))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
