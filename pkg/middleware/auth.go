package middleware

import (
	"context"
	"net/http"

	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const principalKey contextKey = "principal"

// PrincipalResolver maps a bearer token to the user it belongs to
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, raw string) (*model.User, error)
}

func WithPrincipal(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(principalKey).(*model.User)
	return user, ok && user != nil
}

// RequireAuth rejects requests without a valid bearer token and passes the
// resolved principal to next through the request context.
func RequireAuth(resolver PrincipalResolver, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			raw, ok := httputil.BearerToken(r)
			if !ok {
				writeAuthError(w, log, apperrors.Unauthorized("Not authenticated"))
				return
			}

			user, err := resolver.ResolvePrincipal(r.Context(), raw)
			if err != nil {
				log.Warn("Rejected bearer token",
					"path", r.URL.Path,
					"error", err,
				)
				writeAuthError(w, log, err)
				return
			}

			next(w, r.WithContext(WithPrincipal(r.Context(), user)), ps)
		}
	}
}

func writeAuthError(w http.ResponseWriter, log *logger.Logger, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.Error("failed to write error response", "handler", "RequireAuth", "operation", "WriteError", "error", writeErr)
	}
}
