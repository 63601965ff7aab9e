package auth

import (
	"context"
	"errors"
	"net/http"

	apperrors "seatsnag/pkg/errors"
	httputil "seatsnag/pkg/http"

	"github.com/julienschmidt/httprouter"
)

type ctxKey int

const claimsKey ctxKey = 1

func SetClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims returns the claims placed by Authenticate.
func GetClaims(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

// Authenticate rejects requests without a valid bearer token and stores
// the claims in the request context.
func Authenticate(a *Auth) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			claims, err := a.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				msg := "Invalid or expired token"
				if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrMalformed) {
					msg = err.Error()
				}
				httputil.WriteError(w, apperrors.Unauthorized(msg))
				return
			}
			next(w, r.WithContext(SetClaims(r.Context(), claims)), ps)
		}
	}
}

// Require authenticates and then authorizes against roles.
func Require(a *Auth, roles ...Role) func(httprouter.Handle) httprouter.Handle {
	authenticate := Authenticate(a)
	return func(next httprouter.Handle) httprouter.Handle {
		return authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			claims, _ := GetClaims(r.Context())
			if err := a.Authorize(claims, roles...); err != nil {
				httputil.WriteError(w, apperrors.Forbidden("You do not have access to this resource"))
				return
			}
			next(w, r, ps)
		})
	}
}
