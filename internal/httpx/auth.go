package httpx

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/go-shop-orders/internal/auth"
)

// RequireBearer rejects requests without a valid bearer token and stores
// the token claims in the request context.
func RequireBearer(iss *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || token == "" {
				fail(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}
			c, err := iss.Parse(token)
			if err != nil {
				fail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), c)))
		})
	}
}
