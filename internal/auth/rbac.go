package auth

import (
	"net/http"

	"github.com/frahmantamala/research-analytics/internal"
	"github.com/frahmantamala/research-analytics/pkg/logger"
)

// RequireRoles lets the request through only when the caller holds one of roles.
// It must run after AuthMiddleware.
func (h *Handler) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				h.WriteAppError(w, internal.ErrInvalidToken)
				return
			}
			if _, ok := allowed[principal.Role]; !ok {
				logger.From(r.Context()).Warn("access denied: insufficient role",
					"user_id", principal.UserID,
					"role", principal.Role,
					"required_roles", roles)
				h.WriteAppError(w, internal.ErrInsufficientRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
