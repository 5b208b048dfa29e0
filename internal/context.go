package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"

// Principal is the authenticated caller as carried by the access token.
type Principal struct {
	UserID        string
	Email         string
	Role          string
	InstitutionID string
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(Principal)
	return p, ok
}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

func UserIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}

// InstitutionScope returns explicit when set, otherwise the caller's institution.
// An empty result means no institution filter.
func InstitutionScope(ctx context.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	p, _ := PrincipalFromContext(ctx)
	return p.InstitutionID
}

// WithTimeout bounds ctx by duration, or by 5s when duration is not positive.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
