package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goToken "github.com/MrEthical07/goToken"
	"go.uber.org/zap"
)

// Authenticator validates a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*goToken.Identity, error)
}

type identityContextKey struct{}

// IdentityFromContext returns the identity set by [Authenticate].
func IdentityFromContext(ctx context.Context) (*goToken.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*goToken.Identity)
	return id, ok && id != nil
}

// WithIdentity stores id in ctx. Tests and custom gates use it.
func WithIdentity(ctx context.Context, id *goToken.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

type options struct {
	log *zap.Logger
}

type Option func(*options)

// WithLogger logs rejected tokens at debug level, and revocation store failures
// at error level.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

func Authenticate(auth Authenticator, opts ...Option) func(http.Handler) http.Handler {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || auth == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := goToken.WithRemoteAddr(r.Context(), r.RemoteAddr)
			id, err := auth.Authenticate(ctx, token)
			if err != nil {
				if errors.Is(err, goToken.ErrStoreUnavailable) {
					o.log.Error("bearer check failed", zap.String("path", r.URL.Path), zap.Error(err))
				} else {
					o.log.Debug("bearer rejected", zap.String("path", r.URL.Path), zap.String("reason", err.Error()))
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// Guard rejects every request that does not carry a valid access token.
func Guard(auth Authenticator, opts ...Option) func(http.Handler) http.Handler {
	authenticate := Authenticate(auth, opts...)
	return func(next http.Handler) http.Handler {
		return authenticate(RequireAuthenticated(next))
	}
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}
