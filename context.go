package goToken

import "context"

type remoteAddrContextKey struct{}

// WithRemoteAddr attaches the caller's address to ctx. It is copied into audit
// events and log lines.
func WithRemoteAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, remoteAddrContextKey{}, addr)
}

func remoteAddrFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	addr, _ := ctx.Value(remoteAddrContextKey{}).(string)
	return addr
}
