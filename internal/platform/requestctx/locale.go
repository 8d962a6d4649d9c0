// Package requestctx carries per-request values through context.
package requestctx

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// LocaleMetadataKey is the gRPC metadata key naming the caller's locale.
const LocaleMetadataKey = "x-sleepsleep-locale"

// localeContextKey is the context key for the caller's locale.
type localeContextKey struct{}

// WithLocale stores a locale in context.
func WithLocale(ctx context.Context, locale string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey{}, strings.TrimSpace(locale))
}

// LocaleFromContext returns the locale stored in context.
func LocaleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(localeContextKey{}).(string)
	return value
}

// UnaryLocaleInterceptor copies the locale from incoming metadata into context.
func UnaryLocaleInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(LocaleMetadataKey); len(values) > 0 {
				ctx = WithLocale(ctx, values[0])
			}
		}
		return handler(ctx, req)
	}
}
