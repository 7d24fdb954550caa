package actorctx

import "context"

type key struct{}

// WithAdmin records the authenticated administrator on the request context.
func WithAdmin(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, key{}, username)
}

func AdminFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(key{}).(string)

	return v, ok && v != ""
}
