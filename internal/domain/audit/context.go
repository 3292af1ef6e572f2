package audit

import "context"

// RequestMeta is the per-request metadata stamped onto audit entries. The
// HTTP middleware stores it; the recorder picks it up so services never
// handle transport details.
type RequestMeta struct {
	RequestID string
	IPAddress string
}

type metaKey struct{}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(metaKey{}).(RequestMeta)
	return meta, ok
}
