package logger

import "context"

// ridKey is unexported so only this package can store or read the
// request ID; callers go through WithRequestID and RequestID.
type ridKey struct{}

// WithRequestID tags ctx with the request ID assigned by the HTTP
// middleware so downstream log lines can carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ridKey{}, id)
}

// RequestID reads the request ID back out of ctx, or "" when the
// context never passed through the middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ridKey{}).(string)
	return id
}
