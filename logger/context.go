package logger

import "context"

type (
	requestIDKey    struct{}
	contractActionKey struct{}
	operationIDKey  struct{}
	txHashKey       struct{}
)

// WithRequestID returns a context carrying the given request correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the request correlation ID carried by the context, if any.
func GetRequestID(ctx context.Context) string {
	return getStringCtxValue(ctx, requestIDKey{})
}

// WithContractAction returns a context tagged with the contract action being executed.
func WithContractAction(ctx context.Context, action string) context.Context {
	return context.WithValue(ctx, contractActionKey{}, action)
}

// GetContractAction returns the contract action carried by the context, if any.
func GetContractAction(ctx context.Context) string {
	return getStringCtxValue(ctx, contractActionKey{})
}

// WithOperationID returns a context tagged with the pending operation ID it concerns.
func WithOperationID(ctx context.Context, operationID uint64) context.Context {
	return context.WithValue(ctx, operationIDKey{}, operationID)
}

// GetOperationID returns the operation ID carried by the context and whether one was set.
func GetOperationID(ctx context.Context) (uint64, bool) {
	v, ok := ctx.Value(operationIDKey{}).(uint64)
	return v, ok
}

// WithTxHash returns a context tagged with the XRPL transaction hash it concerns.
func WithTxHash(ctx context.Context, hash string) context.Context {
	return context.WithValue(ctx, txHashKey{}, hash)
}

// GetTxHash returns the XRPL transaction hash carried by the context, if any.
func GetTxHash(ctx context.Context) string {
	return getStringCtxValue(ctx, txHashKey{})
}

func getStringCtxValue(ctx context.Context, key any) string {
	v, _ := ctx.Value(key).(string)
	return v
}
