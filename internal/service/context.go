package service

import "context"

type ctxKey string

const ctxHolderIDKey ctxKey = "holderID"

// Холдер — идентификатор покупательской сессии, который шлюз кладёт в
// заголовок после своей аутентификации.
func WithHolderID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxHolderIDKey, id)
}

func HolderIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxHolderIDKey).(string)
	return v, ok && v != ""
}
