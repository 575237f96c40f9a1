package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestID devuelve el id que puso chimw.RequestID ("" si no pasó por ese middleware).
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
