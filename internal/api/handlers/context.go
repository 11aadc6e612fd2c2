package handlers

import (
	"context"
	"time"
)

func contextWithRunTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Minute)
}
