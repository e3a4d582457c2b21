// Package middleware holds HTTP middleware for the sample API.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	processingTTL = 10 * time.Second
	completedTTL  = 24 * time.Hour
)

// Idempotency rejects replays of state-changing requests that carry an
// Idempotency-Key header. Requests without the header pass through.
func Idempotency(client *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			idemKey := fmt.Sprintf("idempotency:%s", key)
			ctx := r.Context()

			if _, err := client.Get(ctx, idemKey).Result(); err == nil {
				w.Header().Set("X-Idempotency-Hit", "true")
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error": "request already processed"}`))
				return
			} else if err != redis.Nil {
				// Redis being down must not take the API with it.
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := client.SetNX(ctx, idemKey, "PROCESSING", processingTTL).Result()
			if err != nil || !acquired {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error": "concurrent request"}`))
				return
			}

			next.ServeHTTP(w, r)

			client.Set(ctx, idemKey, "COMPLETED", completedTTL)
		})
	}
}
