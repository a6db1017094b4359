package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"aero-rhythm/crewops/internal/common"
	"aero-rhythm/crewops/internal/constants"
	"aero-rhythm/crewops/internal/db/repositories"
)

const apiKeyCacheTTL = 5 * time.Minute

// APIKeyMiddleware authenticates machine callers by the hashed key from the
// X-API-Key header. Key lookups are cached so the hot path skips the database.
func APIKeyMiddleware(keysRepo *repositories.KeysRepo, cache common.CacheInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(constants.HeaderAPIKey)
			if apiKey == "" {
				http.Error(w, "Unauthorized. Missing API Key", http.StatusUnauthorized)
				return
			}

			sum := sha256.Sum256([]byte(apiKey))
			keyHash := hex.EncodeToString(sum[:])

			cacheKey := "APIKEY_" + keyHash
			if v, found := cache.Get(cacheKey); found {
				if active, ok := v.(bool); ok {
					if !active {
						http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
						return
					}
					next.ServeHTTP(w, r)
					return
				}
			}

			keyRes, err := keysRepo.GetStatus(r.Context(), keyHash)
			if err != nil {
				http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
				return
			}

			cache.Set(cacheKey, keyRes.Status, apiKeyCacheTTL)
			if !keyRes.Status {
				http.Error(w, "Unauthorized. Inactive API Key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
