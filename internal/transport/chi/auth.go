package chi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// APIKeyAuthMiddleware resolves the caller identity from a Bearer API key.
// apiKeys maps key → owner ID. If it is empty, authentication is disabled and requests stay
// anonymous; owner-scoped handlers then answer 401.
func APIKeyAuthMiddleware(apiKeys map[string]string) func(http.Handler) http.Handler {
	owners := make(map[string]string, len(apiKeys))
	for k, owner := range apiKeys {
		if k != "" && owner != "" {
			owners[k] = owner
		}
	}

	return func(next http.Handler) http.Handler {
		// No keys configured: requests pass through anonymously.
		if len(owners) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			owner, ok := owners[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid api key")
				return
			}

			if ev := eventFromContext(r.Context()); ev != nil {
				ev.owner = owner
			}
			ctx := domain.ContextWithOwner(r.Context(), owner)
			ctx = logpkg.WithFields(ctx, zap.String("owner", owner))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
