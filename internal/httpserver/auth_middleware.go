package httpserver

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"runhub/internal/domain"
	"runhub/internal/security"
)

// AuthMiddleware resolves an optional Bearer token into a domain.Caller on the
// request context. With required set, requests without a valid token are
// rejected.
func AuthMiddleware(tokens *security.TokenService, users domain.UserRepository, required bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || tokens == nil {
				if required {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing Authorization header"})
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid Authorization header"})
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			caller, err := tokens.Caller(tokenStr)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			user, err := users.GetByUsername(r.Context(), caller.Username)
			if err != nil {
				logger.Warn("auth: resolve token subject", zap.String("sub", caller.Username), zap.Error(err))
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not found"})
				return
			}
			if !user.IsRegistered() {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not found"})
				return
			}

			ctx := domain.WithCaller(r.Context(), &domain.Caller{UserID: user.ID, Username: user.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireCallerUsername rejects requests whose authenticated caller is not
// username. Anonymous requests pass.
func requireCallerUsername(r *http.Request, op, username string) error {
	c, ok := domain.CallerFrom(r.Context())
	if !ok || c.Username == username {
		return nil
	}
	return impersonation(op)
}

// requireCallerID is requireCallerUsername for user ids.
func requireCallerID(r *http.Request, op, userID string) error {
	c, ok := domain.CallerFrom(r.Context())
	if !ok || c.UserID == userID {
		return nil
	}
	return impersonation(op)
}

func impersonation(op string) error {
	return &domain.Error{
		Code:    domain.CodeNotAParticipant,
		Op:      op,
		Message: "caller may only act as themselves",
	}
}
