package ws

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"runhub/internal/security"
)

// HandlerConfig configures the /ws endpoint.
type HandlerConfig struct {
	AllowedOrigins []string
	// RequireAuth rejects upgrades without a valid bearer token.
	RequireAuth bool
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

// makeCheckOrigin accepts listed origins, any origin when "*" is listed, and
// requests without an Origin header (non-browser clients).
func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	_, wildcard := allowed["*"]

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" || wildcard {
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

// extractToken reads a bearer token from the Authorization header or from the
// "bearer, <token>" subprotocol pair browsers can set.
func extractToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		if token := strings.TrimSpace(authHeader[len("Bearer "):]); token != "" {
			return token
		}
	}

	if protocolHeader := r.Header.Get("Sec-WebSocket-Protocol"); protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	return ""
}

// MakeHandler returns the /ws endpoint. Connections only receive events; the
// token, when present, identifies the client in logs.
func MakeHandler(hub *Hub, tokens *security.TokenService, cfg HandlerConfig, logger *zap.Logger) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(cfg.AllowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin:  checkOrigin,
		Subprotocols: []string{"bearer"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		username := ""
		if tokenStr := extractToken(r); tokenStr != "" && tokens != nil {
			caller, err := tokens.Caller(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			username = caller.Username
		}
		if cfg.RequireAuth && username == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("websocket upgrade", zap.Error(err))
			return
		}

		client := newClient(hub, conn, username, logger)
		hub.Register(client)
		logger.Debug("websocket connected", zap.String("username", username))
		client.serve()
	}
}
