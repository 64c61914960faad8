package websocket

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"sivec/internal/general/jwt"
	"sivec/internal/general/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// dispatch screens are served from another origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ConnectHandler upgrades an authenticated request and keeps the connection
// in the hub until the peer goes away. Clients only receive; inbound frames
// are drained to process control messages.
func ConnectHandler(mgr *jwt.Manager, hub *Hub, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := jwt.FromAuthorization(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		_, claims, err := mgr.ParseAndValidate(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error(r.Context(), "ws_upgrade_failed", "WebSocket upgrade failed", err, nil)
			return
		}

		id := claims.Subject + ":" + randSuffix()
		ctx := r.Context()
		hub.Add(ctx, id, claims.Branch, claims.Role, conn)

		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		})
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		go func() {
			defer hub.Remove(ctx, id)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
				_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
			}
		}()
	}
}

func randSuffix() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
