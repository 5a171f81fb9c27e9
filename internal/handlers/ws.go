// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gaolinyi828/mahjong-pro/internal/middleware"
	"github.com/gaolinyi828/mahjong-pro/internal/watch"
)

// snapshotMessage is the frame pushed to watchers: the full current state,
// every time anything changes.
type snapshotMessage struct {
	Type string `json:"type"` // always "snapshot"
	*watch.Snapshot
}

// ClubWSHandler upgrades to WebSocket and streams snapshots. The current
// snapshot goes out immediately on subscribe, then the latest one after
// every change; a slow client skips intermediate states.
func ClubWSHandler(logger *logrus.Logger, s *ClubServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authenticate before the upgrade so the guest cookie can still be
		// set on the handshake response.
		if _, err := EnsureGuest(w, r); err != nil {
			logger.Warnf("guest bootstrap failed: %v", err)
			http.Error(w, "authentication failed", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")
		middleware.LogWatcherConnect(logger, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		subID, snapshots := s.Hub.Subscribe()
		defer s.Hub.Unsubscribe(subID)

		// Watchers never send application messages; the read loop exists to
		// notice the peer going away.
		go func() {
			for {
				if _, _, err := c.Read(ctx); err != nil {
					cancel()
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				middleware.LogWatcherDisconnect(logger, r.RemoteAddr, nil)
				c.Close(websocket.StatusNormalClosure, "bye")
				return

			case snap, ok := <-snapshots:
				if !ok {
					c.Close(websocket.StatusGoingAway, "hub shutting down")
					return
				}
				data, err := json.Marshal(snapshotMessage{Type: "snapshot", Snapshot: snap})
				if err != nil {
					logger.Errorf("marshal snapshot: %v", err)
					continue
				}
				writeCtx, cancelWrite := context.WithTimeout(ctx, 5*time.Second)
				err = c.Write(writeCtx, websocket.MessageText, data)
				cancelWrite()
				if err != nil {
					middleware.LogWatcherDisconnect(logger, r.RemoteAddr, err)
					return
				}
			}
		}
	}
}
