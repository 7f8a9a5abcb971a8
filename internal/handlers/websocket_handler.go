package handlers

import (
	"net/http"

	"prospector/internal/utils"
	"prospector/internal/wsnotify"
)

// WebSocketHandler subscribes the caller to campaign progress events.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := wsnotify.Upgrader().Upgrade(w, r, nil)
	if err != nil {
		utils.LogWarning("Websocket upgrade failed: %v", err)
		return
	}
	wsnotify.Manager.AddClient(conn)
	defer func() {
		wsnotify.Manager.RemoveClient(conn)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
