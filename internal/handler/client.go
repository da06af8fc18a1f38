package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"docdetect/internal/logger"
	"docdetect/internal/service"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler streams a PredictionEvent to the viewer after every
// successful prediction until the viewer disconnects.
func ViewWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hub := manager.GetWebsocketService()
		if hub == nil {
			respondError(w, "Live feed disabled", http.StatusNotFound)
			return
		}

		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		if !hub.Register(connection) {
			connection.Close()
			return
		}
		defer hub.Unregister(connection)

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Debug("Viewer disconnected normally")
				} else {
					logger.Warning("Viewer disconnected with error: %v", err)
				}
				break
			}
		}
	}
}
